package toolpath

import (
	"layergcode/pkg/geometry"
	"math"

	"github.com/asim/quadtree"
)

var zeroPoint = quadtree.NewPoint(0, 0, nil)

// endpointTree indexes segment endpoints in the XY plane. Each quadtree
// point holds the set of segment indices that end exactly there.
type endpointTree struct {
	quadTree   *quadtree.QuadTree
	midX       float64
	midY       float64
	halfWidth  float64
	halfHeight float64
}

func newEndpointTree(b geometry.Bounds) *endpointTree {
	midX := (b.Max.X + b.Min.X) / 2
	midY := (b.Max.Y + b.Min.Y) / 2
	halfWidth := b.Max.X - midX
	halfHeight := b.Max.Y - midY

	// Add a small margin to avoid dropping points at the edges
	halfWidth += 10
	halfHeight += 10

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))
	return &endpointTree{
		quadTree:   quadtree.New(aabb, 0, nil),
		midX:       midX,
		midY:       midY,
		halfWidth:  halfWidth,
		halfHeight: halfHeight,
	}
}

func (t *endpointTree) find(x, y float64) *quadtree.Point {
	points := t.quadTree.Search(quadtree.NewAABB(quadtree.NewPoint(x, y, nil), zeroPoint))
	for _, point := range points {
		px, py := point.Coordinates()
		if px == x && py == y {
			return point
		}
	}
	return nil
}

func (t *endpointTree) add(index int, p geometry.Position) {
	if point := t.find(p.X, p.Y); point != nil {
		point.Data().(map[int]struct{})[index] = struct{}{}
		return
	}
	t.quadTree.Insert(quadtree.NewPoint(p.X, p.Y, map[int]struct{}{index: {}}))
}

func (t *endpointTree) remove(index int, p geometry.Position) {
	point := t.find(p.X, p.Y)
	if point == nil {
		return
	}
	indices := point.Data().(map[int]struct{})
	delete(indices, index)
	if len(indices) == 0 {
		t.quadTree.Remove(point)
	}
}

// nearest returns the index with the smallest dist among the segments that
// have an endpoint in the tree. Ties go to the lower index. dist must be
// the planar distance from (x, y) to the closer endpoint of the segment.
func (t *endpointTree) nearest(x, y float64, dist func(index int) float64) (int, bool) {
	r := math.Max(t.halfWidth, t.halfHeight) / 16
	for {
		box := quadtree.NewAABB(quadtree.NewPoint(x, y, nil), quadtree.NewPoint(r, r, nil))
		best, bestDist := -1, math.Inf(1)
		for _, point := range t.quadTree.Search(box) {
			for index := range point.Data().(map[int]struct{}) {
				d := dist(index)
				if d < bestDist || (d == bestDist && index < best) {
					best, bestDist = index, d
				}
			}
		}

		// Anything outside the box is further away than r.
		if best >= 0 && bestDist <= r {
			return best, true
		}
		if t.covers(x, y, r) {
			return best, best >= 0
		}
		r *= 2
	}
}

// covers reports whether a search box of half size r around (x, y)
// contains the whole tree.
func (t *endpointTree) covers(x, y, r float64) bool {
	return x-r <= t.midX-t.halfWidth && x+r >= t.midX+t.halfWidth &&
		y-r <= t.midY-t.halfHeight && y+r >= t.midY+t.halfHeight
}
