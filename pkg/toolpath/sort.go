package toolpath

import (
	"layergcode/pkg/float"
	"layergcode/pkg/geometry"
	"math"
	"sort"
)

// GroupLayers splits segments into layers by start Z, lowest layer first.
// A segment joins the current layer when its start Z is float.Near the
// lowest start Z of that layer.
func GroupLayers(segments []geometry.LineSegment) [][]geometry.LineSegment {
	ordered := append([]geometry.LineSegment(nil), segments...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.Z < ordered[j].Start.Z
	})

	var layers [][]geometry.LineSegment
	for _, s := range ordered {
		last := len(layers) - 1
		if last < 0 || !float.Near(layers[last][0].Start.Z, s.Start.Z) {
			layers = append(layers, nil)
			last++
		}
		layers[last] = append(layers[last], s)
	}
	return layers
}

// SortLayers reorders segments to cut down on travel. Layers are printed
// bottom to top. Within a layer, starting from origin, the next segment is
// the one with an endpoint nearest to where the previous one ended, and a
// level segment is reversed when its end is the nearer endpoint.
//
// Segments with non-finite coordinates can't be placed; they are kept in
// input order after all layers. origin must be finite.
func SortLayers(segments []geometry.LineSegment, origin geometry.Position) []geometry.LineSegment {
	var finite, rest []geometry.LineSegment
	for _, s := range segments {
		if s.IsFinite() {
			finite = append(finite, s)
		} else {
			rest = append(rest, s)
		}
	}

	sorted := make([]geometry.LineSegment, 0, len(segments))
	cursor := origin
	for _, layer := range GroupLayers(finite) {
		layer = sortLayer(layer, cursor)
		if len(layer) == 0 {
			continue
		}
		sorted = append(sorted, layer...)
		cursor = layer[len(layer)-1].End
	}
	return append(sorted, rest...)
}

func sortLayer(layer []geometry.LineSegment, cursor geometry.Position) []geometry.LineSegment {
	bounds := geometry.SegmentBounds(layer)
	if bounds.Empty() {
		return nil
	}
	tree := newEndpointTree(bounds)
	for i, s := range layer {
		tree.add(i, s.Start)
		tree.add(i, s.End)
	}

	sorted := make([]geometry.LineSegment, 0, len(layer))
	for {
		i, ok := tree.nearest(cursor.X, cursor.Y, func(i int) float64 {
			return math.Min(planarDistance(cursor, layer[i].Start), planarDistance(cursor, layer[i].End))
		})
		if !ok {
			break
		}
		s := layer[i]
		tree.remove(i, s.Start)
		tree.remove(i, s.End)

		if planarDistance(cursor, s.End) < planarDistance(cursor, s.Start) && float.Near(s.Start.Z, s.End.Z) {
			s = s.Reverse()
		}
		sorted = append(sorted, s)
		cursor = s.End
	}
	return sorted
}

func planarDistance(a, b geometry.Position) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
