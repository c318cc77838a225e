package geometry

import (
	"fmt"
	"layergcode/pkg/float"

	"github.com/go-gl/mathgl/mgl64"
)

// Position is a point in machine coordinates.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Origin is where the extruder is assumed to start.
var Origin = Position{}

type LineSegment struct {
	Start Position
	End   Position
}

// Polyline is a connected run of positions, as found in DXF polylines.
type Polyline []Position

type Bounds struct {
	Min Position
	Max Position
}

func (p Position) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

func (p Position) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// Distance returns the 3D euclidean distance between two positions.
func (p Position) Distance(other Position) float64 {
	return other.Vec3().Sub(p.Vec3()).Len()
}

// Near reports whether every axis of p is float.Near the same axis of other.
// The axes are compared independently; this is not a distance tolerance.
func (p Position) Near(other Position) bool {
	return float.Near(p.X, other.X) &&
		float.Near(p.Y, other.Y) &&
		float.Near(p.Z, other.Z)
}

// WithZ returns p moved to height z.
func (p Position) WithZ(z float64) Position {
	p.Z = z
	return p
}

func (p Position) IsFinite() bool {
	return float.IsFinite(p.X) && float.IsFinite(p.Y) && float.IsFinite(p.Z)
}

func (s LineSegment) Length() float64 {
	return s.Start.Distance(s.End)
}

// Reverse returns the segment traversed from End to Start.
func (s LineSegment) Reverse() LineSegment {
	return LineSegment{Start: s.End, End: s.Start}
}

func (s LineSegment) IsFinite() bool {
	return s.Start.IsFinite() && s.End.IsFinite()
}

// Segments splits the polyline into one segment per pair of consecutive
// positions, plus a segment back to the first position when closed.
func (line Polyline) Segments(closed bool) []LineSegment {
	if len(line) < 2 {
		return nil
	}
	segments := make([]LineSegment, 0, len(line))
	for i := 1; i < len(line); i++ {
		segments = append(segments, LineSegment{Start: line[i-1], End: line[i]})
	}
	if closed && !line[len(line)-1].Near(line[0]) {
		segments = append(segments, LineSegment{Start: line[len(line)-1], End: line[0]})
	}
	return segments
}

// SegmentBounds returns the bounding box of all segment endpoints. The result
// for an empty slice has Min at +Inf and Max at -Inf.
func SegmentBounds(segments []LineSegment) Bounds {
	b := Bounds{
		Min: Position{X: float.Inf(1), Y: float.Inf(1), Z: float.Inf(1)},
		Max: Position{X: float.Inf(-1), Y: float.Inf(-1), Z: float.Inf(-1)},
	}
	for _, s := range segments {
		b = b.Extend(s.Start).Extend(s.End)
	}
	return b
}

func (b Bounds) Extend(p Position) Bounds {
	b.Min.X = float.Min(b.Min.X, p.X)
	b.Min.Y = float.Min(b.Min.Y, p.Y)
	b.Min.Z = float.Min(b.Min.Z, p.Z)
	b.Max.X = float.Max(b.Max.X, p.X)
	b.Max.Y = float.Max(b.Max.Y, p.Y)
	b.Max.Z = float.Max(b.Max.Z, p.Z)
	return b
}

func (b Bounds) Empty() bool {
	return b.Min.X > b.Max.X
}
