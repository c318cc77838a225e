package toolpath

import (
	"io"
	"layergcode/pkg/geometry"

	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"
	"golang.org/x/xerrors"
)

// ReadDXF reads the ENTITIES section of a DXF drawing. Each LINE becomes a
// segment. POLYLINE and LWPOLYLINE entities become one segment per pair of
// consecutive vertices, plus a closing segment when the polyline is closed;
// 2D polylines sit at their elevation. Every other entity, including
// polygon and polyface meshes, is skipped and counted.
func ReadDXF(r io.Reader) (segments []geometry.LineSegment, skipped int, err error) {
	// dxf-go indexes past the end of truncated or malformed input.
	defer func() {
		if p := recover(); p != nil {
			segments, skipped = nil, 0
			err = xerrors.Errorf("malformed DXF: %v", p)
		}
	}()

	doc, err := document.DxfDocumentFromStream(r)
	if err != nil {
		return nil, 0, xerrors.Errorf("reading DXF: %w", err)
	}
	if doc.Entities == nil {
		return nil, 0, nil
	}

	for _, entity := range doc.Entities.Entities {
		switch e := entity.(type) {
		case *entities.Line:
			segments = append(segments, geometry.LineSegment{
				Start: geometry.Position{X: e.Start.X, Y: e.Start.Y, Z: e.Start.Z},
				End:   geometry.Position{X: e.End.X, Y: e.End.Y, Z: e.End.Z},
			})
		case *entities.Polyline:
			if e.Is3dPolygonMesh || e.IsPolyfaceMesh {
				skipped++
				continue
			}
			line := make(geometry.Polyline, 0, len(e.Vertices))
			for _, v := range e.Vertices {
				z := e.Elevation
				if e.Is3dPolyline {
					z = v.Location.Z
				}
				line = append(line, geometry.Position{X: v.Location.X, Y: v.Location.Y, Z: z})
			}
			segments = append(segments, line.Segments(e.Closed)...)
		case *entities.LWPolyline:
			line := make(geometry.Polyline, 0, len(e.Points))
			for _, p := range e.Points {
				line = append(line, geometry.Position{X: p.Point.X, Y: p.Point.Y, Z: e.Elevation})
			}
			segments = append(segments, line.Segments(e.Closed)...)
		default:
			skipped++
		}
	}
	return segments, skipped, nil
}
