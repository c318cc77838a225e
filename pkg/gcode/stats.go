package gcode

import (
	"fmt"
	"layergcode/pkg/cfg"
)

// Stats summarises a generation run.
type Stats struct {
	LayerChanges int
	Travels      int
	Extrusions   int

	// Layers counts the distinct heights material was deposited at.
	Layers int

	TravelDistance  float64
	ExtrudeDistance float64

	// Filament is the total filament length fed, and FilamentVolume the
	// material volume that represents.
	Filament       float64
	FilamentVolume float64

	// newLayer is set by a layer change until something is extruded.
	newLayer bool
}

func (s *Stats) add(m MotionCommand, c cfg.PrinterConfig) {
	switch m.Kind {
	case MoveLayerChange:
		s.LayerChanges++
		s.newLayer = true
	case MoveTravel:
		s.Travels++
		s.TravelDistance += m.Distance
	case MoveExtrude:
		s.Extrusions++
		s.ExtrudeDistance += m.Distance
		s.Filament += m.Extrusion
		s.FilamentVolume += m.Extrusion * FilamentArea(c)
		if s.Layers == 0 || s.newLayer {
			s.Layers++
			s.newLayer = false
		}
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d layers, %d extrusions (%.3f mm), %d travels (%.3f mm), %d layer changes, filament %.3f mm (%.3f mm^3)",
		s.Layers, s.Extrusions, s.ExtrudeDistance, s.Travels, s.TravelDistance, s.LayerChanges, s.Filament, s.FilamentVolume)
}
