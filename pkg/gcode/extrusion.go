package gcode

import (
	"layergcode/pkg/cfg"
	"math"
)

// BeadArea is the cross-section of a deposited bead, modelled as a capsule:
// a rectangle (extrusion width - layer height) wide and one layer high, with
// a semicircular cap of diameter layer height on each side.
func BeadArea(c cfg.PrinterConfig) float64 {
	h := c.LayerHeight
	return h*(c.ExtrusionWidth-h) + math.Pi*(h/2)*(h/2)
}

// FilamentArea is the cross-section of the filament fed into the extruder.
func FilamentArea(c cfg.PrinterConfig) float64 {
	r := c.FilamentDiameter / 2
	return math.Pi * r * r
}

// Extrusion returns the length of filament to feed so that a bead of length
// distance is deposited. Volume is conserved between bead and filament.
func Extrusion(distance float64, c cfg.PrinterConfig) float64 {
	return BeadArea(c) * distance / FilamentArea(c)
}
