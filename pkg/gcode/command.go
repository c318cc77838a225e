package gcode

import (
	"layergcode/pkg/cfg"
	"layergcode/pkg/float"
	"layergcode/pkg/geometry"
	"strconv"
	"strings"
)

// LinearMove is the command code for every synthesized move.
const LinearMove = "G1"

// NoFeed leaves F out of a synthesized command, so that the machine keeps
// whatever feed rate it last used.
const NoFeed = 0.0

// MoveKind tells why a command was synthesized.
type MoveKind int

const (
	MoveTravel MoveKind = iota
	MoveLayerChange
	MoveExtrude
)

func (k MoveKind) String() string {
	switch k {
	case MoveTravel:
		return "travel"
	case MoveLayerChange:
		return "layer change"
	case MoveExtrude:
		return "extrude"
	}
	return "MoveKind(" + strconv.Itoa(int(k)) + ")"
}

// MotionCommand is a single linear move. Each axis holds its formatted
// value, or "" when the axis is left out of the command.
type MotionCommand struct {
	Code string
	Kind MoveKind

	X string
	Y string
	Z string
	E string
	F string

	// Distance is the 3D length of the move, and Extrusion the unrounded
	// filament length behind E.
	Distance  float64
	Extrusion float64
}

// String renders the command as one line of G-code, with axes in the
// order X, Y, Z, E, F.
func (m MotionCommand) String() string {
	var b strings.Builder
	b.WriteString(m.Code)
	for _, word := range []struct {
		letter byte
		value  string
	}{
		{'X', m.X},
		{'Y', m.Y},
		{'Z', m.Z},
		{'E', m.E},
		{'F', m.F},
	} {
		if word.value == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteByte(word.letter)
		b.WriteString(word.value)
	}
	return b.String()
}

// Synthesize builds the move from "from" to "to". Only axes that differ
// beyond float.Near are written. When extrude is set, E is the filament
// length for the full 3D distance of the move, relative to the previous
// move; otherwise the command is a travel. F is written when feed is not
// NoFeed.
func Synthesize(from, to geometry.Position, feed float64, extrude bool, c cfg.PrinterConfig) MotionCommand {
	m := MotionCommand{
		Code:     LinearMove,
		Kind:     MoveTravel,
		Distance: geometry.LineSegment{Start: from, End: to}.Length(),
	}
	if !float.Near(from.X, to.X) {
		m.X = float.FormatAxis(to.X)
	}
	if !float.Near(from.Y, to.Y) {
		m.Y = float.FormatAxis(to.Y)
	}
	if !float.Near(from.Z, to.Z) {
		m.Z = float.FormatAxis(to.Z)
	}
	if extrude {
		m.Kind = MoveExtrude
		m.Extrusion = Extrusion(m.Distance, c)
		m.E = float.FormatExtrusion(m.Extrusion)
	}
	if feed != NoFeed {
		m.F = float.FormatFeed(feed)
	}
	return m
}
