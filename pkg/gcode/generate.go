package gcode

import (
	"fmt"
	"layergcode/pkg/cfg"
	"layergcode/pkg/float"
	"layergcode/pkg/geometry"
	"log"
	"strings"

	"golang.org/x/xerrors"
)

var (
	// ErrZOrder is matched by an OrderError.
	ErrZOrder = xerrors.New("segments out of Z order")

	ErrNotFinite = xerrors.New("coordinate is not finite")
	ErrNotLevel  = xerrors.New("segment is not level")
)

// OrderError reports a segment that starts below the current extruder
// height. Layers have to be printed bottom to top.
type OrderError struct {
	Index    int
	CurrentZ float64
	StartZ   float64
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("segment %d: %s: starts at Z%s, below current Z%s",
		e.Index, ErrZOrder, float.FormatAxis(e.StartZ), float.FormatAxis(e.CurrentZ))
}

func (e *OrderError) Is(target error) bool {
	return target == ErrZOrder
}

// SegmentError reports a segment the generator can't print.
type SegmentError struct {
	Index   int
	Segment geometry.LineSegment
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d %v -> %v: %s", e.Index, e.Segment.Start, e.Segment.End, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// Generator turns line segments into moves, one segment at a time. It
// starts at the origin and owns the current extruder position.
// A Generator is not safe for concurrent use.
type Generator struct {
	// Logger, if set, receives a line for every layer change.
	Logger *log.Logger

	config   cfg.PrinterConfig
	position geometry.Position
	commands []MotionCommand
	segments int
	stats    Stats
	err      error
}

// NewGenerator validates c and returns a generator positioned at the origin.
func NewGenerator(c cfg.PrinterConfig) (*Generator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		config:   c,
		position: geometry.Origin,
	}, nil
}

// Position is the extruder position after the last committed command.
func (g *Generator) Position() geometry.Position {
	return g.position
}

// Commands returns the moves committed so far.
func (g *Generator) Commands() []MotionCommand {
	return g.commands
}

func (g *Generator) Stats() Stats {
	return g.stats
}

// Add synthesizes the moves for the next segment: a Z-only layer change
// if the segment starts higher, a travel move if the extruder isn't at the
// segment start yet, and the extruding move itself. Once Add has failed,
// the generator keeps returning the same error and commits nothing more.
func (g *Generator) Add(s geometry.LineSegment) error {
	if g.err != nil {
		return g.err
	}
	index := g.segments
	position, moves, err := Step(g.position, index, s, g.config)
	if err != nil {
		g.err = err
		return err
	}
	g.segments++
	for _, m := range moves {
		if m.Kind == MoveLayerChange && g.Logger != nil {
			g.Logger.Printf("layer change before segment %d: Z%s -> Z%s", index, float.FormatAxis(g.position.Z), m.Z)
		}
		g.stats.add(m, g.config)
	}
	g.commands = append(g.commands, moves...)
	g.position = position
	return nil
}

// Step is one fold step of the generator: given the current position and
// segment number index, it returns the position after the segment is
// printed and the moves that get it there. The current position is never
// modified on error. Segments must be level: one whose end Z differs from
// its start Z fails with ErrNotLevel, since Z only changes in a Z-only move.
func Step(current geometry.Position, index int, s geometry.LineSegment, c cfg.PrinterConfig) (geometry.Position, []MotionCommand, error) {
	if !s.IsFinite() {
		return current, nil, &SegmentError{Index: index, Segment: s, Err: ErrNotFinite}
	}
	if !float.Near(s.Start.Z, s.End.Z) {
		return current, nil, &SegmentError{Index: index, Segment: s, Err: ErrNotLevel}
	}

	var moves []MotionCommand

	if !float.Near(current.Z, s.Start.Z) {
		if s.Start.Z < current.Z {
			return current, nil, &OrderError{Index: index, CurrentZ: current.Z, StartZ: s.Start.Z}
		}
		next := current.WithZ(s.Start.Z)
		m := Synthesize(current, next, c.LayerChangeFeedRate, false, c)
		m.Kind = MoveLayerChange
		moves = append(moves, m)
		current = next
	}

	if !current.Near(s.Start) {
		next := geometry.Position{X: s.Start.X, Y: s.Start.Y, Z: current.Z}
		m := Synthesize(current, next, c.TravelFeedRate, false, c)
		m.Kind = MoveTravel
		moves = append(moves, m)
		current = s.Start
	}

	moves = append(moves, Synthesize(current, s.End, c.ExtrusionFeedRate, true, c))
	return s.End, moves, nil
}

// Generate runs a fresh generator over all segments in order. On error no
// commands are returned; the error names the offending segment.
func Generate(c cfg.PrinterConfig, segments []geometry.LineSegment) ([]MotionCommand, Stats, error) {
	return generate(c, segments, nil)
}

func generate(c cfg.PrinterConfig, segments []geometry.LineSegment, logger *log.Logger) ([]MotionCommand, Stats, error) {
	g, err := NewGenerator(c)
	if err != nil {
		return nil, Stats{}, err
	}
	g.Logger = logger
	for _, s := range segments {
		if err := g.Add(s); err != nil {
			return nil, Stats{}, err
		}
	}
	return g.Commands(), g.Stats(), nil
}

// Render joins start lines, commands and end lines with newlines. There
// is no trailing newline.
func Render(start []string, commands []MotionCommand, end []string) string {
	lines := make([]string, 0, len(start)+len(commands)+len(end))
	lines = append(lines, start...)
	for _, m := range commands {
		lines = append(lines, m.String())
	}
	lines = append(lines, end...)
	return strings.Join(lines, "\n")
}

// Program generates the moves for segments and wraps them in the start
// and end G-code from c. Layer changes are logged to logger when it is
// not nil.
func Program(c cfg.PrinterConfig, segments []geometry.LineSegment, logger *log.Logger) (string, Stats, error) {
	commands, stats, err := generate(c, segments, logger)
	if err != nil {
		return "", Stats{}, err
	}
	return Render(c.StartGcode, commands, c.EndGcode), stats, nil
}
