package cfg

import (
	"fmt"
	"io"
	"io/ioutil"
	"layergcode/pkg/float"
	"strings"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// ExtrusionWidthFactor relates the nominal extrusion width to the nozzle diameter.
const ExtrusionWidthFactor = 1.2

// ErrInvalidConfig is matched by every validation failure.
var ErrInvalidConfig = xerrors.New("invalid printer config")

// PrinterConfig describes the printer geometry and feed rates for one
// generation run. Lengths are in machine units and feed rates in machine
// units per minute.
type PrinterConfig struct {
	NozzleDiameter      float64 `yaml:"nozzle_diameter"`
	FilamentDiameter    float64 `yaml:"filament_diameter"`
	LayerHeight         float64 `yaml:"layer_height"`
	ExtrusionWidth      float64 `yaml:"extrusion_width"`
	TravelFeedRate      float64 `yaml:"travel_feed_rate"`
	LayerChangeFeedRate float64 `yaml:"layer_change_feed_rate"`
	ExtrusionFeedRate   float64 `yaml:"extrusion_feed_rate"`

	// StartGcode and EndGcode are copied verbatim around the generated moves.
	StartGcode Lines `yaml:"start_gcode"`
	EndGcode   Lines `yaml:"end_gcode"`
}

// Lines is a block of G-code lines. In YAML it may be written either as a
// list or as a single (usually literal block) string.
type Lines []string

func (l *Lines) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*l = list
		return nil
	}
	var block string
	if err := unmarshal(&block); err != nil {
		return err
	}
	*l = SplitLines(block)
	return nil
}

// SplitLines splits text into lines, dropping carriage returns and a single
// trailing newline.
func SplitLines(text string) Lines {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// FieldError names a configuration value that can't be used.
type FieldError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s is %g, %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Default returns a config for a common 0.4mm nozzle, 1.75mm filament printer.
func Default() PrinterConfig {
	return PrinterConfig{
		NozzleDiameter:      0.4,
		FilamentDiameter:    1.75,
		LayerHeight:         0.2,
		ExtrusionWidth:      0.4 * ExtrusionWidthFactor,
		TravelFeedRate:      3000,
		LayerChangeFeedRate: 1200,
		ExtrusionFeedRate:   1800,
	}
}

// Validate rejects any value the generator can't work with. It checks
// fields in declaration order and reports the first bad one.
func (c PrinterConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"nozzle_diameter", c.NozzleDiameter},
		{"filament_diameter", c.FilamentDiameter},
		{"layer_height", c.LayerHeight},
		{"extrusion_width", c.ExtrusionWidth},
		{"travel_feed_rate", c.TravelFeedRate},
		{"layer_change_feed_rate", c.LayerChangeFeedRate},
		{"extrusion_feed_rate", c.ExtrusionFeedRate},
	}
	for _, f := range fields {
		if !float.IsFinite(f.value) {
			return &FieldError{Field: f.name, Value: f.value, Reason: "must be finite"}
		}
		if f.value <= 0 {
			return &FieldError{Field: f.name, Value: f.value, Reason: "must be positive"}
		}
	}
	// The capsule cross-section needs a rectangle of positive width between its end caps.
	if c.ExtrusionWidth <= c.LayerHeight {
		return &FieldError{
			Field:  "extrusion_width",
			Value:  c.ExtrusionWidth,
			Reason: fmt.Sprintf("must be greater than layer_height (%g)", c.LayerHeight),
		}
	}
	return nil
}

// Load reads a YAML printer config. Keys that are absent keep their
// Default values, except that extrusion_width follows nozzle_diameter
// when only the nozzle is given. Unknown keys are an error.
func Load(r io.Reader) (PrinterConfig, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return PrinterConfig{}, xerrors.Errorf("read printer config: %w", err)
	}

	// Decode once without defaults to see which keys were present.
	var present struct {
		NozzleDiameter *float64 `yaml:"nozzle_diameter"`
		ExtrusionWidth *float64 `yaml:"extrusion_width"`
	}
	if err := yaml.Unmarshal(data, &present); err != nil {
		return PrinterConfig{}, xerrors.Errorf("parse printer config: %w", err)
	}

	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return PrinterConfig{}, xerrors.Errorf("parse printer config: %w", err)
	}
	if present.NozzleDiameter != nil && present.ExtrusionWidth == nil {
		c.ExtrusionWidth = c.NozzleDiameter * ExtrusionWidthFactor
	}

	if err := c.Validate(); err != nil {
		return PrinterConfig{}, err
	}
	return c, nil
}
