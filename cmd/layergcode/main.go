package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"layergcode/pkg/cfg"
	"layergcode/pkg/gcode"
	"layergcode/pkg/geometry"
	"layergcode/pkg/toolpath"

	"github.com/spf13/pflag"
	"golang.org/x/xerrors"
)

type command struct {
	*pflag.FlagSet

	ConfigFile string
	StartFile  string
	EndFile    string
	OutputFile string
	DumpFile   string
	Sort       bool
	Quiet      bool

	printer cfg.PrinterConfig
}

func newCommand() *command {
	cmd := &command{
		FlagSet: pflag.NewFlagSet("layergcode", pflag.ContinueOnError),
		printer: cfg.Default(),
	}

	cmd.StringVarP(&cmd.ConfigFile, "config", "c", "", "YAML printer config")
	cmd.Float64Var(&cmd.printer.NozzleDiameter, "nozzle-diameter", cmd.printer.NozzleDiameter, "Nozzle diameter in mm")
	cmd.Float64Var(&cmd.printer.FilamentDiameter, "filament-diameter", cmd.printer.FilamentDiameter, "Filament diameter in mm")
	cmd.Float64Var(&cmd.printer.LayerHeight, "layer-height", cmd.printer.LayerHeight, "Layer height in mm")
	cmd.Float64Var(&cmd.printer.ExtrusionWidth, "extrusion-width", cmd.printer.ExtrusionWidth, "Extrusion width in mm (default 1.2 x nozzle diameter)")
	cmd.Float64Var(&cmd.printer.TravelFeedRate, "travel-feed-rate", cmd.printer.TravelFeedRate, "Travel feed rate in mm/min")
	cmd.Float64Var(&cmd.printer.LayerChangeFeedRate, "layer-change-feed-rate", cmd.printer.LayerChangeFeedRate, "Layer change feed rate in mm/min")
	cmd.Float64Var(&cmd.printer.ExtrusionFeedRate, "extrusion-feed-rate", cmd.printer.ExtrusionFeedRate, "Extrusion feed rate in mm/min")
	cmd.StringVar(&cmd.StartFile, "start", "", "File with G-code to write before the moves")
	cmd.StringVar(&cmd.EndFile, "end", "", "File with G-code to write after the moves")
	cmd.StringVarP(&cmd.OutputFile, "output", "o", "", "Output file (default stdout)")
	cmd.StringVar(&cmd.DumpFile, "dump-segments", "", "Also write the segments, in print order, as text to this file")
	cmd.BoolVar(&cmd.Sort, "sort", false, "Reorder segments by layer and nearest endpoint")
	cmd.BoolVarP(&cmd.Quiet, "quiet", "q", false, "Don't log progress and statistics")

	cmd.SetInterspersed(true)

	return cmd
}

var printerFlags = []string{
	"nozzle-diameter",
	"filament-diameter",
	"layer-height",
	"extrusion-width",
	"travel-feed-rate",
	"layer-change-feed-rate",
	"extrusion-feed-rate",
}

// config builds the printer config: defaults, then the config file, then
// the printer flags that were given on the command line.
func (cmd *command) config() (cfg.PrinterConfig, error) {
	flags := cmd.printer
	c := cfg.Default()
	if cmd.ConfigFile != "" {
		f, err := os.Open(cmd.ConfigFile)
		if err != nil {
			return c, err
		}
		defer f.Close()
		c, err = cfg.Load(f)
		if err != nil {
			return c, xerrors.Errorf("%s: %w", cmd.ConfigFile, err)
		}
	}

	for _, name := range printerFlags {
		if !cmd.Changed(name) {
			continue
		}
		switch name {
		case "nozzle-diameter":
			c.NozzleDiameter = flags.NozzleDiameter
			if !cmd.Changed("extrusion-width") {
				c.ExtrusionWidth = flags.NozzleDiameter * cfg.ExtrusionWidthFactor
			}
		case "filament-diameter":
			c.FilamentDiameter = flags.FilamentDiameter
		case "layer-height":
			c.LayerHeight = flags.LayerHeight
		case "extrusion-width":
			c.ExtrusionWidth = flags.ExtrusionWidth
		case "travel-feed-rate":
			c.TravelFeedRate = flags.TravelFeedRate
		case "layer-change-feed-rate":
			c.LayerChangeFeedRate = flags.LayerChangeFeedRate
		case "extrusion-feed-rate":
			c.ExtrusionFeedRate = flags.ExtrusionFeedRate
		}
	}

	if cmd.StartFile != "" {
		data, err := ioutil.ReadFile(cmd.StartFile)
		if err != nil {
			return c, err
		}
		c.StartGcode = cfg.SplitLines(string(data))
	}
	if cmd.EndFile != "" {
		data, err := ioutil.ReadFile(cmd.EndFile)
		if err != nil {
			return c, err
		}
		c.EndGcode = cfg.SplitLines(string(data))
	}

	return c, c.Validate()
}

func readSegments(name string, stdin io.Reader, logger *log.Logger) ([]geometry.LineSegment, error) {
	if name == "-" {
		return toolpath.ReadText(stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(name), ".dxf") {
		segments, skipped, err := toolpath.ReadDXF(f)
		if skipped > 0 {
			logger.Printf("%s: skipped %d unsupported entities", name, skipped)
		}
		return segments, err
	}
	return toolpath.ReadText(f)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := newCommand()
	cmd.SetOutput(stderr)
	cmd.Usage = func() {
		fmt.Fprintf(stderr, "usage: layergcode [options] <segments.dxf|segments.txt|->\n")
		cmd.PrintDefaults()
	}
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if cmd.NArg() != 1 {
		cmd.Usage()
		return xerrors.New("expected exactly one segments file")
	}

	logger := log.New(stderr, "", 0)
	if cmd.Quiet {
		logger.SetOutput(ioutil.Discard)
	}

	c, err := cmd.config()
	if err != nil {
		return xerrors.Errorf("printer config: %w", err)
	}

	name := cmd.Arg(0)
	segments, err := readSegments(name, stdin, logger)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", name, err)
	}
	logger.Printf("%s: %d segments", name, len(segments))

	if cmd.Sort {
		segments = toolpath.SortLayers(segments, geometry.Origin)
	}

	if cmd.DumpFile != "" {
		err := writeOutput(cmd.DumpFile, stdout, func(w io.Writer) error {
			return toolpath.WriteText(w, segments)
		})
		if err != nil {
			return xerrors.Errorf("writing %s: %w", cmd.DumpFile, err)
		}
	}

	program, stats, err := gcode.Program(c, segments, logger)
	if err != nil {
		return err
	}
	if program != "" {
		program += "\n"
	}
	err = writeOutput(cmd.OutputFile, stdout, func(w io.Writer) error {
		_, err := io.WriteString(w, program)
		return err
	})
	if err != nil {
		return err
	}

	logger.Printf("%s", stats)
	return nil
}

// writeOutput runs write against the named file, or against stdout when
// name is empty. A file that could not be written completely is removed.
func writeOutput(name string, stdout io.Writer, write func(io.Writer) error) error {
	if name == "" {
		return write(stdout)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	err = write(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(name)
	}
	return err
}

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if xerrors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("error: %s", err)
	}
}
