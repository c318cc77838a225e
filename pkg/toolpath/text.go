package toolpath

import (
	"bufio"
	"fmt"
	"io"
	"layergcode/pkg/geometry"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/xerrors"
)

// ErrSyntax is matched by every text parse error.
var ErrSyntax = xerrors.New("malformed segment")

// ReadText reads segments written one per line as six numbers, the start
// and end positions "x1 y1 z1 x2 y2 z2". Numbers are separated by spaces,
// tabs or commas. Blank lines and lines starting with ';' or '#' are
// skipped. Errors name the 1-based line number.
func ReadText(r io.Reader) ([]geometry.LineSegment, error) {
	var segments []geometry.LineSegment
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, ";") || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		if len(fields) != 6 {
			return nil, xerrors.Errorf("line %d: %w: want 6 numbers, got %d", line, ErrSyntax, len(fields))
		}
		var v [6]float64
		for i, field := range fields {
			n, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, xerrors.Errorf("line %d: %w: %q is not a number", line, ErrSyntax, field)
			}
			v[i] = n
		}
		segments = append(segments, geometry.LineSegment{
			Start: geometry.Position{X: v[0], Y: v[1], Z: v[2]},
			End:   geometry.Position{X: v[3], Y: v[4], Z: v[5]},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("line %d: %w", line+1, err)
	}
	return segments, nil
}

// WriteText writes segments in the format ReadText reads, with every
// coordinate written exactly.
func WriteText(w io.Writer, segments []geometry.LineSegment) error {
	bw := bufio.NewWriter(w)
	for _, s := range segments {
		_, err := fmt.Fprintf(bw, "%s %s %s %s %s %s\n",
			formatExact(s.Start.X), formatExact(s.Start.Y), formatExact(s.Start.Z),
			formatExact(s.End.X), formatExact(s.End.Y), formatExact(s.End.Z))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatExact(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
