package toolpath

import (
	"bytes"
	"layergcode/pkg/geometry"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/xerrors"
)

func seg(x1, y1, z1, x2, y2, z2 float64) geometry.LineSegment {
	return geometry.LineSegment{
		Start: geometry.Position{X: x1, Y: y1, Z: z1},
		End:   geometry.Position{X: x2, Y: y2, Z: z2},
	}
}

func TestReadText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []geometry.LineSegment
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "spaces",
			input: "0 0 0.2 10 0 0.2\n",
			want:  []geometry.LineSegment{seg(0, 0, 0.2, 10, 0, 0.2)},
		},
		{
			name:  "commas and tabs without trailing newline",
			input: "1,2,0.2,3,4,0.2\n5\t6\t0.4, 7 ,8 ,0.4",
			want: []geometry.LineSegment{
				seg(1, 2, 0.2, 3, 4, 0.2),
				seg(5, 6, 0.4, 7, 8, 0.4),
			},
		},
		{
			name: "comments and blank lines",
			input: `# layer 1
; generated

-1.5 2e1 0.2 1e-3 -0 0.2
`,
			want: []geometry.LineSegment{seg(-1.5, 20, 0.2, 0.001, 0, 0.2)},
		},
		{
			name:  "crlf",
			input: "0 0 0.2 1 1 0.2\r\n1 1 0.2 2 2 0.2\r\n",
			want: []geometry.LineSegment{
				seg(0, 0, 0.2, 1, 1, 0.2),
				seg(1, 1, 0.2, 2, 2, 0.2),
			},
		},
	}

	for _, test := range tests {
		got, err := ReadText(strings.NewReader(test.input))
		if err != nil {
			t.Errorf("test %s: unexpected error: %v", test.name, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("test %s: incorrect segments: %s", test.name, diff)
		}
	}
}

func TestReadTextErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"too few numbers", "0 0 0.2 1 1\n", "line 1:"},
		{"too many numbers", "# ok\n0 0 0.2 1 1 0.2 7\n", "line 2:"},
		{"not a number", "0 0 0.2 1 1 0.2\n\n0 0 0.2 x 1 0.2\n", "line 3:"},
	}

	for _, test := range tests {
		_, err := ReadText(strings.NewReader(test.input))
		if err == nil {
			t.Errorf("test %s: expected an error", test.name)
			continue
		}
		if !xerrors.Is(err, ErrSyntax) {
			t.Errorf("test %s: error %v does not match ErrSyntax", test.name, err)
		}
		if !strings.HasPrefix(err.Error(), test.line) {
			t.Errorf("test %s: error %q does not start with %q", test.name, err, test.line)
		}
	}
}

func TestWriteText(t *testing.T) {
	segments := []geometry.LineSegment{
		seg(0, 0, 0.2, 10, 0, 0.2),
		seg(0.1, 1.0/3, 0.2, -7.25, 1e-7, 0.2),
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, segments); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if got, want := strings.SplitN(buf.String(), "\n", 2)[0], "0 0 0.2 10 0 0.2"; got != want {
		t.Errorf("first line %q, want %q", got, want)
	}

	got, err := ReadText(&buf)
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if diff := cmp.Diff(segments, got); diff != "" {
		t.Errorf("segments changed writing and reading back: %s", diff)
	}
}

func TestReadTextNonFinite(t *testing.T) {
	// Non-finite values parse; the generator is the one to reject them.
	got, err := ReadText(strings.NewReader("NaN 0 0.2 Inf 0 0.2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !math.IsNaN(got[0].Start.X) || !math.IsInf(got[0].End.X, 1) {
		t.Errorf("incorrect segments: %v", got)
	}
}
