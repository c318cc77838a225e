package float

import (
	"math"
	"strconv"
)

// Float is the floating point type used for machine coordinates.
type Float = float64

const (
	// AxisPrecision is the number of decimals written for X, Y and Z.
	AxisPrecision = 3
	// ExtrusionPrecision is the number of decimals written for E.
	ExtrusionPrecision = 5

	// nearScale scales a difference so that values equal to five
	// decimal places differ by at most 1.
	nearScale = 1e5
)

func Min(a, b Float) Float {
	return math.Min(a, b)
}

func Max(a, b Float) Float {
	return math.Max(a, b)
}

func Inf(sign int) Float {
	return math.Inf(sign)
}

// IsFinite reports whether n is neither NaN nor an infinity.
func IsFinite(n Float) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// Near reports whether a and b are equal to five decimal places, that is
// whether their difference scaled by 10^5 is at most 1 in magnitude.
func Near(a, b Float) bool {
	return math.Abs((a-b)*nearScale) <= 1
}

// Format renders n in fixed-point notation with exactly precision digits
// after the decimal point. A value that rounds to zero is never written
// with a minus sign.
func Format(n Float, precision int) string {
	s := strconv.FormatFloat(n, 'f', precision, 64)
	if len(s) > 1 && s[0] == '-' && allZero(s[1:]) {
		return s[1:]
	}
	return s
}

func FormatAxis(n Float) string {
	return Format(n, AxisPrecision)
}

func FormatExtrusion(n Float) string {
	return Format(n, ExtrusionPrecision)
}

// FormatFeed renders a feed rate as an integer, rounding half away from
// zero. Feeds beyond the int64 range are written in full.
func FormatFeed(n Float) string {
	return Format(math.Round(n), 0)
}

func allZero(digits string) bool {
	for i := 0; i < len(digits); i++ {
		if digits[i] != '0' && digits[i] != '.' {
			return false
		}
	}
	return true
}
