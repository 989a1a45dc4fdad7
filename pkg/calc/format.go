package calc

import (
	"math"
	"strconv"
	"strings"
)

const (
	largeLimit = 999999999
	smallLimit = 0.0000001
	roundScale = 1e8
)

// FormatNumber renders a result for the display.
//
// NaN and infinities render as "0". Magnitudes above 999,999,999 or below
// 1e-7 (excluding zero) use scientific notation with five mantissa decimals.
// Everything else is rounded to eight decimals to hide float noise and
// printed as the shortest decimal string.
func FormatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}

	abs := math.Abs(n)
	if abs > largeLimit || (abs != 0 && abs < smallLimit) {
		return trimExponent(strconv.FormatFloat(n, 'e', 5, 64))
	}

	rounded := math.Round(n*roundScale) / roundScale
	if rounded == 0 {
		return "0"
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// trimExponent drops zero padding from the exponent: 1.00000e-08 -> 1.00000e-8.
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	mant, sign, exp := s[:i+1], s[i+1:i+2], strings.TrimLeft(s[i+2:], "0")
	if exp == "" {
		exp = "0"
	}
	return mant + sign + exp
}

// ParseNumber converts display text to a number. It is total: malformed
// text, NaN and infinities all yield 0.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
