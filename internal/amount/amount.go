// Package amount converts between decimal monetary values and the fixed-point
// integer units used for all internal arithmetic. Summing f64 amounts across a
// long transaction log accumulates rounding error; integer units with 4 implied
// decimal digits do not.
package amount

import (
	"math"
	"strconv"
	"strings"
)

// DecimalPrecision is the number of implied decimal digits, matching the
// currency precision of the input format.
const DecimalPrecision = 4

// Scale is 10^DecimalPrecision.
const Scale int64 = 10_000

// ToUnits converts a decimal amount to fixed-point units. Ties round half
// away from zero, so 0.00005 becomes 1 unit and -0.00005 becomes -1.
func ToUnits(v float64) int64 {
	return int64(math.Round(v * float64(Scale)))
}

// ToDecimal converts fixed-point units back to a decimal amount.
func ToDecimal(units int64) float64 {
	return float64(units) / float64(Scale)
}

// String renders units as a minimal decimal string with at least one
// fractional digit: 1_300_000 units -> "130.0", 1_331_230 -> "133.123".
// Rendering from the integer directly keeps output exact.
func String(units int64) string {
	var b strings.Builder
	if units < 0 {
		b.WriteByte('-')
		units = -units
	}

	b.WriteString(strconv.FormatInt(units/Scale, 10))
	b.WriteByte('.')

	frac := units % Scale
	if frac == 0 {
		b.WriteByte('0')
		return b.String()
	}

	digits := strconv.FormatInt(frac, 10)
	for pad := DecimalPrecision - len(digits); pad > 0; pad-- {
		b.WriteByte('0')
	}
	b.WriteString(strings.TrimRight(digits, "0"))
	return b.String()
}
