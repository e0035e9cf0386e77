// Package formula builds the formula display string handed to the parser
// and renders results back into display text.
package formula

import (
	"math"
	"strconv"
	"strings"
)

// The e^x button writes a caret placeholder into the display; the grammar
// only knows the x form.
const (
	expPlaceholder = "e<sup>^</sup>"
	expMarker      = "e<sup>x</sup>"
)

// AppendOperator appends an operator or function glyph to the formula.
func AppendOperator(current, operator string) string {
	return current + operator
}

// AppendEntry appends the main entry to the formula.
func AppendEntry(current, entry string) string {
	return current + entry
}

// Normalize rewrites display markup that is not part of the grammar.
func Normalize(formula string) string {
	return strings.ReplaceAll(formula, expPlaceholder, expMarker)
}

// FormatResult renders v the way the display shows numbers: the shortest
// decimal that round-trips, switching to exponent form below 1e-6 and from
// 1e21 upwards. Negative zero is shown as 0.
func FormatResult(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(v, 'e', -1, 64))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// trimExponent turns Go's 1e-07 into 1e-7.
func trimExponent(s string) string {
	mant, exp, ok := strings.Cut(s, "e")
	if !ok || len(exp) < 2 {
		return s
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}
