package parser

import "math"

// trigPrecision is the rounding denominator applied to every intermediate
// and final value: results keep 10 decimal places.
const trigPrecision = 1e10

// Angle is the divisor applied to trigonometric arguments.
type Angle float64

const (
	Degrees Angle = 180 / math.Pi
	Radians Angle = 1
)

// String returns "deg" or "rad" for the two standard modes.
func (a Angle) String() string {
	switch a {
	case Degrees:
		return "deg"
	case Radians:
		return "rad"
	default:
		return "custom"
	}
}

// ParseAngle maps "deg"/"rad" (and their long forms) to an Angle.
func ParseAngle(s string) (Angle, bool) {
	switch s {
	case "deg", "degrees", "DEG":
		return Degrees, true
	case "rad", "radians", "RAD":
		return Radians, true
	}
	return 0, false
}

type function func(x float64, a Angle) float64

var builtins = map[string]function{
	"sin": func(x float64, a Angle) float64 { return math.Sin(x / float64(a)) },
	"cos": func(x float64, a Angle) float64 { return math.Cos(x / float64(a)) },
	// tan goes through the rounded sine and cosine so that tan(90°) is a
	// division by zero rather than 1.6e16.
	"tan": func(x float64, a Angle) float64 {
		s := round(math.Sin(x / float64(a)))
		c := round(math.Cos(x / float64(a)))
		if c == 0 {
			return math.NaN()
		}
		return s / c
	},
	"asin":  func(x float64, a Angle) float64 { return math.Asin(x) * float64(a) },
	"acos":  func(x float64, a Angle) float64 { return math.Acos(x) * float64(a) },
	"atan":  func(x float64, a Angle) float64 { return math.Atan(x) * float64(a) },
	"sinh":  func(x float64, _ Angle) float64 { return math.Sinh(x) },
	"cosh":  func(x float64, _ Angle) float64 { return math.Cosh(x) },
	"tanh":  func(x float64, _ Angle) float64 { return math.Tanh(x) },
	"asinh": func(x float64, _ Angle) float64 { return math.Asinh(x) },
	"acosh": func(x float64, _ Angle) float64 { return math.Acosh(x) },
	"atanh": func(x float64, _ Angle) float64 { return math.Atanh(x) },
	"log":   func(x float64, _ Angle) float64 { return math.Log10(x) },
	"log2":  func(x float64, _ Angle) float64 { return math.Log2(x) },
	"ln":    func(x float64, _ Angle) float64 { return math.Log(x) },
	"sqrt":  func(x float64, _ Angle) float64 { return math.Sqrt(x) },
	"cbrt":  func(x float64, _ Angle) float64 { return math.Cbrt(x) },
	"abs":   func(x float64, _ Angle) float64 { return math.Abs(x) },
	"exp":   func(x float64, _ Angle) float64 { return math.Exp(x) },
	"pow10": func(x float64, _ Angle) float64 { return math.Pow(10, x) },
	"pow2":  func(x float64, _ Angle) float64 { return math.Pow(2, x) },
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// round keeps trigPrecision decimal places. Values too large to scale are
// returned unchanged.
func round(v float64) float64 {
	r := math.Round(v*trigPrecision) / trigPrecision
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return v
	}
	if r == 0 {
		return 0
	}
	return r
}

func factorial(x float64) float64 {
	if x < 0 && x == math.Trunc(x) {
		return math.NaN()
	}
	if x == math.Trunc(x) && x <= 170 {
		r := 1.0
		for i := 2.0; i <= x; i++ {
			r *= i
		}
		return r
	}
	return math.Gamma(x + 1)
}

// nthroot returns the index-th root of x. Odd integer roots of negative
// numbers are real.
func nthroot(index, x float64) float64 {
	if x < 0 && index == math.Trunc(index) && math.Mod(index, 2) != 0 {
		return -math.Pow(-x, 1/index)
	}
	return math.Pow(x, 1/index)
}
