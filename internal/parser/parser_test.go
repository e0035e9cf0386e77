package parser

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
)

func TestParseValidFormulas(t *testing.T) {
	p := MustDefault()

	tests := []struct {
		formula string
		angle   Angle
		want    float64
	}{
		{formula: "2+2", angle: Degrees, want: 4},
		{formula: "10÷4", angle: Degrees, want: 2.5},
		{formula: "12+3", angle: Degrees, want: 15},
		{formula: "2+3×4", angle: Degrees, want: 14},
		{formula: "(2+3)×4", angle: Degrees, want: 20},
		{formula: "2 + 2", angle: Degrees, want: 4},
		{formula: "5−3", angle: Degrees, want: 2},
		{formula: "6*7", angle: Degrees, want: 42},
		{formula: "-2^2", angle: Degrees, want: -4},
		{formula: "2^3^2", angle: Degrees, want: 512},
		{formula: "2^-1", angle: Degrees, want: 0.5},
		{formula: "2<sup>^</sup>10", angle: Degrees, want: 1024},
		{formula: "3×-2", angle: Degrees, want: -6},
		{formula: "3--2", angle: Degrees, want: 5},
		{formula: "2×+3", angle: Degrees, want: 6},
		{formula: "0.1+0.2", angle: Degrees, want: 0.3},
		{formula: ".5+0.", angle: Degrees, want: 0.5},
		{formula: "1e+21+0", angle: Degrees, want: 1e21},
		{formula: "1e-7×10", angle: Degrees, want: 1e-6},
		{formula: "sin(30)", angle: Degrees, want: 0.5},
		{formula: "cos(60)", angle: Degrees, want: 0.5},
		{formula: "tan(45)", angle: Degrees, want: 1},
		{formula: "sin(180)", angle: Degrees, want: 0},
		{formula: "sin(π÷2)", angle: Radians, want: 1},
		{formula: "sin<sup>-1</sup>(1)", angle: Degrees, want: 90},
		{formula: "acos(0)", angle: Radians, want: math.Pi / 2},
		{formula: "sinh(0)", angle: Degrees, want: 0},
		{formula: "tanh<sup>-1</sup>(0)", angle: Degrees, want: 0},
		{formula: "√9", angle: Degrees, want: 3},
		{formula: "√(16)", angle: Degrees, want: 4},
		{formula: "√9^2", angle: Degrees, want: 9},
		{formula: "∛27", angle: Degrees, want: 3},
		{formula: "3<sup>y</sup>√8", angle: Degrees, want: 2},
		{formula: "3<sup>y</sup>√-8", angle: Degrees, want: -2},
		{formula: "5!", angle: Degrees, want: 120},
		{formula: "-3!", angle: Degrees, want: -6},
		{formula: "50%", angle: Degrees, want: 0.5},
		{formula: "3<sup>2</sup>", angle: Degrees, want: 9},
		{formula: "2<sup>3</sup>", angle: Degrees, want: 8},
		{formula: "4<sup>-1</sup>", angle: Degrees, want: 0.25},
		{formula: "log(1000)", angle: Degrees, want: 3},
		{formula: "log<sub>2</sub>(8)", angle: Degrees, want: 3},
		{formula: "ln(e)", angle: Degrees, want: 1},
		{formula: "e<sup>x</sup>0", angle: Degrees, want: 1},
		{formula: "e<sup>x</sup>-1", angle: Degrees, want: 1 / math.E},
		{formula: "10<sup>x</sup>2", angle: Degrees, want: 100},
		{formula: "2<sup>x</sup>5", angle: Degrees, want: 32},
		{formula: "abs(-3)", angle: Degrees, want: 3},
		{formula: "π", angle: Degrees, want: math.Pi},
	}

	for _, tc := range tests {
		t.Run(tc.formula, func(t *testing.T) {
			got, err := p.Parse(tc.formula, tc.angle)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-10 {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestParseRejectsMalformedFormulas(t *testing.T) {
	p := MustDefault()

	tests := []struct {
		formula string
		reason  Reason
	}{
		{formula: "", reason: Syntax},
		{formula: "   ", reason: Syntax},
		{formula: "5÷0", reason: DivisionByZero},
		{formula: "5÷(2-2)", reason: DivisionByZero},
		{formula: "0<sup>-1</sup>", reason: DivisionByZero},
		{formula: "2+", reason: Syntax},
		{formula: "2++", reason: Syntax},
		{formula: "×2", reason: Syntax},
		{formula: "(2+3", reason: Syntax},
		{formula: "2+3)", reason: Syntax},
		{formula: "sin(30", reason: Syntax},
		{formula: "2 3", reason: Syntax},
		{formula: "2π", reason: Syntax},
		{formula: "abc", reason: Syntax},
		{formula: "√-4", reason: NonFinite},
		{formula: "ln(0)", reason: NonFinite},
		{formula: "171!", reason: NonFinite},
		{formula: "(-1)!", reason: NonFinite},
		{formula: "tan(90)", reason: NonFinite},
		{formula: "(-8)^0.5", reason: NonFinite},
		{formula: "10^400", reason: NonFinite},
		{formula: "2+-+-3", reason: Syntax},
		{formula: "--3", reason: Syntax},
		{formula: "2×+-3", reason: Syntax},
		{formula: "e<sup>x</sup>--1", reason: Syntax},
	}

	for _, tc := range tests {
		t.Run(tc.formula, func(t *testing.T) {
			_, err := p.Parse(tc.formula, Degrees)
			if err == nil {
				t.Fatalf("expected error for %q", tc.formula)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Reason != tc.reason {
				t.Fatalf("expected reason %s, got %s (%v)", tc.reason, pe.Reason, err)
			}
			if !IsParseError(err) {
				t.Fatal("expected IsParseError to report true")
			}
		})
	}
}

func TestParseRejectsDeepNesting(t *testing.T) {
	p := MustDefault()

	tests := []struct {
		name    string
		formula string
	}{
		{name: "groups", formula: strings.Repeat("(", 1_000_000) + "1" + strings.Repeat(")", 1_000_000)},
		{name: "calls", formula: strings.Repeat("sin(", 10_000) + "1" + strings.Repeat(")", 10_000)},
		{name: "prefix functions", formula: strings.Repeat("√", 10_000) + "4"},
		{name: "exponents", formula: strings.Repeat("2^", 10_000) + "1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := p.Parse(tc.formula, Degrees)

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if pe.Reason != Syntax || pe.Detail != "nesting too deep" {
				t.Fatalf("expected nesting error, got %v", err)
			}
			if v != 0 {
				t.Fatalf("expected zero value on error, got %v", v)
			}
		})
	}
}

func TestParseAcceptsModerateNesting(t *testing.T) {
	p := MustDefault()

	formula := strings.Repeat("(", 100) + "1+1" + strings.Repeat(")", 100)
	v, err := p.Parse(formula, Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
}

func TestParseReturnsZeroOnError(t *testing.T) {
	p := MustDefault()

	for _, formula := range []string{"1.2.3", "4+5÷0", "3×(2"} {
		v, err := p.Parse(formula, Degrees)
		if err == nil {
			t.Fatalf("expected error for %q", formula)
		}
		if v != 0 {
			t.Fatalf("expected zero value for %q, got %v", formula, v)
		}
	}
}

func TestParseAngleIsPerCall(t *testing.T) {
	p := MustDefault()

	deg, err := p.Parse("sin(90)", Degrees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deg != 1 {
		t.Fatalf("expected 1 in degrees, got %v", deg)
	}

	rad, err := p.Parse("sin(90)", Radians)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(rad-math.Sin(90)) > 1e-10 {
		t.Fatalf("expected %v in radians, got %v", math.Sin(90), rad)
	}

	if _, err := p.Parse("1", Angle(0)); err == nil {
		t.Fatal("expected error for zero angle divisor")
	}
}

func TestParseIsSafeForConcurrentUse(t *testing.T) {
	p := MustDefault()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := p.Parse("(1+2)×3!-√16", Degrees)
			if err != nil {
				errs <- err
				return
			}
			if v != 14 {
				errs <- errors.New("wrong result")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent parse failed: %v", err)
	}
}

func TestIsOperator(t *testing.T) {
	p := MustDefault()

	for _, key := range []string{"+", "×", "÷", "sin(", "√", "<sup>2</sup>", "(", ")", "π", "e<sup>x</sup>"} {
		if !p.IsOperator(key) {
			t.Fatalf("expected %q to be an operator glyph", key)
		}
	}
	for _, key := range []string{"7", "=", "sin", "DEL"} {
		if p.IsOperator(key) {
			t.Fatalf("did not expect %q to be an operator glyph", key)
		}
	}
}

func TestAngleStringAndParse(t *testing.T) {
	tests := []struct {
		in   string
		want Angle
		ok   bool
	}{
		{in: "deg", want: Degrees, ok: true},
		{in: "radians", want: Radians, ok: true},
		{in: "grad", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseAngle(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("expected (%v, %t), got (%v, %t)", tc.want, tc.ok, got, ok)
			}
		})
	}

	if Degrees.String() != "deg" || Radians.String() != "rad" {
		t.Fatalf("unexpected angle names %q %q", Degrees.String(), Radians.String())
	}
}
