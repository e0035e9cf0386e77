// Package parser evaluates calculator display formulas.
//
// The accepted syntax is driven by a versioned grammar document (see
// grammar.yaml) that binds display glyphs, including <sup>/<sub> markup,
// to a fixed set of operators, functions and constants. Precedence from
// lowest to highest:
//
//	+ -              additive, left-associative
//	× ÷              multiplicative, left-associative
//	+ - (unary)      sign
//	^  ʸ√            power and y-th root, right-associative
//	! % ² ³ ⁻¹       postfix
//	sin( … ) √ eˣ    function application and prefix functions
//	( … )            grouping
//	12.5 1e-7 π e    literals and constants
//
// Every intermediate value is rounded to 10 decimal places and must be
// finite. A sign may not directly follow another sign, and nesting deeper
// than MaxDepth is rejected.
package parser

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// MaxDepth bounds how deeply groups, function calls, signs and exponents
// may nest.
const MaxDepth = 512

// Parser holds a compiled grammar. It has no mutable state and is safe for
// concurrent use.
type Parser struct {
	version        int
	additive       glyphSet
	multiplicative glyphSet
	exponent       glyphSet
	postfix        glyphSet
	primary        glyphSet
	close          glyphSet
}

// New compiles a grammar document.
func New(grammar []byte) (*Parser, error) {
	return compile(grammar)
}

// Default compiles the embedded grammar.
func Default() (*Parser, error) {
	return compile(defaultGrammar)
}

// MustDefault is like Default but panics on error.
func MustDefault() *Parser {
	p, err := Default()
	if err != nil {
		panic(err)
	}
	return p
}

// Version is the version number declared by the grammar document.
func (p *Parser) Version() int {
	return p.version
}

// IsOperator reports whether key is a glyph an operator or function button
// may write into the formula.
func (p *Parser) IsOperator(key string) bool {
	for _, set := range []glyphSet{p.additive, p.multiplicative, p.exponent, p.postfix, p.primary, p.close} {
		for _, g := range set {
			if g.text == key {
				return true
			}
		}
	}
	return false
}

// Parse evaluates formula. Trigonometric functions divide their argument by
// angle and inverse functions multiply their result by it.
func (p *Parser) Parse(formula string, angle Angle) (v float64, err error) {
	if angle == 0 || math.IsNaN(float64(angle)) || math.IsInf(float64(angle), 0) {
		return 0, &ParseError{Formula: formula, Reason: Syntax, Detail: "invalid angle divisor"}
	}

	s := &state{p: p, src: formula, angle: angle}
	defer func() {
		if err != nil {
			v = 0
		}
	}()
	defer recoverer(&err)

	s.skipSpace()
	if s.eof() {
		s.fail(Syntax, "empty formula")
	}
	v = s.expr()
	s.skipSpace()
	if !s.eof() {
		s.fail(Syntax, fmt.Sprintf("unexpected %q", s.src[s.pos:]))
	}
	return s.finite(v), nil
}

// state is the per-call cursor; a Parser never stores one.
type state struct {
	p     *Parser
	src   string
	pos   int
	depth int
	angle Angle
}

func (s *state) eof() bool {
	return s.pos >= len(s.src)
}

func (s *state) skipSpace() {
	for !s.eof() {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *state) fail(reason Reason, detail string) {
	panic(&ParseError{Formula: s.src, Offset: s.pos, Reason: reason, Detail: detail})
}

// nest counts one level of recursion. The returned func undoes it.
func (s *state) nest() func() {
	s.depth++
	if s.depth > MaxDepth {
		s.fail(Syntax, "nesting too deep")
	}
	return func() { s.depth-- }
}

// accept consumes the longest glyph of set found at the cursor.
func (s *state) accept(set glyphSet) (glyph, bool) {
	s.skipSpace()
	g, ok := set.match(s.src[s.pos:])
	if ok {
		s.pos += len(g.text)
	}
	return g, ok
}

// finite rounds v and rejects NaN and infinities.
func (s *state) finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		s.fail(NonFinite, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return round(v)
}

func (s *state) expr() float64 {
	v := s.term()
	for {
		op, ok := s.accept(s.p.additive)
		if !ok {
			return v
		}
		r := s.term()
		if op.name == "plus" {
			v = s.finite(v + r)
		} else {
			v = s.finite(v - r)
		}
	}
}

func (s *state) term() float64 {
	v := s.unary()
	for {
		op, ok := s.accept(s.p.multiplicative)
		if !ok {
			return v
		}
		r := s.unary()
		if op.name == "multiply" {
			v = s.finite(v * r)
			continue
		}
		if r == 0 {
			s.fail(DivisionByZero, "")
		}
		v = s.finite(v / r)
	}
}

func (s *state) unary() float64 {
	defer s.nest()()

	if op, ok := s.accept(s.p.additive); ok {
		s.noSign()
		v := s.power()
		if op.name == "minus" {
			return -v
		}
		return v
	}
	return s.power()
}

func (s *state) power() float64 {
	base := s.postfix()
	op, ok := s.accept(s.p.exponent)
	if !ok {
		return base
	}
	// The right operand goes back through unary so that 2^-1 and 2^3^2
	// (= 2^9) both parse.
	exp := s.unary()
	if op.name == "root" {
		if base == 0 {
			s.fail(DivisionByZero, "zeroth root")
		}
		return s.finite(nthroot(base, exp))
	}
	return s.finite(math.Pow(base, exp))
}

func (s *state) postfix() float64 {
	v := s.primary()
	for {
		op, ok := s.accept(s.p.postfix)
		if !ok {
			return v
		}
		switch op.name {
		case "factorial":
			v = s.finite(factorial(v))
		case "percent":
			v = s.finite(v / 100)
		case "square":
			v = s.finite(v * v)
		case "cube":
			v = s.finite(v * v * v)
		case "reciprocal":
			if v == 0 {
				s.fail(DivisionByZero, "")
			}
			v = s.finite(1 / v)
		}
	}
}

func (s *state) primary() float64 {
	defer s.nest()()

	if g, ok := s.accept(s.p.primary); ok {
		switch g.kind {
		case kindOpen:
			v := s.expr()
			s.expectClose()
			return v
		case kindCall:
			x := s.expr()
			s.expectClose()
			return s.finite(builtins[g.name](x, s.angle))
		case kindPrefix:
			x := s.operand()
			return s.finite(builtins[g.name](x, s.angle))
		case kindConstant:
			return constants[g.name]
		}
	}
	return s.number()
}

// operand is the argument of a prefix function: an optionally signed
// primary, so that e^x applied to -1 reads naturally.
func (s *state) operand() float64 {
	defer s.nest()()

	if op, ok := s.accept(s.p.additive); ok {
		s.noSign()
		v := s.primary()
		if op.name == "minus" {
			return -v
		}
		return v
	}
	return s.primary()
}

// noSign rejects a sign written straight after another one, as in 2+-+3.
func (s *state) noSign() {
	s.skipSpace()
	if _, ok := s.p.additive.match(s.src[s.pos:]); ok {
		s.fail(Syntax, "repeated sign")
	}
}

func (s *state) expectClose() {
	if _, ok := s.accept(s.p.close); !ok {
		if s.eof() {
			s.fail(Syntax, "missing closing parenthesis")
		}
		s.fail(Syntax, "expected closing parenthesis")
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// number scans a decimal literal with an optional exponent, as produced by
// formatted results such as 1e+21.
func (s *state) number() float64 {
	s.skipSpace()
	start := s.pos
	digits := 0
	for !s.eof() && isDigit(s.src[s.pos]) {
		s.pos++
		digits++
	}
	if !s.eof() && s.src[s.pos] == '.' {
		s.pos++
		for !s.eof() && isDigit(s.src[s.pos]) {
			s.pos++
			digits++
		}
	}
	if digits == 0 {
		s.pos = start
		if s.eof() {
			s.fail(Syntax, "unexpected end of formula")
		}
		r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
		s.fail(Syntax, fmt.Sprintf("unexpected %q", r))
	}
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		i := s.pos + 1
		if i < len(s.src) && (s.src[i] == '+' || s.src[i] == '-') {
			i++
		}
		if i < len(s.src) && isDigit(s.src[i]) {
			for i < len(s.src) && isDigit(s.src[i]) {
				i++
			}
			s.pos = i
		}
	}
	v, err := strconv.ParseFloat(s.src[start:s.pos], 64)
	if err != nil {
		s.fail(Syntax, err.Error())
	}
	return s.finite(v)
}
