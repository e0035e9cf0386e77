// Package stack holds the two undo stacks behind the calculator display:
// the tokens of the entry being typed and the tokens committed to the
// running formula since the last successful evaluation.
package stack

import (
	"strconv"
	"strings"
)

// Token is one keystroke's worth of display text.
type Token = string

// SignToggle is the marker pushed by the +/– key. Flattening applies it to
// the number it follows, so popping it undoes the toggle.
const SignToggle Token = "+/–"

// boundary ends an entry migrated into the formula stack. It renders as
// nothing but stops the digits and sign toggles of two adjacent entries
// from merging into one number. Pop and Tokens skip it.
const boundary Token = ""

// Stack is a LIFO of tokens.
type Stack struct {
	tokens []Token
}

func (s *Stack) Push(t Token) {
	s.tokens = append(s.tokens, t)
}

// Pop removes the newest token, along with any entry boundaries above it.
// It reports false when no token is left.
func (s *Stack) Pop() (Token, bool) {
	for len(s.tokens) > 0 {
		last := s.tokens[len(s.tokens)-1]
		s.tokens = s.tokens[:len(s.tokens)-1]
		if last != boundary {
			return last, true
		}
	}
	return "", false
}

func (s *Stack) Len() int {
	return len(s.tokens)
}

func (s *Stack) Clear() {
	s.tokens = s.tokens[:0]
}

// Truncate drops tokens above n. It is a no-op when n >= Len.
func (s *Stack) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.tokens) {
		s.tokens = s.tokens[:n]
	}
}

// Tokens returns a copy of the stack, oldest first, without entry
// boundaries.
func (s *Stack) Tokens() []Token {
	out := make([]Token, 0, len(s.tokens))
	for _, t := range s.tokens {
		if t != boundary {
			out = append(out, t)
		}
	}
	return out
}

// Flatten concatenates the tokens in push order, resolving sign toggles.
func (s *Stack) Flatten() string {
	var b, num strings.Builder
	negate := false

	flush := func() {
		n := num.String()
		if negate {
			if rest, ok := strings.CutPrefix(n, "-"); ok {
				n = rest
			} else {
				n = "-" + n
			}
		}
		b.WriteString(n)
		num.Reset()
		negate = false
	}

	for _, t := range s.tokens {
		switch {
		case t == boundary:
			flush()
		case t == SignToggle:
			negate = !negate
		case isNumeric(t):
			num.WriteString(t)
		default:
			flush()
			b.WriteString(t)
		}
	}
	flush()

	return b.String()
}

// isNumeric reports whether t belongs to a number: digit keys, the decimal
// point, or a recalled value.
func isNumeric(t Token) bool {
	if t == "" {
		return false
	}
	if strings.Trim(t, "0123456789.") == "" {
		return true
	}
	_, err := strconv.ParseFloat(t, 64)
	return err == nil
}

// Pair is the entry stack together with the formula stack.
type Pair struct {
	entry   Stack
	formula Stack
}

func (p *Pair) PushEntry(t Token) { p.entry.Push(t) }

// PopEntry removes the newest entry token; empty stacks report false.
func (p *Pair) PopEntry() (Token, bool) { return p.entry.Pop() }

func (p *Pair) PushFormula(t Token) { p.formula.Push(t) }

// PopFormula removes the newest formula token; empty stacks report false.
func (p *Pair) PopFormula() (Token, bool) { return p.formula.Pop() }

func (p *Pair) ClearEntry()   { p.entry.Clear() }
func (p *Pair) ClearFormula() { p.formula.Clear() }

func (p *Pair) FlattenEntry() string   { return p.entry.Flatten() }
func (p *Pair) FlattenFormula() string { return p.formula.Flatten() }

func (p *Pair) EntryLen() int   { return p.entry.Len() }
func (p *Pair) FormulaLen() int { return p.formula.Len() }

// Empty reports whether both stacks are empty.
func (p *Pair) Empty() bool {
	return p.entry.Len() == 0 && p.formula.Len() == 0
}

// TruncateFormula rolls the formula stack back to n tokens.
func (p *Pair) TruncateFormula(n int) { p.formula.Truncate(n) }

func (p *Pair) EntryTokens() []Token   { return p.entry.Tokens() }
func (p *Pair) FormulaTokens() []Token { return p.formula.Tokens() }

// MigrateEntryToFormula appends the entry tokens, in order, to the formula
// stack, closes them with an entry boundary and empties the entry stack.
func (p *Pair) MigrateEntryToFormula() {
	if len(p.entry.tokens) == 0 {
		return
	}
	p.formula.tokens = append(p.formula.tokens, p.entry.tokens...)
	p.formula.tokens = append(p.formula.tokens, boundary)
	p.entry.Clear()
}
