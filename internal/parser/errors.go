package parser

import (
	"errors"
	"fmt"
)

// Reason classifies why a formula was rejected.
type Reason int

const (
	Syntax Reason = iota
	DivisionByZero
	NonFinite
)

func (r Reason) String() string {
	switch r {
	case Syntax:
		return "syntax error"
	case DivisionByZero:
		return "division by zero"
	case NonFinite:
		return "non-finite result"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// ParseError is the only error Parse returns. Offset is a byte offset into
// Formula.
type ParseError struct {
	Formula string
	Offset  int
	Reason  Reason
	Detail  string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("parse %q at offset %d: %s", e.Formula, e.Offset, e.Reason)
	}
	return fmt.Sprintf("parse %q at offset %d: %s: %s", e.Formula, e.Offset, e.Reason, e.Detail)
}

// IsParseError reports whether err wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// recoverer turns a *ParseError panic raised during evaluation into a
// returned error. Anything else keeps panicking.
func recoverer(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	pe, ok := r.(*ParseError)
	if !ok {
		panic(r)
	}
	*errp = pe
}
