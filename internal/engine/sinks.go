package engine

import (
	"time"

	"github.com/intel/webapps-scientific-calculator/internal/parser"
)

// Display receives the text of the two calculator displays. The engine
// never reads it back.
type Display interface {
	SetEntry(text string)
	SetFormula(text string)
}

// Localizer supplies the malformed-expression text.
type Localizer interface {
	Translate(key string) string
}

// History is told about every successful evaluation of a typed entry.
type History interface {
	Record(formula string, result float64, at time.Time)
}

// AngleProvider supplies the trigonometric divisor at evaluation time.
type AngleProvider interface {
	Angle() parser.Angle
}

// FixedAngle is an AngleProvider that never changes.
type FixedAngle parser.Angle

func (a FixedAngle) Angle() parser.Angle { return parser.Angle(a) }

// Screen is a Display that keeps the last text written to each area.
type Screen struct {
	entry   string
	formula string
}

func (s *Screen) SetEntry(text string)   { s.entry = text }
func (s *Screen) SetFormula(text string) { s.formula = text }
func (s *Screen) Entry() string          { return s.entry }
func (s *Screen) Formula() string        { return s.formula }

// ClearLabel is the caption of the clear key: C while there is an entry
// to clear, AC otherwise.
func (s *Screen) ClearLabel() string {
	return clearLabel(s.entry)
}

type nopDisplay struct{}

func (nopDisplay) SetEntry(string)   {}
func (nopDisplay) SetFormula(string) {}

type nopHistory struct{}

func (nopHistory) Record(string, float64, time.Time) {}
