// Package engine is the calculator state machine. It turns key presses
// into edits of the entry and formula stacks, evaluates the formula on "="
// and reports the resulting display text to a Display.
//
// A Calculator is not safe for concurrent use; callers serialise presses.
package engine

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/intel/webapps-scientific-calculator/internal/formula"
	"github.com/intel/webapps-scientific-calculator/internal/i18n"
	"github.com/intel/webapps-scientific-calculator/internal/parser"
	"github.com/intel/webapps-scientific-calculator/internal/stack"
)

// MaxEntryLength is the longest entry, in characters, digit keys may grow.
const MaxEntryLength = 22

// Keys with fixed meaning. Any key not listed here and not a digit key is
// an operator or function glyph.
const (
	KeyClear    = "C"
	KeyAllClear = "AC"
	KeyDelete   = "DEL"
	KeyBack     = "⌫"
	KeyEquals   = "="
	KeyPoint    = "."
	KeyZeroZero = "00"
	KeySign     = stack.SignToggle
)

// ClearFlags decide whether the next digit or operator press wipes the
// entry or the formula first.
type ClearFlags struct {
	EntryOnNumber     bool `json:"entry_on_number"`
	EntryOnFunction   bool `json:"entry_on_function"`
	FormulaOnNumber   bool `json:"formula_on_number"`
	FormulaOnFunction bool `json:"formula_on_function"`
}

// Calculator holds one session's worth of calculator state.
type Calculator struct {
	parser *parser.Parser
	stacks stack.Pair

	entry       string
	formulaText string
	// committed is the formula display text left by the last successful
	// evaluation; the formula stack is rendered after it.
	committed string
	flags     ClearFlags

	display   Display
	history   History
	localizer Localizer
	angle     AngleProvider
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

func WithDisplay(d Display) Option { return func(c *Calculator) { c.display = d } }

func WithHistory(h History) Option { return func(c *Calculator) { c.history = h } }

func WithLocalizer(l Localizer) Option { return func(c *Calculator) { c.localizer = l } }

func WithAngle(a AngleProvider) Option { return func(c *Calculator) { c.angle = a } }

func WithLogger(l *zap.Logger) Option { return func(c *Calculator) { c.logger = l } }

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option { return func(c *Calculator) { c.now = now } }

// New returns a calculator with empty displays, in degree mode unless an
// AngleProvider is given.
func New(p *parser.Parser, opts ...Option) *Calculator {
	c := &Calculator{
		parser:    p,
		display:   nopDisplay{},
		history:   nopHistory{},
		localizer: i18n.Default(),
		angle:     FixedAngle(parser.Degrees),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.display.SetEntry("")
	c.display.SetFormula("")
	return c
}

// Press dispatches key to the handler for its key class.
func (c *Calculator) Press(key string) {
	switch Classify(key) {
	case KindDigit:
		c.PressDigit(key)
	case KindClear:
		c.PressClear()
	case KindDelete:
		c.PressDelete()
	case KindEquals:
		c.PressEquals()
	default:
		c.PressOperator(key)
	}
}

// PressDigit handles 0-9, 00, the decimal point and the sign toggle.
func (c *Calculator) PressDigit(value string) {
	c.handleClearOnNumber()

	entry := c.entry
	if utf8.RuneCountInString(entry) >= MaxEntryLength {
		return
	}

	switch value {
	case "0":
		if entry == "0" {
			return
		}
	case KeyZeroZero:
		if entry == "0" || entry == "" {
			return
		}
	case KeyPoint:
		if entry == "" {
			c.stacks.PushEntry("0")
		} else if strings.Contains(entry, KeyPoint) {
			return
		}
	case KeySign:
		if entry == "" || entry == "0" {
			return
		}
	}

	c.stacks.PushEntry(value)
	c.setEntry(c.stacks.FlattenEntry())
	c.flags = ClearFlags{}
}

// PressOperator commits the entry to the formula followed by op.
func (c *Calculator) PressOperator(op string) {
	c.handleClearOnFunction()

	entry := c.entry
	c.stacks.MigrateEntryToFormula()
	c.setFormula(formula.AppendOperator(formula.AppendEntry(c.formulaText, entry), op))
	c.setEntry("")
	c.stacks.PushFormula(op)

	// FormulaOnFunction is left as it was.
	c.flags.EntryOnNumber = false
	c.flags.EntryOnFunction = false
	c.flags.FormulaOnNumber = false
}

// PressClear clears the entry (C) or the committed formula (AC), depending
// on the current clear label. Both stacks are emptied either way.
func (c *Calculator) PressClear() {
	if c.ClearLabel() == KeyClear {
		c.setEntry("")
	} else {
		c.committed = ""
	}
	c.stacks.ClearEntry()
	c.stacks.ClearFormula()
	c.setFormula(c.committed)
}

// PressDelete undoes one token: from the entry if it has any, else from
// the formula.
func (c *Calculator) PressDelete() {
	if c.stacks.Empty() {
		return
	}
	if c.entry == c.MalformedText() {
		c.setEntry("")
		return
	}

	if c.stacks.EntryLen() > 0 {
		c.stacks.PopEntry()
		c.setEntry(c.stacks.FlattenEntry())
		return
	}

	c.stacks.PopFormula()
	c.setFormula(c.committed + c.stacks.FlattenFormula())
}

// PressEquals evaluates the formula. A rejected formula puts the
// malformed-expression text in the entry and leaves the formula as it was
// before the press.
func (c *Calculator) PressEquals() {
	c.handleClearOnFunction()

	entry := c.entry
	rollback := c.stacks.FormulaLen()
	c.stacks.MigrateEntryToFormula()

	expr := formula.Normalize(formula.AppendEntry(c.formulaText, entry))
	if expr == "" {
		c.stacks.ClearEntry()
		return
	}

	v, err := c.parser.Parse(expr, c.angle.Angle())

	c.flags.EntryOnNumber = true
	c.flags.EntryOnFunction = true

	if err != nil {
		c.logger.Debug("formula rejected",
			zap.String("formula", expr),
			zap.Error(err),
		)
		c.stacks.TruncateFormula(rollback)
		c.flags.FormulaOnNumber = false
		c.setEntry(c.MalformedText())
	} else {
		result := formula.FormatResult(v)
		if entry != "" {
			c.history.Record(expr, v, c.now())
		}
		c.flags.FormulaOnNumber = true
		c.stacks.ClearFormula()
		c.committed = result
		c.setFormula(result)
		c.setEntry(result)
	}

	c.stacks.ClearEntry()
}

// Recall puts a stored value (a memory slot or a history result) into the
// entry. The next digit replaces it; the next operator commits it.
func (c *Calculator) Recall(value string) {
	c.handleClearOnNumber()

	c.stacks.ClearEntry()
	c.stacks.PushEntry(value)
	c.setEntry(value)

	c.flags.EntryOnNumber = true
	c.flags.EntryOnFunction = false
}

// Entry is the current main entry text.
func (c *Calculator) Entry() string { return c.entry }

// Formula is the current formula display text.
func (c *Calculator) Formula() string { return c.formulaText }

// ClearLabel is the caption of the clear key.
func (c *Calculator) ClearLabel() string { return clearLabel(c.entry) }

// Malformed reports whether the entry shows the malformed-expression text.
func (c *Calculator) Malformed() bool { return c.entry == c.MalformedText() }

// MalformedText is the localized malformed-expression text.
func (c *Calculator) MalformedText() string {
	return c.localizer.Translate(i18n.MalformedExpression)
}

// Snapshot describes the calculator state for clients and tests.
type Snapshot struct {
	Entry         string        `json:"entry"`
	Formula       string        `json:"formula"`
	Committed     string        `json:"committed"`
	ClearLabel    string        `json:"clear_label"`
	Malformed     bool          `json:"malformed"`
	EntryTokens   []stack.Token `json:"entry_tokens"`
	FormulaTokens []stack.Token `json:"formula_tokens"`
	Flags         ClearFlags    `json:"flags"`
}

func (c *Calculator) Snapshot() Snapshot {
	return Snapshot{
		Entry:         c.entry,
		Formula:       c.formulaText,
		Committed:     c.committed,
		ClearLabel:    c.ClearLabel(),
		Malformed:     c.Malformed(),
		EntryTokens:   c.stacks.EntryTokens(),
		FormulaTokens: c.stacks.FormulaTokens(),
		Flags:         c.flags,
	}
}

func (c *Calculator) setEntry(text string) {
	c.entry = text
	c.display.SetEntry(text)
}

func (c *Calculator) setFormula(text string) {
	c.formulaText = text
	c.display.SetFormula(text)
}

func (c *Calculator) handleClearOnNumber() {
	if c.flags.EntryOnNumber {
		c.setEntry("")
		c.stacks.ClearEntry()
	}
	if c.flags.FormulaOnNumber {
		c.committed = ""
		c.stacks.ClearFormula()
		c.setFormula("")
	}
}

func (c *Calculator) handleClearOnFunction() {
	if c.flags.EntryOnFunction {
		c.setEntry("")
		c.stacks.ClearEntry()
	}
	if c.flags.FormulaOnFunction {
		c.committed = ""
		c.stacks.ClearFormula()
		c.setFormula("")
	}
}

func clearLabel(entry string) string {
	if entry == "" {
		return KeyAllClear
	}
	return KeyClear
}
