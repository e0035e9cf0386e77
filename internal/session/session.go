// Package session keeps live calculators keyed by id. Each session owns a
// calculator, its display, a history store and a memory bank.
package session

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/intel/webapps-scientific-calculator/internal/engine"
	"github.com/intel/webapps-scientific-calculator/internal/formula"
	"github.com/intel/webapps-scientific-calculator/internal/history"
	"github.com/intel/webapps-scientific-calculator/internal/i18n"
	"github.com/intel/webapps-scientific-calculator/internal/memory"
	"github.com/intel/webapps-scientific-calculator/internal/parser"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrUnknownKey = errors.New("unknown key")
)

// Session is one calculator. Its methods are safe for concurrent use;
// presses are applied one at a time.
type Session struct {
	ID      string
	Created time.Time

	mu      sync.Mutex
	calc    *engine.Calculator
	screen  *engine.Screen
	history *history.Store
	memory  *memory.Bank
	angle   angleMode
	locale  string
	parser  *parser.Parser
	now     func() time.Time
	used    atomic.Int64 // unix nanoseconds
}

// Snapshot is the client view of a session.
type Snapshot struct {
	ID       string `json:"id"`
	Angle    string `json:"angle"`
	Locale   string `json:"locale"`
	FreeSlot string `json:"free_slot"`
	engine.Snapshot
}

func newSession(id string, p *parser.Parser, l *i18n.Localizer, angle parser.Angle, retention time.Duration, logger *zap.Logger, now func() time.Time) *Session {
	s := &Session{
		ID:      id,
		Created: now(),
		screen:  &engine.Screen{},
		history: history.New(retention),
		memory:  memory.New(),
		locale:  l.Locale(),
		parser:  p,
		now:     now,
	}
	s.angle.set(angle)
	s.touch(s.Created)
	s.calc = engine.New(p,
		engine.WithDisplay(s.screen),
		engine.WithHistory(s.history),
		engine.WithLocalizer(l),
		engine.WithAngle(&s.angle),
		engine.WithLogger(logger.With(zap.String("session_id", id))),
		engine.WithClock(now),
	)
	return s
}

// CheckKey reports ErrUnknownKey for a key that is neither a fixed key nor
// a glyph the grammar knows.
func (s *Session) CheckKey(key string) error {
	if engine.Classify(key) == engine.KindOperator && !s.parser.IsOperator(formula.Normalize(key)) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// Press applies one key press.
func (s *Session) Press(key string) (Snapshot, error) {
	if err := s.CheckKey(key); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calc.Press(key)
	return s.snapshot(), nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Angle is the angle mode used for the next evaluation.
func (s *Session) Angle() parser.Angle {
	return s.angle.Angle()
}

func (s *Session) SetAngle(a parser.Angle) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.angle.set(a)
	return s.snapshot()
}

// History lists the session's retained evaluations, oldest first.
func (s *Session) History() []history.Entry {
	return s.history.List(s.now())
}

// RecallHistory puts the result of history entry index into the entry.
func (s *Session) RecallHistory(index int) (Snapshot, error) {
	e, err := s.history.Get(index, s.now())
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calc.Recall(e.Result)
	return s.snapshot(), nil
}

// HistoryToMemory stores the result of history entry index in the next
// free memory slot.
func (s *Session) HistoryToMemory(index int) (memory.Slot, error) {
	e, err := s.history.Get(index, s.now())
	if err != nil {
		return memory.Slot{}, err
	}
	return s.memory.Store(e.Result)
}

// Memory lists the session's memory slots.
func (s *Session) Memory() []memory.Slot {
	return s.memory.List()
}

// StoreEntry stores the current entry in the next free memory slot.
func (s *Session) StoreEntry() (memory.Slot, error) {
	s.mu.Lock()
	entry := s.calc.Entry()
	s.mu.Unlock()

	return s.memory.Store(entry)
}

// RecallMemory puts the value of slot n into the entry.
func (s *Session) RecallMemory(n int) (Snapshot, error) {
	v, err := s.memory.Recall(n)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calc.Recall(v)
	return s.snapshot(), nil
}

func (s *Session) DescribeMemory(n int, description string) (memory.Slot, error) {
	return s.memory.Describe(n, description)
}

func (s *Session) ClearMemory(n int) error {
	return s.memory.Clear(n)
}

func (s *Session) ClearAllMemory() {
	s.memory.ClearAll()
}

// FreeSlot is the label of the next free memory slot, or memory.FullLabel.
func (s *Session) FreeSlot() string {
	return s.memory.NextFree()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:       s.ID,
		Angle:    s.angle.Angle().String(),
		Locale:   s.locale,
		FreeSlot: s.memory.NextFree(),
		Snapshot: s.calc.Snapshot(),
	}
}

func (s *Session) touch(at time.Time) {
	s.used.Store(at.UnixNano())
}

func (s *Session) lastUsed() time.Time {
	return time.Unix(0, s.used.Load())
}

// angleMode is read by the calculator during a press, while the session
// lock is held, so it carries its own synchronisation.
type angleMode struct {
	bits atomic.Uint64
}

func (a *angleMode) Angle() parser.Angle {
	return parser.Angle(math.Float64frombits(a.bits.Load()))
}

func (a *angleMode) set(v parser.Angle) {
	a.bits.Store(math.Float64bits(float64(v)))
}
