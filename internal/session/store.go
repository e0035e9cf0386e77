package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/intel/webapps-scientific-calculator/internal/history"
	"github.com/intel/webapps-scientific-calculator/internal/i18n"
	"github.com/intel/webapps-scientific-calculator/internal/parser"
)

// Store holds the live sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	parser    *parser.Parser
	bundle    *i18n.Bundle
	angle     parser.Angle
	locale    string
	retention time.Duration
	idle      time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// DefaultIdleTimeout is how long an unused session lives.
const DefaultIdleTimeout = 24 * time.Hour

// Option configures a Store.
type Option func(*Store)

// WithAngle sets the angle mode of new sessions that do not ask for one.
func WithAngle(a parser.Angle) Option { return func(s *Store) { s.angle = a } }

// WithLocale sets the locale of new sessions that do not ask for one.
func WithLocale(locale string) Option { return func(s *Store) { s.locale = locale } }

func WithRetention(d time.Duration) Option { return func(s *Store) { s.retention = d } }

// WithIdleTimeout makes Sweep drop sessions unused for d. Zero keeps
// sessions until they are deleted.
func WithIdleTimeout(d time.Duration) Option { return func(s *Store) { s.idle = d } }

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.logger = l } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func NewStore(p *parser.Parser, b *i18n.Bundle, opts ...Option) *Store {
	s := &Store{
		sessions:  make(map[string]*Session),
		parser:    p,
		bundle:    b,
		angle:     parser.Degrees,
		retention: history.DefaultRetention,
		idle:      DefaultIdleTimeout,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session. A zero angle means the store default; the
// locale preferences are tried in order before the store default.
func (s *Store) Create(angle parser.Angle, locales ...string) *Session {
	if angle == 0 {
		angle = s.angle
	}
	l := s.bundle.Localizer(append(locales[:len(locales):len(locales)], s.locale)...)

	sess := newSession(uuid.NewString(), s.parser, l, angle, s.retention, s.logger, s.now)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("locale", sess.locale),
		zap.Stringer("angle", angle),
	)
	return sess
}

// Get returns the session and marks it used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// Sweep deletes the sessions idle for at least the idle timeout and
// returns how many it removed.
func (s *Store) Sweep() int {
	if s.idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.lastUsed().After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
		s.logger.Info("session expired",
			zap.String("session_id", id),
			zap.Duration("idle_timeout", s.idle),
		)
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len is the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Parser is the parser shared by every session.
func (s *Store) Parser() *parser.Parser {
	return s.parser
}

// Collector exports the number of live sessions.
func (s *Store) Collector() prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "calculator_active_sessions",
		Help: "Number of live calculator sessions.",
	}, func() float64 {
		return float64(s.Len())
	})
}
