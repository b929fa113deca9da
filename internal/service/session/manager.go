package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/notify"
	"github.com/TechX-demo/easy-pay-cart/internal/service/cart"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrInvalidSession = errors.New("invalid session")

// Manager issues anonymous sessions and expires them after a period of
// inactivity. Expiry is checked lazily on lookup and by Sweep.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	catalog  cart.Lookup
	ttl      time.Duration
	queueMax int
	now      func() time.Time
	logger   *zerolog.Logger
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithQueueSize bounds the notifications kept per session.
func WithQueueSize(n int) Option {
	return func(m *Manager) { m.queueMax = n }
}

func NewManager(catalog cart.Lookup, ttl time.Duration, logger *zerolog.Logger, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = 3 * time.Hour
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		catalog:  catalog,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Issue(_ context.Context) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	queue := notify.NewQueue(m.queueMax)
	sessionLog := m.logger.With().Str("session_id", id.String()).Logger()
	notifier := notify.Multi(queue, notify.Log(sessionLog))
	s := &Session{
		ID:            id.String(),
		Cart:          cart.New(m.catalog, notifier),
		Notifications: queue,
		Notifier:      notifier,
		expiresAt:     m.now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Lookup returns a live session and extends its expiry.
func (m *Manager) Lookup(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidSession
	}
	now := m.now()
	if s.expired(now) {
		m.remove(id)
		return nil, ErrInvalidSession
	}
	s.touch(now.Add(m.ttl))
	return s, nil
}

// Sweep drops every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	now := m.now()
	var expired []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if s.expired(now) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()
	for _, id := range expired {
		m.remove(id)
	}
	if len(expired) > 0 {
		m.logger.Debug().Int("count", len(expired)).Msg("expired sessions removed")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

func (m *Manager) TTLSeconds() int {
	return int(m.ttl.Seconds())
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.close()
	}
}
