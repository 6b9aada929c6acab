package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-outfit-service/internal/observability"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Store persists session state for its TTL. Implementations live in internal/cache.
type Store interface {
	Get(ctx context.Context, id string) (*State, bool, error)
	Set(ctx context.Context, id string, s *State, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Manager creates, loads and saves sessions. Updates to one ID are serialized within
// the process; across replicas the last save wins.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	locks map[string]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
		locks: make(map[string]*idLock),
	}
}

// lock holds id's update lock until the returned func is called.
func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &idLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

// Now is the manager's clock.
func (m *Manager) Now() time.Time { return m.now() }

// Create starts a session for a page load.
func (m *Manager) Create(ctx context.Context, darkMode bool) (*State, error) {
	s := New(m.newID(), darkMode, m.now())
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	observability.SessionsCreatedTotal.Inc()
	return s, nil
}

// Load returns the state for id. Saves through Update refresh the TTL.
func (m *Manager) Load(ctx context.Context, id string) (*State, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	s, ok, err := m.store.Get(ctx, id)
	if err != nil {
		observability.SessionStoreErrorsTotal.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Update loads id, applies fn and saves the result. fn's error aborts without saving.
func (m *Manager) Update(ctx context.Context, id string, fn func(*State) error) (*State, error) {
	defer m.lock(id)()
	s, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete drops a session. Unknown or malformed IDs are not an error.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	defer m.lock(id)()
	if err := m.store.Delete(ctx, id); err != nil {
		observability.SessionStoreErrorsTotal.WithLabelValues("delete").Inc()
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (m *Manager) save(ctx context.Context, s *State) error {
	if err := m.store.Set(ctx, s.ID, s, m.ttl); err != nil {
		observability.SessionStoreErrorsTotal.WithLabelValues("set").Inc()
		observability.LoggerFromContext(ctx).Warn("session save failed", zap.String("session_id", s.ID), zap.Error(err))
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
