package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"coremap/internal/catalog"
	"coremap/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ManagerOptions tunes the session manager
type ManagerOptions struct {
	Session     SessionOptions
	MaxSessions int
	// IdleTimeout closes sessions without viewer activity; zero disables reaping
	IdleTimeout time.Duration
}

// SessionInfo describes an open session
type SessionInfo struct {
	ID       string    `json:"id"`
	Created  time.Time `json:"created"`
	LastSeen time.Time `json:"last_seen"`
}

// Manager creates and tracks sessions
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catMu   sync.RWMutex
	catalog *catalog.Catalog
	source  string

	opts   ManagerOptions
	bus    *EventBus
	logger *zap.Logger

	// ctx outlives individual requests; sessions stop when it is cancelled
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a manager serving cat
func NewManager(cat *catalog.Catalog, source string, opts ManagerOptions, bus *EventBus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions: make(map[string]*Session),
		catalog:  cat,
		source:   source,
		opts:     opts,
		bus:      bus,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Catalog returns the catalog new sessions are built from
func (m *Manager) Catalog() *catalog.Catalog {
	m.catMu.RLock()
	defer m.catMu.RUnlock()
	return m.catalog
}

// Source names where the current catalog came from
func (m *Manager) Source() string {
	m.catMu.RLock()
	defer m.catMu.RUnlock()
	return m.source
}

// SetCatalog swaps the catalog for new sessions after validating it.
// An invalid catalog is rejected and the previous one stays in use.
func (m *Manager) SetCatalog(cat *catalog.Catalog, source string) error {
	if err := cat.Validate(); err != nil {
		metrics.CatalogReloads.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: %w", ErrGraphUnavailable, err)
	}

	m.catMu.Lock()
	m.catalog = cat
	m.source = source
	m.catMu.Unlock()

	metrics.CatalogReloads.WithLabelValues("ok").Inc()
	m.logger.Info("catalog loaded",
		zap.String("source", source),
		zap.String("fingerprint", cat.Fingerprint()),
		zap.Int("nodes", len(cat.Nodes)),
		zap.Int("edges", len(cat.Edges)),
	)
	m.bus.Publish(Event{
		Type: EventCatalogReloaded,
		Payload: CatalogPayload{
			Source:      source,
			Fingerprint: cat.Fingerprint(),
			Nodes:       len(cat.Nodes),
			Edges:       len(cat.Edges),
		},
	})
	return nil
}

// Reload loads src and swaps it in
func (m *Manager) Reload(ctx context.Context, src catalog.Source) error {
	cat, err := src.Load(ctx)
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("load catalog %s: %w", src.Name(), err)
	}
	return m.SetCatalog(cat, src.Name())
}

// Create builds a graph from the current catalog and starts a session on it
func (m *Manager) Create() (*Session, error) {
	cat := m.Catalog()
	g, err := cat.Build(m.opts.Session.Physics.Center)
	if err != nil {
		m.logger.Warn("catalog does not build", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGraphUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return nil, ErrSessionClosed
	}
	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	s := NewSession(m.ctx, id, g, m.opts.Session, m.bus, m.logger)
	m.sessions[id] = s
	metrics.ActiveSessions.Inc()

	m.logger.Debug("session created", zap.String("session", id), zap.Int("nodes", g.Len()))
	return s, nil
}

// Get returns the session with id
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close stops and forgets the session with id
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Close()
	metrics.ActiveSessions.Dec()
	return nil
}

// List describes the open sessions ordered by creation time
func (m *Manager) List() []SessionInfo {
	m.mu.RLock()
	out := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, SessionInfo{ID: s.ID(), Created: s.Created(), LastSeen: s.LastSeen()})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ReapIdle closes sessions whose last activity is before now minus the idle
// timeout. Sessions with an open frame stream are never idle.
func (m *Manager) ReapIdle(now time.Time) int {
	if m.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.opts.IdleTimeout)

	var stale []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if !s.Watched() && s.LastSeen().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	reaped := 0
	for _, id := range stale {
		if err := m.Close(id); err == nil {
			reaped++
			m.logger.Info("idle session closed", zap.String("session", id))
		}
	}
	return reaped
}

// Run reaps idle sessions until ctx is cancelled, then closes every session
func (m *Manager) Run(ctx context.Context) error {
	defer m.Shutdown()

	if m.opts.IdleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(m.opts.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			m.ReapIdle(now)
		}
	}
}

// Shutdown closes every session and refuses new ones
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.cancel()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		metrics.ActiveSessions.Dec()
	}
}
