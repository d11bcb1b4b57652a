package chat

import (
	"context"
	"sync"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

// Manager owns the sessions of every front end, keyed by session id.
type Manager struct {
	transport core.Transport
	settings  core.SettingsProvider
	window    int
	retain    int

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(transport core.Transport, settings core.SettingsProvider, window, retain int) *Manager {
	return &Manager{
		transport: transport,
		settings:  settings,
		window:    window,
		retain:    retain,
		sessions:  make(map[string]*Session),
	}
}

// Session returns the session for id, creating it on first use.
func (m *Manager) Session(ctx context.Context, id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}

	s := NewSession(id, NewStore(m.retain), m.transport, m.settings, m.window)
	m.sessions[id] = s
	log.FromCtx(ctx).Debug().Str("session", id).Msg("session created")
	return s
}

// Lookup returns an existing session without creating one.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete closes and forgets the session. It reports whether it existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

func (m *Manager) Settings() core.SettingsProvider {
	return m.settings
}

func (m *Manager) Strategy() core.Strategy {
	return m.transport.Strategy()
}

// Close cancels every exchange in flight.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Reset forgets the conversation of session id. It reports whether the
// session existed.
func (m *Manager) Reset(id string) bool {
	s, ok := m.Lookup(id)
	if ok {
		s.Reset()
	}
	return ok
}
