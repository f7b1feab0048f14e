// Package execution tracks the in-flight conversation run per session.
// Starting a new run cancels the superseded one, so a rapid double-send
// resolves last-send-wins and a late response for an abandoned run is
// dropped instead of landing in a session the user has moved past.
package execution

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

type sessionRun struct {
	ctx    context.Context
	cancel context.CancelFunc
}

type Manager struct {
	runs  map[string]*sessionRun
	mutex sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		runs: make(map[string]*sessionRun),
	}
}

// Start begins a run for the session, cancelling any run still in flight.
func (m *Manager) Start(sessionID string) context.Context {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if existing, exists := m.runs[sessionID]; exists {
		log.Info().Str("session_id", sessionID).Msg("Cancelling superseded run for session")
		existing.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.runs[sessionID] = &sessionRun{
		ctx:    ctx,
		cancel: cancel,
	}

	return ctx
}

// Cancel aborts the session's in-flight run, if any. Used when the session
// is deleted or navigated away from mid-request.
func (m *Manager) Cancel(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if run, exists := m.runs[sessionID]; exists {
		run.cancel()
		delete(m.runs, sessionID)
	}
}

// Cleanup releases the run entry if it still belongs to the given context.
func (m *Manager) Cleanup(sessionID string, ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if run, exists := m.runs[sessionID]; exists && run.ctx == ctx {
		run.cancel()
		delete(m.runs, sessionID)
	}
}
