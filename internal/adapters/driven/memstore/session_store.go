// Package memstore provides the process-scoped session backend. Sessions are
// ephemeral: nothing survives a restart.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore implements driven.SessionStore with an in-process map. The map
// is guarded by a single short-held mutex; per-session turn serialization is
// the TurnLock's job, not this store's.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewSessionStore creates an empty in-memory SessionStore
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*domain.Session)}
}

// GetOrCreate returns the session for id, creating it when absent. An empty
// id allocates a fresh opaque one; an unknown id is adopted as-is.
func (s *SessionStore) GetOrCreate(ctx context.Context, id string) (*domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if session, ok := s.sessions[id]; ok {
			return snapshot(session), false, nil
		}
	} else {
		id = uuid.NewString()
	}

	session := &domain.Session{ID: id, CreatedAt: nowUTC()}
	s.sessions[id] = session
	return snapshot(session), true, nil
}

// AppendTurns appends turns in order as one atomic operation
func (s *SessionStore) AppendTurns(ctx context.Context, id string, turns ...domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		session = &domain.Session{ID: id, CreatedAt: nowUTC()}
		s.sessions[id] = session
	}
	session.Turns = append(session.Turns, turns...)
	return nil
}

// History returns the most recent maxTurns turns in chronological order
func (s *SessionStore) History(ctx context.Context, id string, maxTurns int) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return []domain.Turn{}, nil
	}
	turns := session.Turns
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	return append([]domain.Turn(nil), turns...), nil
}

// snapshot copies a session so callers never alias the stored slice
func snapshot(s *domain.Session) *domain.Session {
	return &domain.Session{
		ID:        s.ID,
		Turns:     append([]domain.Turn(nil), s.Turns...),
		CreatedAt: s.CreatedAt,
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
