package memstore

import (
	"context"
	"sync"

	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TurnLock = (*TurnLock)(nil)

// TurnLock serializes turns per session with one mutex per session ID. There
// is no global lock on the turn path: the registry mutex is held only long
// enough to look up or create the per-key mutex.
type TurnLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTurnLock creates an empty TurnLock
func NewTurnLock() *TurnLock {
	return &TurnLock{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the session's lock is held and returns its release func.
// Session mutexes are never evicted; the population is bounded by the number
// of live sessions in this process.
func (l *TurnLock) Lock(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
