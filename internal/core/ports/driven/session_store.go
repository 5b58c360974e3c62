package driven

import (
	"context"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// SessionStore holds per-session ordered conversation turns. Implementations
// are keyed by session ID: operations on different sessions never block each
// other. An unknown session ID is never an error - it is adopted as a new
// session.
type SessionStore interface {
	// GetOrCreate returns the session for id, creating it if absent.
	// An empty id allocates a new globally-unique opaque one. The bool
	// reports whether the session was created by this call.
	GetOrCreate(ctx context.Context, id string) (*domain.Session, bool, error)

	// AppendTurns appends turns in order as one atomic operation. The
	// chat path appends the user and assistant turns of a completed turn
	// together so the pair never desynchronizes.
	AppendTurns(ctx context.Context, id string, turns ...domain.Turn) error

	// History returns the most recent maxTurns turns in chronological
	// order. maxTurns <= 0 means all. No prior turns yields an empty
	// slice, not an error.
	History(ctx context.Context, id string, maxTurns int) ([]domain.Turn, error)
}

// TurnLock serializes chat turns per session ID: at most one in-flight turn
// per session, with no cross-session blocking. Lock blocks until the session
// lock is held or ctx is done.
type TurnLock interface {
	Lock(ctx context.Context, sessionID string) (release func(), err error)
}
