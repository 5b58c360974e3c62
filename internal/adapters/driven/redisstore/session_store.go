// Package redisstore provides Redis-backed session storage and turn locking.
// It is the swappable alternative to memstore for deployments that want
// sessions to outlive a single process; the core makes no durability promise
// either way.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

const (
	sessionPrefix = "futureme:session:"
	turnsSuffix   = ":turns"

	// sessionTTL keeps abandoned sessions from accumulating forever
	sessionTTL = 24 * time.Hour
)

// SessionStore implements driven.SessionStore using Redis. The session
// metadata lives under one key, the turns under a Redis list; a multi-value
// RPUSH keeps the user/assistant pair append atomic.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// GetOrCreate returns the session for id, creating it when absent
func (s *SessionStore) GetOrCreate(ctx context.Context, id string) (*domain.Session, bool, error) {
	if id == "" {
		id = uuid.NewString()
	}

	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err == nil {
		var session domain.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, false, fmt.Errorf("unmarshal session: %w", err)
		}
		session.Turns, err = s.loadTurns(ctx, id, 0)
		if err != nil {
			return nil, false, err
		}
		return &session, false, nil
	}
	if err != redis.Nil {
		return nil, false, fmt.Errorf("get session: %w", err)
	}

	session := &domain.Session{ID: id, CreatedAt: time.Now().UTC()}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, false, fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionPrefix+id, payload, sessionTTL).Err(); err != nil {
		return nil, false, fmt.Errorf("save session: %w", err)
	}
	return session, true, nil
}

// AppendTurns appends turns in order as one atomic RPUSH
func (s *SessionStore) AppendTurns(ctx context.Context, id string, turns ...domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	values := make([]interface{}, len(turns))
	for i, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("marshal turn: %w", err)
		}
		values[i] = data
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, sessionPrefix+id+turnsSuffix, values...)
	pipe.Expire(ctx, sessionPrefix+id+turnsSuffix, sessionTTL)
	pipe.Expire(ctx, sessionPrefix+id, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turns: %w", err)
	}
	return nil
}

// History returns the most recent maxTurns turns in chronological order
func (s *SessionStore) History(ctx context.Context, id string, maxTurns int) ([]domain.Turn, error) {
	return s.loadTurns(ctx, id, maxTurns)
}

func (s *SessionStore) loadTurns(ctx context.Context, id string, maxTurns int) ([]domain.Turn, error) {
	start := int64(0)
	if maxTurns > 0 {
		start = int64(-maxTurns)
	}

	items, err := s.client.LRange(ctx, sessionPrefix+id+turnsSuffix, start, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}

	turns := make([]domain.Turn, 0, len(items))
	for _, item := range items {
		var turn domain.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
