package redisstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TurnLock = (*TurnLock)(nil)

const (
	lockPrefix = "futureme:turn:"

	// lockTTL bounds how long a crashed holder can stall a session
	lockTTL = 30 * time.Second

	// retryInterval paces SETNX attempts while another turn is in flight
	retryInterval = 25 * time.Millisecond
)

// TurnLock serializes turns per session across processes using Redis SETNX
// with TTL. A unique owner ID prevents one instance releasing another's lock.
type TurnLock struct {
	client  *redis.Client
	ownerID string
}

// NewTurnLock creates a Redis-backed TurnLock
func NewTurnLock(client *redis.Client) *TurnLock {
	return &TurnLock{client: client, ownerID: generateOwnerID()}
}

// generateOwnerID creates a unique identifier for this lock holder.
// Format: hostname:pid:random
func generateOwnerID() string {
	hostname, _ := os.Hostname()
	randomBytes := make([]byte, 8)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), hex.EncodeToString(randomBytes))
}

// releaseScript only deletes the lock if the current owner matches,
// preventing accidental release of locks held by other instances.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Lock blocks until the session lock is held or ctx is done
func (l *TurnLock) Lock(ctx context.Context, sessionID string) (func(), error) {
	key := lockPrefix + sessionID

	for {
		ok, err := l.client.SetNX(ctx, key, l.ownerID, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire turn lock %s: %w", sessionID, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	release := func() {
		// Detached context: the turn's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(releaseCtx, l.client, []string{key}, l.ownerID).Result()
	}
	return release, nil
}

// Ping checks if the Redis backend is healthy
func (l *TurnLock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
