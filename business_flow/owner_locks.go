package businessflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/hanifmaulana/distrolink/utils"
	"github.com/redis/go-redis/v9"
)

// OwnerLocker serializes mutating core operations (resize, distribute,
// markSent, force restart) per owner. Cross-owner operations never
// contend. When Redis is available the lock is a SETNX key with a TTL
// so a crashed holder cannot wedge the owner forever; without Redis it
// degrades to in-process mutexes, which is enough for a single
// instance deployment.
type OwnerLocker struct {
	rc *redis.Client

	mu    sync.Mutex
	local map[uint]*sync.Mutex
}

func NewOwnerLocker(rc *redis.Client) *OwnerLocker {
	return &OwnerLocker{
		rc:    rc,
		local: make(map[uint]*sync.Mutex),
	}
}

func ownerLockKey(userID uint) string {
	return fmt.Sprintf("%s:%d", utils.OwnerLockKeyPrefix, userID)
}

// Acquire takes the owner's lock or fails fast with ErrOwnerLockBusy.
// The returned release function must be called exactly once.
func (l *OwnerLocker) Acquire(ctx context.Context, userID uint) (func(), error) {
	if l.rc == nil {
		return l.acquireLocal(userID), nil
	}

	key := ownerLockKey(userID)
	ok, err := l.rc.SetNX(ctx, key, "1", utils.OwnerLockTTL).Result()
	if err != nil {
		return nil, NewBusinessError("OWNER_LOCK_FAILED", "Failed to acquire owner lock", err)
	}
	if !ok {
		return nil, ErrOwnerLockBusy
	}
	return func() {
		_ = l.rc.Del(context.Background(), key).Err()
	}, nil
}

func (l *OwnerLocker) acquireLocal(userID uint) func() {
	l.mu.Lock()
	m, ok := l.local[userID]
	if !ok {
		m = &sync.Mutex{}
		l.local[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
