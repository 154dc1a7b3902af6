package repository

import (
	"context"
	"time"
)

// SessionLocker serializes read-modify-write cycles on a single session key.
// Two concurrent updates for the same user must not interleave; updates for
// different users proceed independently.
type SessionLocker interface {
	TryLock(ctx context.Context, tgID int64, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, tgID int64, token string) error
}
