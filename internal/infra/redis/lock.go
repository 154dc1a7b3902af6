package redis

import (
	"context"
	"fmt"
	"time"

	"telegram-intake-bot/internal/domain"
	"telegram-intake-bot/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ repository.SessionLocker = (*SessionLocker)(nil)

const (
	lockAttempts   = 5
	lockRetryDelay = 50 * time.Millisecond
)

// SessionLocker serializes per-session update handling across processes with
// a SetNX lock. The TTL bounds how long a crashed handler can wedge a session.
type SessionLocker struct {
	cli *redis.Client
}

func NewSessionLocker(c *Client) *SessionLocker {
	return &SessionLocker{cli: c.cli}
}

func lockKey(tgID int64) string {
	return fmt.Sprintf("intake_lock:%d", tgID)
}

// TryLock retries a few times before giving up. Contention surfaces as
// ErrSessionLocked; an unreachable Redis surfaces as the wrapped transport
// error so the two failure modes stay distinguishable in logs.
func (l *SessionLocker) TryLock(ctx context.Context, tgID int64, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	var lastErr error
	for i := 0; i < lockAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(lockRetryDelay):
			}
		}
		ok, err := l.cli.SetNX(ctx, lockKey(tgID), token, ttl).Result()
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return token, nil
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("acquire session lock: %w", lastErr)
	}
	return "", domain.ErrSessionLocked
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *SessionLocker) Unlock(ctx context.Context, tgID int64, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{lockKey(tgID)}, token).Result()
	return err
}
