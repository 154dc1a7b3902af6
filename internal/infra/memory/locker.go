package memory

import (
	"context"
	"sync"
	"time"

	"telegram-intake-bot/internal/domain"
	"telegram-intake-bot/internal/domain/ports/repository"

	"github.com/google/uuid"
)

var _ repository.SessionLocker = (*SessionLocker)(nil)

// SessionLocker serializes updates per session key with an in-process mutex
// per user. The ttl is ignored; a lock lives until Unlock, which is fine for
// single-process deployments (the Redis locker covers the rest).
type SessionLocker struct {
	mu    sync.Mutex // guards the map and every sessionLock token
	locks map[int64]*sessionLock
}

type sessionLock struct {
	mu    sync.Mutex
	token string
}

func NewSessionLocker() *SessionLocker {
	return &SessionLocker{locks: make(map[int64]*sessionLock)}
}

func (l *SessionLocker) lockFor(tgID int64) *sessionLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	sl, ok := l.locks[tgID]
	if !ok {
		sl = &sessionLock{}
		l.locks[tgID] = sl
	}
	return sl
}

func (l *SessionLocker) TryLock(ctx context.Context, tgID int64, ttl time.Duration) (string, error) {
	sl := l.lockFor(tgID)
	sl.mu.Lock()
	token := uuid.NewString()
	l.mu.Lock()
	sl.token = token
	l.mu.Unlock()
	return token, nil
}

func (l *SessionLocker) Unlock(ctx context.Context, tgID int64, token string) error {
	sl := l.lockFor(tgID)
	l.mu.Lock()
	held := sl.token == token
	if held {
		sl.token = ""
	}
	l.mu.Unlock()
	if !held {
		// A mismatched token never releases the holder's lock.
		return domain.ErrSessionLocked
	}
	sl.mu.Unlock()
	return nil
}
