//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"telegram-intake-bot/internal/domain"
	"telegram-intake-bot/internal/domain/model"
	"telegram-intake-bot/internal/domain/ports/adapter"
	"telegram-intake-bot/internal/domain/ports/repository"
	"telegram-intake-bot/internal/infra/i18n"

	"github.com/rs/zerolog"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("failed to build test translator: %v", err)
	}
	return tr
}

// ---- state repository mock (in-memory defaults, per-test overrides) ----

type MockStateRepo struct {
	mu     sync.Mutex
	states map[int64]*repository.ConversationState

	GetFunc   func(ctx context.Context, tgID int64) (*repository.ConversationState, error)
	SetFunc   func(ctx context.Context, tgID int64, state *repository.ConversationState) error
	ClearFunc func(ctx context.Context, tgID int64) error
}

func NewMockStateRepo() *MockStateRepo {
	return &MockStateRepo{states: make(map[int64]*repository.ConversationState)}
}

func (m *MockStateRepo) Get(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tgID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[tgID]
	if !ok {
		return repository.NewIdleState(), nil
	}
	cp := *st
	cp.Data = make(map[string]string, len(st.Data))
	for k, v := range st.Data {
		cp.Data[k] = v
	}
	return &cp, nil
}

func (m *MockStateRepo) Set(ctx context.Context, tgID int64, state *repository.ConversationState) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, tgID, state)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[tgID] = state
	return nil
}

func (m *MockStateRepo) Clear(ctx context.Context, tgID int64) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, tgID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, tgID)
	return nil
}

// ---- session locker mock ----

type MockLocker struct {
	TryLockFunc func(ctx context.Context, tgID int64, ttl time.Duration) (string, error)
}

func (m *MockLocker) TryLock(ctx context.Context, tgID int64, ttl time.Duration) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, tgID, ttl)
	}
	return "test-token", nil
}

func (m *MockLocker) Unlock(ctx context.Context, tgID int64, token string) error { return nil }

// ---- application repository mock ----

type MockApplicationRepo struct {
	mu   sync.Mutex
	apps []*model.Application

	SaveFunc         func(ctx context.Context, app *model.Application) error
	ClaimPendingFunc func(ctx context.Context, subjectID int64, status model.ApplicationStatus, decidedBy string) (*model.Application, error)
}

func NewMockApplicationRepo() *MockApplicationRepo {
	return &MockApplicationRepo{}
}

func (m *MockApplicationRepo) Save(ctx context.Context, app *model.Application) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, app)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *app
	m.apps = append(m.apps, &cp)
	return nil
}

func (m *MockApplicationRepo) FindPendingBySubject(ctx context.Context, subjectID int64) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.apps) - 1; i >= 0; i-- {
		if m.apps[i].SubjectID == subjectID && m.apps[i].Status == model.StatusPending {
			cp := *m.apps[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockApplicationRepo) ClaimPending(ctx context.Context, subjectID int64, status model.ApplicationStatus, decidedBy string) (*model.Application, error) {
	if m.ClaimPendingFunc != nil {
		return m.ClaimPendingFunc(ctx, subjectID, status, decidedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.apps) - 1; i >= 0; i-- {
		if m.apps[i].SubjectID == subjectID && m.apps[i].Status == model.StatusPending {
			if err := m.apps[i].Decide(status, decidedBy); err != nil {
				return nil, err
			}
			cp := *m.apps[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrAlreadyDecided
}

func (m *MockApplicationRepo) Saved() []*model.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Application, len(m.apps))
	copy(out, m.apps)
	return out
}

// ---- action helpers ----

func sendsOf(actions []adapter.Action) []adapter.SendMessage {
	var out []adapter.SendMessage
	for _, a := range actions {
		if s, ok := a.(adapter.SendMessage); ok {
			out = append(out, s)
		}
	}
	return out
}

func editsOf(actions []adapter.Action) []adapter.EditMessage {
	var out []adapter.EditMessage
	for _, a := range actions {
		if e, ok := a.(adapter.EditMessage); ok {
			out = append(out, e)
		}
	}
	return out
}
