package memory

import (
	"context"
	"sync"

	"telegram-intake-bot/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

// StateRepo keeps conversational state in process memory. Sessions do not
// survive a restart, which is acceptable here: an interrupted applicant just
// sends /start again.
type StateRepo struct {
	mu     sync.RWMutex
	states map[int64]*repository.ConversationState
}

func NewStateRepo() *StateRepo {
	return &StateRepo{states: make(map[int64]*repository.ConversationState)}
}

// Get returns a copy of the stored state, or an idle default when none exists.
func (s *StateRepo) Get(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[tgID]
	if !ok {
		return repository.NewIdleState(), nil
	}
	return cloneState(st), nil
}

func (s *StateRepo) Set(ctx context.Context, tgID int64, state *repository.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[tgID] = cloneState(state)
	return nil
}

func (s *StateRepo) Clear(ctx context.Context, tgID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, tgID)
	return nil
}

// cloneState keeps callers from mutating the stored record behind the lock.
func cloneState(st *repository.ConversationState) *repository.ConversationState {
	if st == nil {
		return repository.NewIdleState()
	}
	out := &repository.ConversationState{Step: st.Step, Data: make(map[string]string, len(st.Data))}
	for k, v := range st.Data {
		out.Data[k] = v
	}
	return out
}
