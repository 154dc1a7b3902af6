package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"telegram-intake-bot/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.StateRepository = (*StateRepo)(nil)

// StateRepo manages conversational state in Redis. Keys carry a TTL so an
// abandoned questionnaire expires back to idle on its own.
type StateRepo struct {
	client *Client
	ttl    time.Duration
}

func NewStateRepo(client *Client, ttl time.Duration) *StateRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &StateRepo{client: client, ttl: ttl}
}

func (s *StateRepo) stateKey(tgID int64) string {
	return fmt.Sprintf("intake_state:%d", tgID)
}

func (s *StateRepo) Get(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	data, err := s.client.Get(ctx, s.stateKey(tgID))
	if errors.Is(err, redis.Nil) {
		// Absence is not an error: unknown users are idle.
		return repository.NewIdleState(), nil
	}
	if err != nil {
		return nil, err
	}

	var state repository.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	if state.Data == nil {
		state.Data = map[string]string{}
	}
	return &state, nil
}

func (s *StateRepo) Set(ctx context.Context, tgID int64, state *repository.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(tgID), data, s.ttl)
}

func (s *StateRepo) Clear(ctx context.Context, tgID int64) error {
	return s.client.Del(ctx, s.stateKey(tgID))
}
