package repository

import (
	"context"

	"telegram-intake-bot/internal/domain/model"
)

// ConversationState holds a user's progress through the questionnaire.
type ConversationState struct {
	Step model.Step        `json:"step"`
	Data map[string]string `json:"data"` // collected answers keyed by field name
}

// NewIdleState returns the default state for users with no stored record.
func NewIdleState() *ConversationState {
	return &ConversationState{Step: model.StepIdle, Data: map[string]string{}}
}

// IsIdle reports whether no questionnaire is in progress.
func (s *ConversationState) IsIdle() bool {
	return s == nil || s.Step == "" || s.Step == model.StepIdle
}

// StateRepository is the port for managing per-user conversational state.
// Get never fails on absence: unknown users read as idle.
type StateRepository interface {
	Get(ctx context.Context, tgID int64) (*ConversationState, error)
	Set(ctx context.Context, tgID int64, state *ConversationState) error
	Clear(ctx context.Context, tgID int64) error
}
