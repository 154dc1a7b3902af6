package application

import (
	"context"

	"telegram-intake-bot/internal/domain/ports/adapter"
	"telegram-intake-bot/internal/usecase"
)

// UpdateHandler is the surface the transport layer dispatches into. Every
// method returns the outbound actions to execute; a nil slice means the
// update was legitimately dropped.
type UpdateHandler interface {
	HandleStart(ctx context.Context, tgID int64) ([]adapter.Action, error)
	HandleApply(ctx context.Context, tgID int64, messageID int) ([]adapter.Action, error)
	HandleAnswer(ctx context.Context, tgID int64, username, text string) ([]adapter.Action, error)
	HandleDecision(ctx context.Context, rawToken string, by usecase.Moderator, msg usecase.AdminMessageRef) ([]adapter.Action, error)
}
