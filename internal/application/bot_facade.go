package application

import (
	"context"
	"errors"

	"telegram-intake-bot/internal/domain"
	"telegram-intake-bot/internal/domain/model"
	"telegram-intake-bot/internal/domain/ports/adapter"
	"telegram-intake-bot/internal/infra/metrics"
	"telegram-intake-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UpdateHandler = (*BotFacade)(nil)

// BotFacade composes the intake and moderation use cases into the handler
// surface the transport dispatches into. It owns decision-token parsing so
// the transport never interprets callback payloads itself.
type BotFacade struct {
	intake     usecase.IntakeUseCase
	moderation usecase.ModerationUseCase
	log        *zerolog.Logger
}

func NewBotFacade(intake usecase.IntakeUseCase, moderation usecase.ModerationUseCase, logger *zerolog.Logger) *BotFacade {
	return &BotFacade{intake: intake, moderation: moderation, log: logger}
}

// HandleStart resets the session and greets, whatever state the user was in.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64) ([]adapter.Action, error) {
	return b.intake.Start(ctx, tgID)
}

// HandleApply reacts to the apply button under the welcome message.
func (b *BotFacade) HandleApply(ctx context.Context, tgID int64, messageID int) ([]adapter.Action, error) {
	return b.intake.BeginQuestionnaire(ctx, tgID, messageID)
}

// HandleAnswer records a free-text answer for the awaited field.
func (b *BotFacade) HandleAnswer(ctx context.Context, tgID int64, username, text string) ([]adapter.Action, error) {
	return b.intake.Answer(ctx, tgID, username, text)
}

// HandleDecision parses a decision callback payload and applies it. A payload
// that is not a well-formed decision token is dropped with a warning: the
// admin message stays untouched and nobody is notified.
func (b *BotFacade) HandleDecision(ctx context.Context, rawToken string, by usecase.Moderator, msg usecase.AdminMessageRef) ([]adapter.Action, error) {
	decision, err := model.ParseDecisionToken(rawToken)
	if errors.Is(err, domain.ErrMalformedToken) {
		metrics.IncMalformedToken()
		b.log.Warn().Str("token", rawToken).Int64("presser_id", by.ID).Msg("malformed decision token, dropping")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b.moderation.Decide(ctx, decision, by, msg)
}
