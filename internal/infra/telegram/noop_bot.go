package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-intake-bot/internal/domain/ports/adapter"
)

var _ adapter.BotAdapter = (*NoopBot)(nil)

// NoopBot logs outbound actions instead of delivering them. Useful for local
// runs without a bot token.
type NoopBot struct {
	log *zerolog.Logger
}

func NewNoopBot(logger *zerolog.Logger) *NoopBot {
	return &NoopBot{log: logger}
}

func (b *NoopBot) Send(ctx context.Context, msg adapter.SendMessage) error {
	b.log.Info().Int64("chat_id", msg.ChatID).Str("text", msg.Text).Msg("[noop] send")
	return nil
}

func (b *NoopBot) Edit(ctx context.Context, msg adapter.EditMessage) error {
	b.log.Info().Int64("chat_id", msg.ChatID).Int("message_id", msg.MessageID).Str("text", msg.Text).Msg("[noop] edit")
	return nil
}
