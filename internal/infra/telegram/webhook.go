package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// RegisterWebhook points Telegram at the externally reachable webhook URL.
// Updates start flowing as soon as this returns.
func (b *Bot) RegisterWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}
	b.log.Info().Str("url", url).Msg("webhook registered")
	return nil
}

// RemoveWebhook deregisters the webhook on shutdown so Telegram stops
// delivering to a dead endpoint. Pending updates are kept for the next start.
func (b *Bot) RemoveWebhook() error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("remove webhook: %w", err)
	}
	b.log.Info().Msg("webhook removed")
	return nil
}
