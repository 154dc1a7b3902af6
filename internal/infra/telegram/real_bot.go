package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-intake-bot/internal/application"
	"telegram-intake-bot/internal/config"
	"telegram-intake-bot/internal/domain/model"
	"telegram-intake-bot/internal/domain/ports/adapter"
	"telegram-intake-bot/internal/infra/i18n"
	"telegram-intake-bot/internal/infra/metrics"
	red "telegram-intake-bot/internal/infra/redis"
	"telegram-intake-bot/internal/usecase"
)

var _ adapter.BotAdapter = (*Bot)(nil)

const updateQueueSize = 128

// botAPI is the slice of tgbotapi the adapter actually calls, so tests can
// substitute a recording fake.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot routes webhook updates into the facade and executes the actions it
// returns. Updates are queued into a bounded channel and drained by a fixed
// worker pool; a full queue drops the update rather than blocking ingress.
type Bot struct {
	api     botAPI
	handler application.UpdateHandler
	tr      *i18n.Translator
	limiter *red.RateLimiter // optional
	log     *zerolog.Logger

	updates chan tgbotapi.Update
	wg      sync.WaitGroup
}

// NewBot connects to the Telegram API with the configured token.
func NewBot(cfg *config.BotConfig, handler application.UpdateHandler, tr *i18n.Translator, limiter *red.RateLimiter, logger *zerolog.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if handler == nil {
		return nil, errors.New("update handler is nil")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newBot(api, handler, tr, limiter, logger), nil
}

func newBot(api botAPI, handler application.UpdateHandler, tr *i18n.Translator, limiter *red.RateLimiter, logger *zerolog.Logger) *Bot {
	return &Bot{
		api:     api,
		handler: handler,
		tr:      tr,
		limiter: limiter,
		log:     logger,
		updates: make(chan tgbotapi.Update, updateQueueSize),
	}
}

// Enqueue hands a webhook update to the worker pool without blocking the
// ingress handler.
func (b *Bot) Enqueue(up tgbotapi.Update) {
	select {
	case b.updates <- up:
	default:
		metrics.IncUpdateDropped("queue_full")
		b.log.Warn().Int("update_id", up.UpdateID).Msg("update queue full, dropping update")
	}
}

// StartWorkers launches n goroutines draining the update queue. They exit
// when the context is cancelled or the queue is closed by Stop.
func (b *Bot) StartWorkers(ctx context.Context, n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up, ok := <-b.updates:
					if !ok {
						return
					}
					b.handleUpdate(ctx, up)
				}
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight updates to finish.
func (b *Bot) Stop() {
	close(b.updates)
	b.wg.Wait()
}

// handleUpdate is the dispatch order for one update: command, then decision
// callback, then apply callback, then plain text for the current step. An
// update matching nothing is dropped silently.
func (b *Bot) handleUpdate(ctx context.Context, up tgbotapi.Update) {
	switch {
	case up.CallbackQuery != nil:
		b.handleCallback(ctx, up.CallbackQuery)
	case up.Message != nil:
		b.handleMessage(ctx, up.Message)
	default:
		metrics.IncUpdateDropped("unsupported_update")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		metrics.IncUpdateDropped("no_sender")
		return
	}
	tgID := msg.From.ID

	if msg.IsCommand() {
		metrics.IncUpdateReceived("command")
		if !b.allow(ctx, tgID, "command") {
			return
		}
		if msg.Command() != "start" {
			metrics.IncUpdateDropped("unknown_command")
			return
		}
		actions, err := b.handler.HandleStart(ctx, tgID)
		if err != nil {
			b.log.Error().Err(err).Int64("tg_id", tgID).Msg("start handling failed")
			return
		}
		b.perform(ctx, actions)
		return
	}

	if msg.Text == "" {
		// Stickers, photos and the like match no transition.
		metrics.IncUpdateDropped("non_text")
		return
	}
	metrics.IncUpdateReceived("text")
	if !b.allow(ctx, tgID, "text") {
		return
	}
	actions, err := b.handler.HandleAnswer(ctx, tgID, msg.From.UserName, msg.Text)
	if err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("answer handling failed")
		return
	}
	b.perform(ctx, actions)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	metrics.IncUpdateReceived("callback")
	if query.From == nil {
		metrics.IncUpdateDropped("no_sender")
		return
	}

	// Stop the client-side spinner no matter how routing goes.
	ack := ""
	defer func() { _, _ = b.api.Request(tgbotapi.NewCallback(query.ID, ack)) }()

	if !b.allow(ctx, query.From.ID, "callback") {
		return
	}

	data := strings.TrimSpace(query.Data)
	if data == usecase.CallbackApply {
		messageID := 0
		if query.Message != nil {
			messageID = query.Message.MessageID
		}
		actions, err := b.handler.HandleApply(ctx, query.From.ID, messageID)
		if err != nil {
			b.log.Error().Err(err).Int64("tg_id", query.From.ID).Msg("apply handling failed")
			return
		}
		b.perform(ctx, actions)
		return
	}

	// Anything else on a button is treated as a decision token. The presser
	// is the moderator; the message under the button is the one to finalize.
	var msg usecase.AdminMessageRef
	if query.Message != nil {
		msg = usecase.AdminMessageRef{
			ChatID:    query.Message.Chat.ID,
			MessageID: query.Message.MessageID,
			Text:      query.Message.Text,
		}
	}
	by := usecase.Moderator{ID: query.From.ID, Name: displayName(query.From)}
	actions, err := b.handler.HandleDecision(ctx, data, by, msg)
	if err != nil {
		b.log.Error().Err(err).Str("token", data).Msg("decision handling failed")
		return
	}
	if len(actions) > 0 {
		if strings.HasPrefix(data, string(model.DecisionApprove)) {
			ack = b.tr.T("callback_approved")
		} else {
			ack = b.tr.T("callback_rejected")
		}
	}
	b.perform(ctx, actions)
}

// perform executes emitted actions in order. Delivery failures are logged and
// skipped: state has already moved on and is never rolled back.
func (b *Bot) perform(ctx context.Context, actions []adapter.Action) {
	for _, a := range actions {
		var err error
		switch act := a.(type) {
		case adapter.SendMessage:
			err = b.Send(ctx, act)
		case adapter.EditMessage:
			err = b.Edit(ctx, act)
		}
		if err != nil {
			b.log.Error().Err(err).Type("action", a).Msg("action delivery failed")
		}
	}
}

// allow applies the optional per-user rate limit.
func (b *Bot) allow(ctx context.Context, tgID int64, kind string) bool {
	if b.limiter == nil {
		return true
	}
	ok, err := b.limiter.Allow(ctx, red.UserUpdateKey(tgID, kind), 30, time.Minute)
	if err != nil {
		// A broken limiter must not take the bot down with it.
		b.log.Warn().Err(err).Msg("rate limiter unavailable, allowing update")
		return true
	}
	if !ok {
		metrics.IncUpdateDropped("rate_limited")
	}
	return ok
}

func (b *Bot) Send(ctx context.Context, msg adapter.SendMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	out := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if markup := toMarkup(msg.ReplyMarkup); markup != nil {
		out.ReplyMarkup = *markup
	}
	_, err := b.api.Send(out)
	return err
}

func (b *Bot) Edit(ctx context.Context, msg adapter.EditMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if markup := toMarkup(msg.ReplyMarkup); markup != nil {
		_, err := b.api.Send(tgbotapi.NewEditMessageTextAndMarkup(msg.ChatID, msg.MessageID, msg.Text, *markup))
		return err
	}
	// Editing without reply markup strips the inline keyboard.
	_, err := b.api.Send(tgbotapi.NewEditMessageText(msg.ChatID, msg.MessageID, msg.Text))
	return err
}

func toMarkup(rm *adapter.ReplyMarkup) *tgbotapi.InlineKeyboardMarkup {
	if rm == nil || len(rm.Buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rm.Buttons))
	for _, row := range rm.Buttons {
		if len(row) == 0 {
			continue
		}
		out := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.URL != "" {
				out = append(out, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
				continue
			}
			out = append(out, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, out)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.UserName
}
