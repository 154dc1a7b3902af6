package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"telegram-intake-bot/internal/domain/model"
	"telegram-intake-bot/internal/domain/ports/adapter"
	"telegram-intake-bot/internal/domain/ports/repository"
	"telegram-intake-bot/internal/infra/i18n"
	"telegram-intake-bot/internal/infra/logging"
	"telegram-intake-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ IntakeUseCase = (*intakeUC)(nil)

// sessionLockTTL bounds how long a crashed handler can hold a session lock.
const sessionLockTTL = 10 * time.Second

// CallbackApply is the payload on the welcome button that starts the questionnaire.
const CallbackApply = "intake:apply"

// IntakeUseCase drives a user through the questionnaire. Every method is a
// pure transition: it mutates stored state and returns the outbound actions
// for the transport to execute, but never talks to Telegram itself.
type IntakeUseCase interface {
	// Start handles /start in any state: reset and greet.
	Start(ctx context.Context, tgID int64) ([]adapter.Action, error)
	// BeginQuestionnaire handles the apply button: enter the first step and
	// rewrite the welcome message into the first prompt.
	BeginQuestionnaire(ctx context.Context, tgID int64, messageID int) ([]adapter.Action, error)
	// Answer records a text answer for the field currently awaited. On the
	// final field it consumes the session and emits the moderation request.
	Answer(ctx context.Context, tgID int64, username, text string) ([]adapter.Action, error)
}

type intakeUC struct {
	states      repository.StateRepository
	locker      repository.SessionLocker
	apps        repository.ApplicationRepository
	tr          *i18n.Translator
	adminChatID int64
	log         *zerolog.Logger
}

func NewIntakeUseCase(
	states repository.StateRepository,
	locker repository.SessionLocker,
	apps repository.ApplicationRepository,
	tr *i18n.Translator,
	adminChatID int64,
	logger *zerolog.Logger,
) *intakeUC {
	return &intakeUC{
		states:      states,
		locker:      locker,
		apps:        apps,
		tr:          tr,
		adminChatID: adminChatID,
		log:         logger,
	}
}

// withSessionLock serializes read-modify-write cycles per session key.
func (u *intakeUC) withSessionLock(ctx context.Context, tgID int64, fn func() ([]adapter.Action, error)) ([]adapter.Action, error) {
	token, err := u.locker.TryLock(ctx, tgID, sessionLockTTL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = u.locker.Unlock(ctx, tgID, token) }()
	return fn()
}

func (u *intakeUC) Start(ctx context.Context, tgID int64) ([]adapter.Action, error) {
	defer logging.TraceDuration(u.log, "IntakeUC.Start")()

	return u.withSessionLock(ctx, tgID, func() ([]adapter.Action, error) {
		// /start discards any partially entered answers.
		if err := u.states.Clear(ctx, tgID); err != nil {
			return nil, err
		}
		return []adapter.Action{adapter.SendMessage{
			ChatID: tgID,
			Text:   u.tr.T("welcome_message"),
			ReplyMarkup: &adapter.ReplyMarkup{Buttons: [][]adapter.Button{
				{{Text: u.tr.T("button_apply"), Data: CallbackApply}},
			}},
		}}, nil
	})
}

func (u *intakeUC) BeginQuestionnaire(ctx context.Context, tgID int64, messageID int) ([]adapter.Action, error) {
	defer logging.TraceDuration(u.log, "IntakeUC.BeginQuestionnaire")()

	return u.withSessionLock(ctx, tgID, func() ([]adapter.Action, error) {
		state := &repository.ConversationState{Step: model.FirstStep(), Data: map[string]string{}}
		if err := u.states.Set(ctx, tgID, state); err != nil {
			return nil, err
		}

		first := model.Questionnaire()[0]
		prompt := u.tr.T(first.PromptKey)
		if messageID == 0 {
			// No welcome message to rewrite (e.g. the button outlived its chat).
			return []adapter.Action{adapter.SendMessage{ChatID: tgID, Text: prompt}}, nil
		}
		return []adapter.Action{adapter.EditMessage{
			ChatID:    tgID,
			MessageID: messageID,
			Text:      prompt,
		}}, nil
	})
}

func (u *intakeUC) Answer(ctx context.Context, tgID int64, username, text string) ([]adapter.Action, error) {
	defer logging.TraceDuration(u.log, "IntakeUC.Answer")()

	if strings.TrimSpace(text) == "" {
		metrics.IncUpdateDropped("empty_text")
		return nil, nil
	}

	return u.withSessionLock(ctx, tgID, func() ([]adapter.Action, error) {
		state, err := u.states.Get(ctx, tgID)
		if err != nil {
			return nil, err
		}
		if state.IsIdle() {
			// Free text without an active questionnaire matches no rule.
			metrics.IncUpdateDropped("no_active_questionnaire")
			return nil, nil
		}

		field, last, ok := model.FieldForStep(state.Step)
		if !ok {
			u.log.Warn().Int64("tg_id", tgID).Str("step", string(state.Step)).Msg("unknown conversation step, dropping update")
			metrics.IncUpdateDropped("unknown_step")
			return nil, nil
		}

		// Answers are accepted verbatim: any non-empty text is valid.
		if state.Data == nil {
			state.Data = map[string]string{}
		}
		state.Data[field.Name] = text

		if !last {
			state.Step = model.NextStep(state.Step)
			if err := u.states.Set(ctx, tgID, state); err != nil {
				return nil, err
			}
			next, _, _ := model.FieldForStep(state.Step)
			return []adapter.Action{adapter.SendMessage{ChatID: tgID, Text: u.tr.T(next.PromptKey)}}, nil
		}

		// Final answer: the submission is consumed here, before any delivery
		// is attempted, so a downstream failure cannot duplicate it.
		if err := u.states.Clear(ctx, tgID); err != nil {
			return nil, err
		}

		actions := []adapter.Action{adapter.SendMessage{ChatID: tgID, Text: u.tr.T("confirmation_message")}}

		forward, err := u.buildModerationRequest(ctx, tgID, username, state.Data)
		if err != nil {
			// The applicant already got their confirmation; losing the forward
			// is logged, never surfaced.
			u.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to build moderation request")
			return actions, nil
		}
		if forward != nil {
			actions = append(actions, forward)
		}
		return actions, nil
	})
}

// buildModerationRequest archives the submission and renders the admin-chat
// message with the two decision buttons. Returns nil when no administrative
// destination is configured.
func (u *intakeUC) buildModerationRequest(ctx context.Context, tgID int64, username string, answers map[string]string) (adapter.Action, error) {
	ordered := make([]model.Answer, 0, len(model.Questionnaire()))
	for _, f := range model.Questionnaire() {
		ordered = append(ordered, model.Answer{Field: f.Name, Value: answers[f.Name]})
	}

	if u.adminChatID == 0 {
		u.log.Warn().Int64("tg_id", tgID).Msg("no admin chat configured, application not forwarded")
		return nil, nil
	}

	app, err := model.NewApplication(tgID, username, ordered)
	if err != nil {
		return nil, err
	}
	if err := u.apps.Save(ctx, app); err != nil {
		// The forward still goes out; only the decided-state tracking degrades.
		u.log.Error().Err(err).Str("application_id", app.ID).Msg("failed to archive application")
	}
	metrics.IncApplicationSubmitted()
	u.log.Info().Str("application_id", app.ID).Int64("tg_id", tgID).Msg("application submitted")

	var b strings.Builder
	b.WriteString(u.tr.T("admin_application_header") + "\n\n")
	displayName := username
	if displayName == "" {
		displayName = strconv.FormatInt(tgID, 10)
	}
	b.WriteString(u.tr.T("admin_from_user", displayName) + "\n")
	b.WriteString(u.tr.T("admin_telegram_id", tgID) + "\n\n")
	for i, f := range model.Questionnaire() {
		b.WriteString(u.tr.T(f.LabelKey) + ": " + ordered[i].Value + "\n")
	}

	return adapter.SendMessage{
		ChatID: u.adminChatID,
		Text:   b.String(),
		ReplyMarkup: &adapter.ReplyMarkup{Buttons: [][]adapter.Button{{
			{Text: u.tr.T("button_approve"), Data: model.EncodeDecisionToken(model.DecisionApprove, tgID)},
			{Text: u.tr.T("button_reject"), Data: model.EncodeDecisionToken(model.DecisionReject, tgID)},
		}}},
	}, nil
}
