package usecase

import (
	"context"
	"errors"

	"telegram-intake-bot/internal/domain"
	"telegram-intake-bot/internal/domain/model"
	"telegram-intake-bot/internal/domain/ports/adapter"
	"telegram-intake-bot/internal/domain/ports/repository"
	"telegram-intake-bot/internal/infra/i18n"
	"telegram-intake-bot/internal/infra/logging"
	"telegram-intake-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ModerationUseCase = (*moderationUC)(nil)

// Moderator identifies the user who pressed a decision button.
type Moderator struct {
	ID   int64
	Name string
}

// AdminMessageRef points at the administrative message carrying the decision
// buttons, so the outcome can be appended to it in place.
type AdminMessageRef struct {
	ChatID    int64
	MessageID int
	Text      string
}

// ModerationUseCase applies a moderator's decision: claim the pending
// submission, notify the applicant, and rewrite the administrative message
// into its terminal buttonless form.
type ModerationUseCase interface {
	Decide(ctx context.Context, decision model.Decision, by Moderator, msg AdminMessageRef) ([]adapter.Action, error)
}

type moderationUC struct {
	apps     repository.ApplicationRepository
	tr       *i18n.Translator
	allowIDs map[int64]struct{} // empty honors any presser
	log      *zerolog.Logger
}

func NewModerationUseCase(
	apps repository.ApplicationRepository,
	tr *i18n.Translator,
	moderatorIDs []int64,
	logger *zerolog.Logger,
) *moderationUC {
	allow := make(map[int64]struct{}, len(moderatorIDs))
	for _, id := range moderatorIDs {
		allow[id] = struct{}{}
	}
	return &moderationUC{apps: apps, tr: tr, allowIDs: allow, log: logger}
}

func (u *moderationUC) Decide(ctx context.Context, decision model.Decision, by Moderator, msg AdminMessageRef) ([]adapter.Action, error) {
	defer logging.TraceDuration(u.log, "ModerationUC.Decide")()

	// Decisions are honored regardless of the subject's own conversation
	// state: the presser is a different party. The only gate is the optional
	// moderator allow-list.
	if len(u.allowIDs) > 0 {
		if _, ok := u.allowIDs[by.ID]; !ok {
			metrics.IncUnauthorizedDecision()
			u.log.Warn().Int64("presser_id", by.ID).Int64("subject_id", decision.SubjectID).
				Msg("decision from user outside moderator allow-list, dropping")
			return nil, nil
		}
	}

	status := decision.Status()
	app, err := u.apps.ClaimPending(ctx, decision.SubjectID, status, by.Name)
	if errors.Is(err, domain.ErrAlreadyDecided) {
		// A second decision for the same subject: the claim is already taken,
		// nothing fires twice.
		metrics.IncDecision("duplicate")
		u.log.Warn().Int64("subject_id", decision.SubjectID).Str("moderator", by.Name).
			Msg("duplicate decision, submission already decided")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	metrics.IncDecision(string(status))
	u.log.Info().Str("application_id", app.ID).Int64("subject_id", decision.SubjectID).
		Str("outcome", string(status)).Str("moderator", by.Name).Msg("application decided")

	notifyKey, statusKey := "rejected_message", "status_rejected"
	if status == model.StatusApproved {
		notifyKey, statusKey = "approved_message", "status_approved"
	}

	actions := []adapter.Action{
		adapter.SendMessage{ChatID: decision.SubjectID, Text: u.tr.T(notifyKey)},
	}
	if msg.MessageID != 0 {
		// Rewriting the admin message drops its buttons; once edited it is
		// terminal and cannot re-trigger.
		actions = append(actions, adapter.EditMessage{
			ChatID:    msg.ChatID,
			MessageID: msg.MessageID,
			Text:      msg.Text + "\n\n" + u.tr.T("admin_status_line", u.tr.T(statusKey), by.Name),
		})
	}
	return actions, nil
}
