package repository

import (
	"context"

	"telegram-intake-bot/internal/domain/model"
)

// ApplicationRepository is the port for the submission archive.
//
// ClaimPending atomically flips the newest pending application for the subject
// to the given terminal status. It reports the claimed application, or
// domain.ErrAlreadyDecided when no pending record exists, so two racing
// moderation decisions cannot both fire.
type ApplicationRepository interface {
	Save(ctx context.Context, app *model.Application) error
	FindPendingBySubject(ctx context.Context, subjectID int64) (*model.Application, error)
	ClaimPending(ctx context.Context, subjectID int64, status model.ApplicationStatus, decidedBy string) (*model.Application, error)
}
