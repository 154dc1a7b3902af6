package model

import (
	"time"

	"telegram-intake-bot/internal/domain"

	"github.com/oklog/ulid/v2"
)

// ApplicationStatus is the moderation lifecycle of a submission.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// Answer is one collected questionnaire value. Answers keep questionnaire
// order so summaries render stably.
type Answer struct {
	Field string
	Value string
}

// Application is a completed questionnaire submission awaiting moderation.
type Application struct {
	ID          string
	SubjectID   int64 // Telegram id of the applicant
	Username    string
	Answers     []Answer
	Status      ApplicationStatus
	SubmittedAt time.Time
	DecidedAt   *time.Time
	DecidedBy   string
}

// NewApplication builds a pending submission with a fresh ULID.
func NewApplication(subjectID int64, username string, answers []Answer) (*Application, error) {
	if subjectID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if len(answers) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Application{
		ID:          ulid.Make().String(),
		SubjectID:   subjectID,
		Username:    username,
		Answers:     answers,
		Status:      StatusPending,
		SubmittedAt: time.Now(),
	}, nil
}

// Decide flips a pending application to a terminal status. It is the single
// place the pending -> decided transition is allowed to happen.
func (a *Application) Decide(status ApplicationStatus, decidedBy string) error {
	if a.Status != StatusPending {
		return domain.ErrAlreadyDecided
	}
	if status != StatusApproved && status != StatusRejected {
		return domain.ErrInvalidArgument
	}
	now := time.Now()
	a.Status = status
	a.DecidedAt = &now
	a.DecidedBy = decidedBy
	return nil
}
