package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-intake-bot/internal/domain"
	"telegram-intake-bot/internal/domain/model"
	"telegram-intake-bot/internal/domain/ports/repository"
)

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

// ApplicationRepo is the durable submission archive. The one-time decision
// claim is a conditional UPDATE on status='pending', so concurrent decisions
// resolve inside the database.
type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

// EnsureSchema creates the applications table if it does not exist yet. Small
// single-table deployments do not warrant a migration tool.
func (r *ApplicationRepo) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS applications (
  id           TEXT PRIMARY KEY,
  subject_id   BIGINT NOT NULL,
  username     TEXT NOT NULL DEFAULT '',
  answers      JSONB NOT NULL,
  status       TEXT NOT NULL,
  submitted_at TIMESTAMPTZ NOT NULL,
  decided_at   TIMESTAMPTZ,
  decided_by   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS applications_subject_status_idx ON applications (subject_id, status);`
	_, err := r.pool.Exec(ctx, q)
	return err
}

type answerRow struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (r *ApplicationRepo) Save(ctx context.Context, app *model.Application) error {
	answers := make([]answerRow, 0, len(app.Answers))
	for _, a := range app.Answers {
		answers = append(answers, answerRow{Field: a.Field, Value: a.Value})
	}
	blob, err := json.Marshal(answers)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO applications (id, subject_id, username, answers, status, submitted_at, decided_at, decided_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err = r.pool.Exec(ctx, q,
		app.ID, app.SubjectID, app.Username, blob, string(app.Status), app.SubmittedAt, app.DecidedAt, app.DecidedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ApplicationRepo) FindPendingBySubject(ctx context.Context, subjectID int64) (*model.Application, error) {
	const q = `
SELECT id, subject_id, username, answers, status, submitted_at, decided_at, decided_by
FROM applications
WHERE subject_id=$1 AND status=$2
ORDER BY submitted_at DESC
LIMIT 1;`
	row := r.pool.QueryRow(ctx, q, subjectID, string(model.StatusPending))
	return scanApplication(row)
}

func (r *ApplicationRepo) ClaimPending(ctx context.Context, subjectID int64, status model.ApplicationStatus, decidedBy string) (*model.Application, error) {
	const q = `
UPDATE applications
SET status=$1, decided_at=$2, decided_by=$3
WHERE id = (
  SELECT id FROM applications
  WHERE subject_id=$4 AND status=$5
  ORDER BY submitted_at DESC
  LIMIT 1
  FOR UPDATE SKIP LOCKED
)
RETURNING id, subject_id, username, answers, status, submitted_at, decided_at, decided_by;`
	row := r.pool.QueryRow(ctx, q, string(status), time.Now(), decidedBy, subjectID, string(model.StatusPending))
	app, err := scanApplication(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrAlreadyDecided
	}
	return app, err
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	var (
		app    model.Application
		blob   []byte
		status string
	)
	err := row.Scan(&app.ID, &app.SubjectID, &app.Username, &blob, &status, &app.SubmittedAt, &app.DecidedAt, &app.DecidedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var answers []answerRow
	if err := json.Unmarshal(blob, &answers); err != nil {
		return nil, err
	}
	app.Answers = make([]model.Answer, 0, len(answers))
	for _, a := range answers {
		app.Answers = append(app.Answers, model.Answer{Field: a.Field, Value: a.Value})
	}
	app.Status = model.ApplicationStatus(status)
	return &app, nil
}
