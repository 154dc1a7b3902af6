package memory

import (
	"context"
	"sync"

	"telegram-intake-bot/internal/domain"
	"telegram-intake-bot/internal/domain/model"
	"telegram-intake-bot/internal/domain/ports/repository"
)

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

// ApplicationRepo is the in-process submission archive. The claim in
// ClaimPending happens under the same mutex that guards the map, so two
// racing decisions can never both succeed.
type ApplicationRepo struct {
	mu   sync.Mutex
	apps map[string]*model.Application // by id, insertion-ordered via seq
	seq  []string
}

func NewApplicationRepo() *ApplicationRepo {
	return &ApplicationRepo{apps: make(map[string]*model.Application)}
}

func (r *ApplicationRepo) Save(ctx context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[app.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *app
	r.apps[app.ID] = &cp
	r.seq = append(r.seq, app.ID)
	return nil
}

func (r *ApplicationRepo) FindPendingBySubject(ctx context.Context, subjectID int64) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.newestPending(subjectID)
	if app == nil {
		return nil, domain.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (r *ApplicationRepo) ClaimPending(ctx context.Context, subjectID int64, status model.ApplicationStatus, decidedBy string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app := r.newestPending(subjectID)
	if app == nil {
		return nil, domain.ErrAlreadyDecided
	}
	if err := app.Decide(status, decidedBy); err != nil {
		return nil, err
	}
	cp := *app
	return &cp, nil
}

func (r *ApplicationRepo) newestPending(subjectID int64) *model.Application {
	for i := len(r.seq) - 1; i >= 0; i-- {
		app := r.apps[r.seq[i]]
		if app.SubjectID == subjectID && app.Status == model.StatusPending {
			return app
		}
	}
	return nil
}
