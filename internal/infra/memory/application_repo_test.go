package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"telegram-intake-bot/internal/domain"
	"telegram-intake-bot/internal/domain/model"
	"telegram-intake-bot/internal/infra/memory"
)

func newPendingApp(t *testing.T, subjectID int64) *model.Application {
	t.Helper()
	app, err := model.NewApplication(subjectID, "steve", []model.Answer{{Field: "mc_nick", Value: "Steve"}})
	if err != nil {
		t.Fatalf("NewApplication failed: %v", err)
	}
	return app
}

func TestApplicationRepoSaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewApplicationRepo()
	app := newPendingApp(t, 555)

	if err := repo.Save(ctx, app); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, app); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists on duplicate id, got %v", err)
	}

	found, err := repo.FindPendingBySubject(ctx, 555)
	if err != nil {
		t.Fatalf("FindPendingBySubject failed: %v", err)
	}
	if found.ID != app.ID {
		t.Errorf("expected %q, got %q", app.ID, found.ID)
	}

	if _, err := repo.FindPendingBySubject(ctx, 777); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown subject, got %v", err)
	}
}

func TestApplicationRepoClaimPendingOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewApplicationRepo()
	_ = repo.Save(ctx, newPendingApp(t, 555))

	claimed, err := repo.ClaimPending(ctx, 555, model.StatusApproved, "mod")
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if claimed.Status != model.StatusApproved || claimed.DecidedBy != "mod" {
		t.Errorf("claim not recorded: %+v", claimed)
	}

	if _, err := repo.ClaimPending(ctx, 555, model.StatusRejected, "other"); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Errorf("expected ErrAlreadyDecided on second claim, got %v", err)
	}
}

func TestApplicationRepoClaimPendingConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewApplicationRepo()
	_ = repo.Save(ctx, newPendingApp(t, 555))

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ClaimPending(ctx, 555, model.StatusApproved, "mod"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if successes != 1 {
		t.Errorf("expected exactly one successful claim, got %d", successes)
	}
}

func TestApplicationRepoClaimsNewestPending(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewApplicationRepo()

	first := newPendingApp(t, 555)
	second := newPendingApp(t, 555)
	_ = repo.Save(ctx, first)
	_ = repo.Save(ctx, second)

	claimed, err := repo.ClaimPending(ctx, 555, model.StatusApproved, "mod")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if claimed.ID != second.ID {
		t.Errorf("expected newest pending %q, got %q", second.ID, claimed.ID)
	}
}
