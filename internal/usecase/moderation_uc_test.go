//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"telegram-intake-bot/internal/domain/model"
	"telegram-intake-bot/internal/usecase"
)

var (
	testModerator = usecase.Moderator{ID: 9000, Name: "Admin Ann"}
	testAdminMsg  = usecase.AdminMessageRef{ChatID: adminChatID, MessageID: 77, Text: "application body"}
)

func seedPending(t *testing.T, apps *MockApplicationRepo, subjectID int64) {
	t.Helper()
	app, err := model.NewApplication(subjectID, "steve", []model.Answer{{Field: "mc_nick", Value: "Steve"}})
	if err != nil {
		t.Fatalf("NewApplication failed: %v", err)
	}
	if err := apps.Save(context.Background(), app); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func TestModerationApprove(t *testing.T) {
	ctx := context.Background()
	apps := NewMockApplicationRepo()
	seedPending(t, apps, applicantID)
	uc := usecase.NewModerationUseCase(apps, newTestTranslator(t), nil, newTestLogger())

	decision := model.Decision{Action: model.DecisionApprove, SubjectID: applicantID}
	actions, err := uc.Decide(ctx, decision, testModerator, testAdminMsg)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	sends := sendsOf(actions)
	if len(sends) != 1 || sends[0].ChatID != applicantID {
		t.Fatalf("expected one notification to the subject, got %+v", actions)
	}

	edits := editsOf(actions)
	if len(edits) != 1 {
		t.Fatalf("expected the admin message to be edited, got %d edits", len(edits))
	}
	edit := edits[0]
	if edit.ChatID != adminChatID || edit.MessageID != 77 {
		t.Errorf("edited wrong message: %+v", edit)
	}
	if !strings.HasPrefix(edit.Text, "application body") {
		t.Errorf("status line must be appended to the original text, got %q", edit.Text)
	}
	if !strings.Contains(edit.Text, testModerator.Name) {
		t.Errorf("status line must name the moderator, got %q", edit.Text)
	}
	if edit.ReplyMarkup != nil {
		t.Error("edited admin message must carry no buttons")
	}

	claimed, err := apps.FindPendingBySubject(ctx, applicantID)
	if err == nil {
		t.Errorf("submission should no longer be pending, found %+v", claimed)
	}
}

func TestModerationReject(t *testing.T) {
	ctx := context.Background()
	apps := NewMockApplicationRepo()
	seedPending(t, apps, applicantID)
	uc := usecase.NewModerationUseCase(apps, newTestTranslator(t), nil, newTestLogger())

	decision := model.Decision{Action: model.DecisionReject, SubjectID: applicantID}
	actions, err := uc.Decide(ctx, decision, testModerator, testAdminMsg)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if len(sendsOf(actions)) != 1 || len(editsOf(actions)) != 1 {
		t.Fatalf("expected notification + edit, got %+v", actions)
	}

	saved := apps.Saved()
	if saved[0].Status != model.StatusRejected {
		t.Errorf("expected rejected status, got %q", saved[0].Status)
	}
	if saved[0].DecidedBy != testModerator.Name {
		t.Errorf("expected deciding moderator recorded, got %q", saved[0].DecidedBy)
	}
}

func TestModerationSecondDecisionDoesNotFire(t *testing.T) {
	ctx := context.Background()
	apps := NewMockApplicationRepo()
	seedPending(t, apps, applicantID)
	uc := usecase.NewModerationUseCase(apps, newTestTranslator(t), nil, newTestLogger())

	approve := model.Decision{Action: model.DecisionApprove, SubjectID: applicantID}
	if _, err := uc.Decide(ctx, approve, testModerator, testAdminMsg); err != nil {
		t.Fatalf("first Decide failed: %v", err)
	}

	reject := model.Decision{Action: model.DecisionReject, SubjectID: applicantID}
	actions, err := uc.Decide(ctx, reject, testModerator, testAdminMsg)
	if err != nil {
		t.Fatalf("second Decide returned error: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("second decision must produce no actions, got %+v", actions)
	}

	if apps.Saved()[0].Status != model.StatusApproved {
		t.Error("first decision must stand")
	}
}

func TestModerationDecisionWithoutSubmission(t *testing.T) {
	ctx := context.Background()
	apps := NewMockApplicationRepo()
	uc := usecase.NewModerationUseCase(apps, newTestTranslator(t), nil, newTestLogger())

	decision := model.Decision{Action: model.DecisionApprove, SubjectID: 404}
	actions, err := uc.Decide(ctx, decision, testModerator, testAdminMsg)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("decision without a pending submission must produce no actions, got %+v", actions)
	}
}

func TestModerationAllowList(t *testing.T) {
	ctx := context.Background()

	t.Run("unlisted presser is dropped", func(t *testing.T) {
		apps := NewMockApplicationRepo()
		seedPending(t, apps, applicantID)
		uc := usecase.NewModerationUseCase(apps, newTestTranslator(t), []int64{1111, 2222}, newTestLogger())

		decision := model.Decision{Action: model.DecisionApprove, SubjectID: applicantID}
		actions, err := uc.Decide(ctx, decision, usecase.Moderator{ID: 3333, Name: "Mallory"}, testAdminMsg)
		if err != nil {
			t.Fatalf("Decide returned error: %v", err)
		}
		if len(actions) != 0 {
			t.Errorf("unlisted presser must produce no actions, got %+v", actions)
		}
		if apps.Saved()[0].Status != model.StatusPending {
			t.Error("submission must remain pending")
		}
	})

	t.Run("listed presser is honored", func(t *testing.T) {
		apps := NewMockApplicationRepo()
		seedPending(t, apps, applicantID)
		uc := usecase.NewModerationUseCase(apps, newTestTranslator(t), []int64{1111, 2222}, newTestLogger())

		decision := model.Decision{Action: model.DecisionApprove, SubjectID: applicantID}
		actions, err := uc.Decide(ctx, decision, usecase.Moderator{ID: 1111, Name: "Ann"}, testAdminMsg)
		if err != nil {
			t.Fatalf("Decide failed: %v", err)
		}
		if len(actions) == 0 {
			t.Error("listed presser must be honored")
		}
	})
}

func TestModerationRepositoryErrorPropagates(t *testing.T) {
	ctx := context.Background()
	apps := NewMockApplicationRepo()
	wantErr := errors.New("archive is down")
	apps.ClaimPendingFunc = func(ctx context.Context, subjectID int64, status model.ApplicationStatus, decidedBy string) (*model.Application, error) {
		return nil, wantErr
	}
	uc := usecase.NewModerationUseCase(apps, newTestTranslator(t), nil, newTestLogger())

	decision := model.Decision{Action: model.DecisionApprove, SubjectID: applicantID}
	if _, err := uc.Decide(ctx, decision, testModerator, testAdminMsg); !errors.Is(err, wantErr) {
		t.Errorf("expected repository error to propagate, got %v", err)
	}
}
