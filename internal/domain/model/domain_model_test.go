package model_test

import (
	"errors"
	"testing"

	"telegram-intake-bot/internal/domain"
	"telegram-intake-bot/internal/domain/model"
)

func TestDecisionTokenRoundTrip(t *testing.T) {
	for _, action := range []model.DecisionAction{model.DecisionApprove, model.DecisionReject} {
		token := model.EncodeDecisionToken(action, 12345)
		d, err := model.ParseDecisionToken(token)
		if err != nil {
			t.Fatalf("ParseDecisionToken(%q) failed: %v", token, err)
		}
		if d.Action != action {
			t.Errorf("expected action %q, got %q", action, d.Action)
		}
		if d.SubjectID != 12345 {
			t.Errorf("expected subject 12345, got %d", d.SubjectID)
		}
	}
}

func TestParseDecisionTokenRejectsMalformed(t *testing.T) {
	cases := []string{
		"bogus_12345",   // unknown action tag
		"approve",       // no separator
		"approve_",      // empty subject
		"approve_abc",   // non-numeric subject
		"approve_-5",    // non-positive subject
		"Approve_12345", // tags are case sensitive literals
		"",
	}
	for _, token := range cases {
		if _, err := model.ParseDecisionToken(token); !errors.Is(err, domain.ErrMalformedToken) {
			t.Errorf("ParseDecisionToken(%q): expected ErrMalformedToken, got %v", token, err)
		}
	}
}

func TestDecisionStatus(t *testing.T) {
	if got := (model.Decision{Action: model.DecisionApprove}).Status(); got != model.StatusApproved {
		t.Errorf("approve should map to %q, got %q", model.StatusApproved, got)
	}
	if got := (model.Decision{Action: model.DecisionReject}).Status(); got != model.StatusRejected {
		t.Errorf("reject should map to %q, got %q", model.StatusRejected, got)
	}
}

func TestQuestionnaireTraversal(t *testing.T) {
	fields := model.Questionnaire()
	if len(fields) != 4 {
		t.Fatalf("expected 4 questionnaire fields, got %d", len(fields))
	}

	// Walking NextStep from the first field must visit every field once and
	// terminate in StepIdle.
	step := model.FirstStep()
	for i, want := range fields {
		if step != want.Step {
			t.Fatalf("step %d: expected %q, got %q", i, want.Step, step)
		}
		f, last, ok := model.FieldForStep(step)
		if !ok {
			t.Fatalf("FieldForStep(%q) not found", step)
		}
		if f.Name != want.Name {
			t.Errorf("step %q: expected field %q, got %q", step, want.Name, f.Name)
		}
		if wantLast := i == len(fields)-1; last != wantLast {
			t.Errorf("step %q: last = %v, want %v", step, last, wantLast)
		}
		step = model.NextStep(step)
	}
	if step != model.StepIdle {
		t.Errorf("traversal should end at StepIdle, got %q", step)
	}

	if _, _, ok := model.FieldForStep(model.StepIdle); ok {
		t.Error("StepIdle must not resolve to a field")
	}
}

func TestNewApplication(t *testing.T) {
	answers := []model.Answer{{Field: "mc_nick", Value: "Steve"}}

	app, err := model.NewApplication(555, "steve", answers)
	if err != nil {
		t.Fatalf("NewApplication failed: %v", err)
	}
	if app.ID == "" {
		t.Error("expected a generated id")
	}
	if app.Status != model.StatusPending {
		t.Errorf("new application should be pending, got %q", app.Status)
	}

	if _, err := model.NewApplication(0, "x", answers); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero subject, got %v", err)
	}
	if _, err := model.NewApplication(555, "x", nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty answers, got %v", err)
	}
}

func TestApplicationDecide(t *testing.T) {
	app, _ := model.NewApplication(555, "steve", []model.Answer{{Field: "mc_nick", Value: "Steve"}})

	if err := app.Decide(model.StatusApproved, "mod"); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if app.Status != model.StatusApproved || app.DecidedAt == nil || app.DecidedBy != "mod" {
		t.Errorf("decision not recorded: %+v", app)
	}

	// A second decision must fail, whatever the verdict.
	if err := app.Decide(model.StatusRejected, "other"); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}
}
