package model

import (
	"fmt"
	"strconv"
	"strings"

	"telegram-intake-bot/internal/domain"
)

// DecisionAction is a moderator's verdict on a submission.
type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionReject  DecisionAction = "reject"
)

// decisionSeparator joins the action tag and the subject id on the wire.
// Subjects are int64 Telegram ids, so they can never contain it.
const decisionSeparator = "_"

// Decision is a decoded moderation token: what was decided, and about whom.
type Decision struct {
	Action    DecisionAction
	SubjectID int64
}

// Status maps the verdict onto the application lifecycle.
func (d Decision) Status() ApplicationStatus {
	if d.Action == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// EncodeDecisionToken packs a verdict and subject into the callback payload
// carried on a moderation button, e.g. "approve_555".
func EncodeDecisionToken(action DecisionAction, subjectID int64) string {
	return string(action) + decisionSeparator + strconv.FormatInt(subjectID, 10)
}

// ParseDecisionToken decodes a callback payload back into a Decision. It
// splits on the first separator only and rejects anything that is not exactly
// a recognized action tag followed by an int64 subject id.
func ParseDecisionToken(token string) (Decision, error) {
	tag, rest, found := strings.Cut(token, decisionSeparator)
	if !found {
		return Decision{}, fmt.Errorf("%w: no separator in %q", domain.ErrMalformedToken, token)
	}
	action := DecisionAction(tag)
	if action != DecisionApprove && action != DecisionReject {
		return Decision{}, fmt.Errorf("%w: unknown action %q", domain.ErrMalformedToken, tag)
	}
	subjectID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || subjectID <= 0 {
		return Decision{}, fmt.Errorf("%w: bad subject id %q", domain.ErrMalformedToken, rest)
	}
	return Decision{Action: action, SubjectID: subjectID}, nil
}
