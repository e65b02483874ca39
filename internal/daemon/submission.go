// Package daemon implements the postgate inbox/outbox submission service.
// Candidate actions arrive as JSON files in the inbox directory, pass through
// the policy gate, and decisions are written to the outbox directory.
package daemon

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agenium/postgate/internal/model"
)

// Outcome status values.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
	OutcomeFailed  = "failed"
)

// validID matches alphanumeric characters, dashes, and underscores only.
var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Submission is a candidate action dropped into the inbox.
type Submission struct {
	ID        string                `json:"id"`
	Action    model.CandidateAction `json:"action"`
	Source    string                `json:"source,omitempty"`
	CreatedAt time.Time             `json:"created_at,omitempty"`
}

// Outcome is written to the outbox after evaluating a submission.
type Outcome struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Decision    *model.Decision `json:"decision,omitempty"`
	Error       string          `json:"error,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}

// ValidateSubmission checks that a submission has all required fields and
// safe values. The ID becomes a filename, so path traversal shapes are
// rejected here.
func ValidateSubmission(s *Submission) error {
	if s.ID == "" {
		return fmt.Errorf("submission ID is required")
	}
	if strings.Contains(s.ID, "..") {
		return fmt.Errorf("submission ID must not contain '..'")
	}
	if !validID.MatchString(s.ID) {
		return fmt.Errorf("submission ID contains invalid characters: only alphanumeric, dash, and underscore allowed")
	}
	if !model.KnownPlatforms[s.Action.Platform] {
		return fmt.Errorf("unknown platform %q", s.Action.Platform)
	}
	if !model.KnownKinds[s.Action.Kind] {
		return fmt.Errorf("unknown action kind %q", s.Action.Kind)
	}
	if s.Action.Text == "" {
		return fmt.Errorf("action text is required")
	}
	return nil
}
