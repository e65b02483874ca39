package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agenium/postgate/internal/model"
)

// --- Input/Output types ---

// EvidenceInput substantiates a numeric claim in the submitted text.
type EvidenceInput struct {
	Kind   string `json:"kind" jsonschema:"evidence kind (benchmark/report/link)"`
	Source string `json:"source" jsonschema:"where the evidence lives (URL or reference)"`
	Value  string `json:"value,omitempty" jsonschema:"the substantiated value"`
}

// SubmitInput defines parameters for the postgate_submit tool.
type SubmitInput struct {
	Platform string          `json:"platform" jsonschema:"publishing destination (x/reddit/telegram/github/discord/hn)"`
	Kind     string          `json:"kind" jsonschema:"action kind (post/reply/comment/dm/submit/issue/discussion)"`
	Text     string          `json:"text" jsonschema:"content to publish"`
	Links    []string        `json:"links,omitempty" jsonschema:"URLs referenced by the content"`
	Evidence []EvidenceInput `json:"evidence,omitempty" jsonschema:"evidence records backing numeric claims"`
	Time     string          `json:"time,omitempty" jsonschema:"intended publish time, RFC 3339; omit for now"`
}

// CheckInput defines parameters for the postgate_check tool. Identical shape
// to SubmitInput; only the side effects differ.
type CheckInput = SubmitInput

// DecisionOutput contains the gate's verdict.
type DecisionOutput struct {
	Allow                  bool     `json:"allow"`
	ReasonCodes            []string `json:"reason_codes"`
	RiskScore              int      `json:"risk_score"`
	RedactedText           string   `json:"redacted_text"`
	Fingerprint            string   `json:"fingerprint"`
	MaxPerDay              int      `json:"max_per_day"`
	NextAllowedAt          string   `json:"next_allowed_at,omitempty"`
	RequiredBackoffSeconds int      `json:"required_backoff_seconds,omitempty"`
}

// --- Handlers ---

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, DecisionOutput, error) {
	action, err := buildAction(input)
	if err != nil {
		return nil, DecisionOutput{}, err
	}

	decision, err := s.dryGate.Evaluate(ctx, action)
	if err != nil {
		return nil, DecisionOutput{}, err
	}

	return nil, buildOutput(decision), nil
}

func (s *Server) handleSubmit(ctx context.Context, req *mcpsdk.CallToolRequest, input SubmitInput) (*mcpsdk.CallToolResult, DecisionOutput, error) {
	action, err := buildAction(input)
	if err != nil {
		return nil, DecisionOutput{}, err
	}

	decision, err := s.gate.Evaluate(ctx, action)
	if err != nil {
		return nil, DecisionOutput{}, err
	}

	out := buildOutput(decision)
	if !decision.Allow {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

// --- Builders ---

func buildAction(input SubmitInput) (*model.CandidateAction, error) {
	platform := model.Platform(input.Platform)
	if !model.KnownPlatforms[platform] {
		return nil, fmt.Errorf("unknown platform %q", input.Platform)
	}
	kind := model.ActionKind(input.Kind)
	if !model.KnownKinds[kind] {
		return nil, fmt.Errorf("unknown action kind %q", input.Kind)
	}
	if input.Text == "" {
		return nil, fmt.Errorf("text is required")
	}

	var when time.Time
	if input.Time != "" {
		var err error
		when, err = time.Parse(time.RFC3339, input.Time)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", input.Time, err)
		}
	}

	evidence := make([]model.Evidence, len(input.Evidence))
	for i, e := range input.Evidence {
		evidence[i] = model.Evidence{
			Kind:      e.Kind,
			Source:    e.Source,
			Value:     e.Value,
			Timestamp: time.Now().UTC(),
		}
	}

	return &model.CandidateAction{
		Platform: platform,
		Kind:     kind,
		Text:     input.Text,
		Links:    input.Links,
		Time:     when,
		Evidence: evidence,
	}, nil
}

func buildOutput(d *model.Decision) DecisionOutput {
	out := DecisionOutput{
		Allow:        d.Allow,
		ReasonCodes:  d.ReasonStrings(),
		RiskScore:    d.RiskScore,
		RedactedText: d.RedactedText,
		Fingerprint:  d.Fingerprint,
		MaxPerDay:    d.EnforcedLimits.MaxPerDay,
	}
	if d.NextAllowedAt != nil {
		out.NextAllowedAt = d.NextAllowedAt.UTC().Format(time.RFC3339)
	}
	if d.RequiredBackoffSeconds != nil {
		out.RequiredBackoffSeconds = *d.RequiredBackoffSeconds
	}
	return out
}
