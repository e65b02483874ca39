// Package policy implements the publishing gate: every candidate action an
// agent proposes passes through Evaluate, which either allows or blocks it,
// deterministically and with stable reason codes.
package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/agenium/postgate/internal/killswitch"
	"github.com/agenium/postgate/internal/model"
	"github.com/agenium/postgate/internal/redact"
	"github.com/agenium/postgate/internal/rules"
	"github.com/agenium/postgate/internal/store"
)

// AuditSink receives every decision after it is fully built, allow or deny.
type AuditSink interface {
	Record(ctx context.Context, action *model.CandidateAction, decision *model.Decision) error
}

// Evaluator binds config and collaborators once. Construction validates the
// config; each Evaluate call is an independent, lock-free computation.
type Evaluator struct {
	cfg   *PolicyConfig
	loc   *time.Location
	store store.Store
	audit AuditSink
	kill  killswitch.Provider
}

// Option configures optional evaluator collaborators.
type Option func(*Evaluator)

// WithStore supplies a persistence backend. Without one, rate-limit and
// duplicate checks degrade to permissive no-ops; everything else still
// applies.
func WithStore(s store.Store) Option {
	return func(e *Evaluator) { e.store = s }
}

// WithAudit supplies an audit sink invoked after every decision.
func WithAudit(a AuditSink) Option {
	return func(e *Evaluator) { e.audit = a }
}

// WithKillSwitch overrides the kill-switch provider. The default reads the
// config's stop-file path and disable env var.
func WithKillSwitch(p killswitch.Provider) Option {
	return func(e *Evaluator) { e.kill = p }
}

// New creates an evaluator. A nil or invalid config fails here, loudly, so a
// misconfigured gate can never weaken into a permissive one at evaluation
// time.
func New(cfg *PolicyConfig, opts ...Option) (*Evaluator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("policy config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy config: %w", err)
	}

	loc := time.UTC
	if cfg.QuietHours.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.QuietHours.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid policy config: %w", err)
		}
	}

	e := &Evaluator{
		cfg:  cfg,
		loc:  loc,
		kill: killswitch.FileEnv{StopPath: cfg.KillSwitchPath, DisableEnv: cfg.DisableEnv},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate is the sole decision function.
//
// Stage order (must not be changed — reason codes must reflect the true
// first cause):
//  1. Kill switches — global halt, independent of the action
//  2. Secret leak — redaction itself always runs
//  3. Hard safety violations — all categories, union of codes
//  4. Brand compliance — broadcast kinds only
//  5. Evidence requirement — numeric claims need evidence records
//  6. Quiet hours — non-exempt kinds blocked inside the window
//  7. Rate limit — store-backed daily caps
//  8. Duplicate — store-backed fingerprint index
//  9. Risk threshold — last gate; the score itself always computes
//
// Stages 2–9 are skipped as blocking checks once allow is false, but the
// redacted text, fingerprint, risk score, and enforced limits are computed
// for every decision so the audit trail is complete either way.
//
// The returned error comes only from injected collaborators (Store, AuditSink)
// failing; a denial is a normal decision, never an error.
func (e *Evaluator) Evaluate(ctx context.Context, action *model.CandidateAction) (*model.Decision, error) {
	now := action.EffectiveTime()
	allow := true
	var reasons []model.ReasonCode

	deny := func(codes ...model.ReasonCode) {
		allow = false
		reasons = append(reasons, codes...)
	}

	// Redaction runs unconditionally: the redacted text feeds the
	// fingerprint and the audit trail even when a kill switch already
	// decided the outcome.
	red := redact.Redact(action.Text)
	fingerprint := Fingerprint(action.Platform, action.Kind, red.RedactedText, action.Links)
	limits := deriveLimits(e.cfg.DailyCap(action.Platform, action.Kind))

	var nextAllowedAt *time.Time
	var backoffSeconds *int

	// Stage 1: kill switches. Once publishing is globally halted no other
	// check matters; skip straight to decision assembly.
	killed := false
	if e.kill.StopAll() {
		deny(model.ReasonStopAll)
		killed = true
	} else if e.kill.PublishDisabled() {
		deny(model.ReasonPublishDisabled)
		killed = true
	}

	if !killed {
		// Stage 2: secret leak.
		if allow && red.HasSecrets {
			deny(model.ReasonSecretLeaked)
		}

		// Stage 3: hard safety violations. All categories run; a denial
		// carries every violated code. Political targeting is reported
		// only when the deployment enforces it.
		if allow {
			if codes := e.enforcedViolations(action.Text); len(codes) > 0 {
				deny(codes...)
			}
		}

		// Stage 4: brand compliance.
		if allow && rules.RequiresBrandMention(action.Kind) && !rules.HasBrandMention(action.Text, e.cfg.BrandKeywords) {
			deny(model.ReasonBrandMissing)
		}

		// Stage 5: evidence requirement.
		if allow && rules.ContainsNumericClaim(action.Text) && len(action.Evidence) == 0 {
			deny(model.ReasonNoEvidence)
		}

		// Stage 6: quiet hours.
		if allow && !action.Kind.QuietHoursExempt() && inQuietHours(now, e.cfg.QuietHours, e.loc) {
			deny(model.ReasonQuietHours)
			end := nextQuietHoursEnd(now, e.cfg.QuietHours, e.loc)
			nextAllowedAt = &end
		}

		// Stage 7: rate limit, only with a store.
		if allow && e.store != nil {
			count, err := e.store.GetTodayCount(ctx, action.Platform, action.Kind)
			if err != nil {
				return nil, fmt.Errorf("store: today count: %w", err)
			}
			if count >= limits.MaxPerDay {
				deny(model.ReasonRateLimitExceeded)
				retry := nextDayStart(now, time.UTC).Add(time.Duration(limits.CooldownSeconds) * time.Second)
				nextAllowedAt = &retry
				backoff := limits.CooldownSeconds
				backoffSeconds = &backoff
			}
		}

		// Stage 8: duplicate, only with a store.
		if allow && e.store != nil {
			dup, err := e.store.IsDuplicate(ctx, fingerprint, e.cfg.DedupeWindowDays)
			if err != nil {
				return nil, fmt.Errorf("store: duplicate check: %w", err)
			}
			if dup {
				deny(model.ReasonDuplicateContent)
			}
		}
	}

	// Stage 9: risk score. Always computed for observability; only gates an
	// action that survived every earlier stage.
	risk := ScoreRisk(action, e.cfg.SafeLinkDomains)
	if allow && IsRiskTooHigh(risk.Total, e.cfg.RiskThreshold) {
		deny(model.ReasonRiskTooHigh)
	}

	if allow {
		reasons = []model.ReasonCode{model.ReasonAllowed}
	}

	decision := &model.Decision{
		Allow:                  allow,
		ReasonCodes:            reasons,
		RiskScore:              risk.Total,
		EnforcedLimits:         limits,
		RedactedText:           red.RedactedText,
		Fingerprint:            fingerprint,
		NextAllowedAt:          nextAllowedAt,
		RequiredBackoffSeconds: backoffSeconds,
	}

	// Side effects run only after the decision is fully built. Collaborator
	// failures propagate: whether a logging failure aborts publishing is the
	// caller's call, not the gate's.
	if e.store != nil {
		if err := e.store.LogAction(ctx, action, decision, store.Preview(red.RedactedText)); err != nil {
			return decision, fmt.Errorf("store: log action: %w", err)
		}
		if allow {
			if err := e.store.IncrementCounter(ctx, action.Platform, action.Kind); err != nil {
				return decision, fmt.Errorf("store: increment counter: %w", err)
			}
			if err := e.store.AddFingerprint(ctx, fingerprint, action.Platform); err != nil {
				return decision, fmt.Errorf("store: add fingerprint: %w", err)
			}
		}
	}
	if e.audit != nil {
		if err := e.audit.Record(ctx, action, decision); err != nil {
			return decision, fmt.Errorf("audit: %w", err)
		}
	}

	return decision, nil
}

// enforcedViolations filters the always-computed safety codes down to the
// ones that actually block in this deployment.
func (e *Evaluator) enforcedViolations(text string) []model.ReasonCode {
	all := rules.Violations(text)
	if e.cfg.EnforcePoliticalTargeting {
		return all
	}
	out := all[:0]
	for _, c := range all {
		if c != model.ReasonPoliticalTargeting {
			out = append(out, c)
		}
	}
	return out
}

// Evaluate is the standalone form of Evaluator.Evaluate for callers that do
// not hold a bound evaluator. Store and audit may be nil.
func Evaluate(ctx context.Context, action *model.CandidateAction, cfg *PolicyConfig, st store.Store, sink AuditSink) (*model.Decision, error) {
	var opts []Option
	if st != nil {
		opts = append(opts, WithStore(st))
	}
	if sink != nil {
		opts = append(opts, WithAudit(sink))
	}
	e, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, action)
}
