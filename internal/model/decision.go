package model

import "time"

// ReasonCode is a stable enumerated tag explaining a decision. Codes are the
// external contract: downstream dashboards and tests key off the exact
// strings, so never rename one without a migration plan.
type ReasonCode string

const (
	ReasonStopAll            ReasonCode = "STOP_ALL"
	ReasonPublishDisabled    ReasonCode = "PUBLISH_DISABLED"
	ReasonSecretLeaked       ReasonCode = "SECRET_LEAKED"
	ReasonHateHarassment     ReasonCode = "HATE_HARASSMENT"
	ReasonSexualContent      ReasonCode = "SEXUAL_CONTENT"
	ReasonDoxxing            ReasonCode = "DOXXING"
	ReasonIllegalInstruction ReasonCode = "ILLEGAL_INSTRUCTIONS"
	ReasonPoliticalTargeting ReasonCode = "POLITICAL_TARGETING"
	ReasonBrandMissing       ReasonCode = "BRAND_MISSING"
	ReasonNoEvidence         ReasonCode = "NO_EVIDENCE_FOR_CLAIM"
	ReasonQuietHours         ReasonCode = "QUIET_HOURS"
	ReasonRateLimitExceeded  ReasonCode = "RATE_LIMIT_EXCEEDED"
	ReasonDuplicateContent   ReasonCode = "DUPLICATE_CONTENT"
	ReasonRiskTooHigh        ReasonCode = "RISK_TOO_HIGH"
	ReasonAllowed            ReasonCode = "ALLOWED"
)

// EnforcedLimits describes the daily cap that applies to an action, derived
// from config whether or not the limit was actually hit.
type EnforcedLimits struct {
	MaxPerDay       int `json:"max_per_day"`
	MaxPerHour      int `json:"max_per_hour"`
	CooldownSeconds int `json:"cooldown_seconds"`
}

// Decision is the immutable outcome of one evaluation. It is constructed once
// per Evaluate call and never mutated afterwards.
type Decision struct {
	Allow       bool         `json:"allow"`
	ReasonCodes []ReasonCode `json:"reason_codes"`
	// RiskScore is always computed, even for denied actions.
	RiskScore      int            `json:"risk_score"`
	EnforcedLimits EnforcedLimits `json:"enforced_limits"`
	RedactedText   string         `json:"redacted_text"`
	Fingerprint    string         `json:"fingerprint"`
	// NextAllowedAt is set only for quiet-hours and rate-limit denials.
	NextAllowedAt          *time.Time `json:"next_allowed_at,omitempty"`
	RequiredBackoffSeconds *int       `json:"required_backoff_seconds,omitempty"`
}

// HasReason reports whether the decision carries the given reason code.
func (d *Decision) HasReason(code ReasonCode) bool {
	for _, c := range d.ReasonCodes {
		if c == code {
			return true
		}
	}
	return false
}

// ReasonStrings returns the reason codes as plain strings for serialization
// sinks that do not know the ReasonCode type.
func (d *Decision) ReasonStrings() []string {
	out := make([]string, len(d.ReasonCodes))
	for i, c := range d.ReasonCodes {
		out[i] = string(c)
	}
	return out
}
