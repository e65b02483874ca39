package model

import "time"

// Platform identifies a supported publishing destination.
type Platform string

const (
	PlatformX        Platform = "x"
	PlatformReddit   Platform = "reddit"
	PlatformTelegram Platform = "telegram"
	PlatformGitHub   Platform = "github"
	PlatformDiscord  Platform = "discord"
	PlatformHN       Platform = "hn"
)

// KnownPlatforms is the closed set of destinations the gate will decide for.
var KnownPlatforms = map[Platform]bool{
	PlatformX:        true,
	PlatformReddit:   true,
	PlatformTelegram: true,
	PlatformGitHub:   true,
	PlatformDiscord:  true,
	PlatformHN:       true,
}

// ActionKind classifies what the agent intends to publish.
type ActionKind string

const (
	KindPost       ActionKind = "post"
	KindReply      ActionKind = "reply"
	KindComment    ActionKind = "comment"
	KindDM         ActionKind = "dm"
	KindSubmit     ActionKind = "submit"
	KindIssue      ActionKind = "issue"
	KindDiscussion ActionKind = "discussion"
)

// KnownKinds is the closed set of action kinds.
var KnownKinds = map[ActionKind]bool{
	KindPost:       true,
	KindReply:      true,
	KindComment:    true,
	KindDM:         true,
	KindSubmit:     true,
	KindIssue:      true,
	KindDiscussion: true,
}

// IsBroadcast reports whether the kind initiates a new public thread and
// therefore must carry a brand mention.
func (k ActionKind) IsBroadcast() bool {
	switch k {
	case KindPost, KindSubmit, KindDiscussion, KindIssue:
		return true
	}
	return false
}

// IsConversational reports whether the kind responds inside an existing
// thread. Conversational kinds are exempt from brand compliance.
func (k ActionKind) IsConversational() bool {
	return k == KindReply || k == KindComment
}

// QuietHoursExempt reports whether the kind may be published during the
// configured quiet-hours window.
func (k ActionKind) QuietHoursExempt() bool {
	return k == KindReply || k == KindComment
}

// IsContent reports whether the kind carries standalone content, for which
// very short text counts as a low-quality signal.
func (k ActionKind) IsContent() bool {
	switch k {
	case KindPost, KindSubmit, KindDiscussion:
		return true
	}
	return false
}

// Evidence substantiates a quantitative claim made in action text.
type Evidence struct {
	Kind      string    `json:"kind" yaml:"kind"`
	Source    string    `json:"source" yaml:"source"`
	Value     string    `json:"value" yaml:"value"`
	Timestamp time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// CandidateAction is one piece of content an agent proposes to publish.
// Callers construct it; the gate never mutates it.
type CandidateAction struct {
	Platform Platform   `json:"platform" yaml:"platform"`
	Kind     ActionKind `json:"action_kind" yaml:"action_kind"`
	Text     string     `json:"text" yaml:"text"`
	Links    []string   `json:"links,omitempty" yaml:"links,omitempty"`
	// Metadata is opaque to the gate and passed through to the audit trail.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	// Time is the instant the action would be published. Callers set it
	// explicitly for deterministic evaluation; zero means "now".
	Time     time.Time  `json:"time,omitempty" yaml:"time,omitempty"`
	Evidence []Evidence `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// EffectiveTime returns the publish instant, defaulting to the current time.
func (a *CandidateAction) EffectiveTime() time.Time {
	if a.Time.IsZero() {
		return time.Now()
	}
	return a.Time
}
