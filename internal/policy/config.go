package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agenium/postgate/internal/model"
)

// DefaultDailyCap applies to any platform/kind pair without an explicit
// rate-limit entry.
const DefaultDailyCap = 10

// QuietHours defines the nightly window during which only conversational
// actions are published. The window wraps past midnight when start > end.
type QuietHours struct {
	StartHour int    `yaml:"start_hour"`
	EndHour   int    `yaml:"end_hour"`
	Timezone  string `yaml:"timezone"`
}

// KindLimits maps action kinds to daily caps for one platform.
type KindLimits map[model.ActionKind]int

// PolicyConfig holds all configurable gate parameters. It is logically
// immutable during one evaluation.
type PolicyConfig struct {
	RateLimits       map[model.Platform]KindLimits `yaml:"rate_limits"`
	QuietHours       QuietHours                    `yaml:"quiet_hours"`
	RiskThreshold    int                           `yaml:"risk_threshold"`
	DedupeWindowDays int                           `yaml:"dedupe_window_days"`
	BrandKeywords    []string                      `yaml:"brand_keywords"`
	SafeLinkDomains  []string                      `yaml:"safe_link_domains"`
	// KillSwitchPath is a file whose mere existence halts all publishing.
	KillSwitchPath string `yaml:"kill_switch_path"`
	// DisableEnv names an environment variable; a truthy value halts
	// publishing independently of the stop file. Both signals are read
	// fresh on every evaluation, never cached.
	DisableEnv string `yaml:"disable_env"`
	// EnforcePoliticalTargeting opts the POLITICAL_TARGETING predicate into
	// the mandatory block list. It is always computed either way.
	EnforcePoliticalTargeting bool `yaml:"enforce_political_targeting"`
}

// DefaultConfig returns the built-in gate configuration.
func DefaultConfig() *PolicyConfig {
	return &PolicyConfig{
		RateLimits: map[model.Platform]KindLimits{
			model.PlatformX: {
				model.KindPost:  8,
				model.KindReply: 30,
			},
			model.PlatformReddit: {
				model.KindPost:    3,
				model.KindComment: 20,
			},
			model.PlatformGitHub: {
				model.KindIssue:      5,
				model.KindDiscussion: 3,
				model.KindComment:    30,
			},
			model.PlatformHN: {
				model.KindSubmit:  2,
				model.KindComment: 10,
			},
		},
		QuietHours: QuietHours{
			StartHour: 23,
			EndHour:   7,
			Timezone:  "Europe/Berlin",
		},
		RiskThreshold:    70,
		DedupeWindowDays: 14,
		BrandKeywords: []string{
			"agenium",
			"agent registry",
		},
		SafeLinkDomains: []string{
			"agenium.dev",
			"docs.agenium.dev",
			"github.com",
		},
		KillSwitchPath: filepath.Join(os.TempDir(), "postgate.stop"),
		DisableEnv:     "POSTGATE_DISABLE_PUBLISH",
	}
}

// DailyCap returns the configured daily cap for a platform/kind pair,
// falling back to DefaultDailyCap when no entry exists.
func (c *PolicyConfig) DailyCap(platform model.Platform, kind model.ActionKind) int {
	if limits, ok := c.RateLimits[platform]; ok {
		if cap, ok := limits[kind]; ok {
			return cap
		}
	}
	return DefaultDailyCap
}

// Validate checks the config for values that would silently weaken the gate.
// It is called at evaluator construction so a broken config fails loudly
// instead of defaulting.
func (c *PolicyConfig) Validate() error {
	if c.RiskThreshold < 0 || c.RiskThreshold > 100 {
		return fmt.Errorf("risk_threshold must be in [0,100], got %d", c.RiskThreshold)
	}
	if c.DedupeWindowDays < 0 {
		return fmt.Errorf("dedupe_window_days must not be negative, got %d", c.DedupeWindowDays)
	}
	if c.QuietHours.StartHour < 0 || c.QuietHours.StartHour > 23 {
		return fmt.Errorf("quiet_hours.start_hour must be in [0,23], got %d", c.QuietHours.StartHour)
	}
	if c.QuietHours.EndHour < 0 || c.QuietHours.EndHour > 23 {
		return fmt.Errorf("quiet_hours.end_hour must be in [0,23], got %d", c.QuietHours.EndHour)
	}
	if c.QuietHours.Timezone != "" {
		if _, err := time.LoadLocation(c.QuietHours.Timezone); err != nil {
			return fmt.Errorf("quiet_hours.timezone: %w", err)
		}
	}
	for platform, limits := range c.RateLimits {
		for kind, cap := range limits {
			if cap < 1 {
				return fmt.Errorf("rate_limits[%s][%s] must be at least 1, got %d", platform, kind, cap)
			}
		}
	}
	return nil
}

// DefaultConfigYAML returns a commented YAML string for init-policy.
func DefaultConfigYAML() string {
	return `# postgate policy configuration
# Generated by: postgate init-policy
#
# Check order (cannot be changed):
#   1. Kill switches (stop file, disable env var)
#   2. Secret leak detection
#   3. Hard safety blocks (hate, sexual, doxxing, illegal, political)
#   4. Brand compliance (broadcast kinds only)
#   5. Evidence requirement for numeric claims
#   6. Quiet hours
#   7. Rate limits
#   8. Duplicate content
#   9. Risk threshold

# Daily caps per platform and action kind. Any pair without an entry
# falls back to a cap of 10.
rate_limits:
  x:
    post: 8
    reply: 30
  reddit:
    post: 3
    comment: 20
  github:
    issue: 5
    discussion: 3
    comment: 30
  hn:
    submit: 2
    comment: 10

# Nightly window during which only replies and comments are published.
# The window wraps past midnight when start_hour > end_hour.
quiet_hours:
  start_hour: 23
  end_hour: 7
  timezone: Europe/Berlin

# Actions scoring at or above this threshold are denied. 0-100.
risk_threshold: 70

# Days a published fingerprint blocks identical content. 0 = forever.
dedupe_window_days: 14

# Broadcast posts must mention at least one of these, case-insensitive.
brand_keywords:
  - agenium
  - agent registry

# Links to these domains (and their subdomains) do not count as
# external for risk scoring.
safe_link_domains:
  - agenium.dev
  - docs.agenium.dev
  - github.com

# Creating this file halts all publishing until it is removed.
kill_switch_path: /tmp/postgate.stop

# A truthy value ("1", "true", "yes", "on") in this variable halts
# publishing independently of the stop file.
disable_env: POSTGATE_DISABLE_PUBLISH

# Political targeting content is always detected and reported; set
# true to make it block publication as well.
enforce_political_targeting: false
`
}

// LoadConfig loads gate configuration from a YAML file. A missing file
// returns defaults; invalid YAML returns an error. Loaded values overwrite
// only the fields they specify.
func LoadConfig(path string) (*PolicyConfig, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads gate configuration and returns the SHA-256 of the
// raw YAML bytes, for audit correlation. Defaults hash the empty input.
func LoadConfigWithHash(path string) (*PolicyConfig, string, error) {
	if path == "" {
		h := sha256.Sum256(nil)
		return DefaultConfig(), "sha256:" + hex.EncodeToString(h[:]), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return DefaultConfig(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("failed to read policy config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse policy config: %w", err)
	}

	return cfg, hash, nil
}
