package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/agenium/postgate/internal/model"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestDailyCapFallback(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.DailyCap(model.PlatformX, model.KindPost); got != 8 {
		t.Errorf("expected configured cap 8 for x/post, got %d", got)
	}
	// telegram has no entry at all
	if got := cfg.DailyCap(model.PlatformTelegram, model.KindPost); got != DefaultDailyCap {
		t.Errorf("expected default cap %d, got %d", DefaultDailyCap, got)
	}
	// x is configured but dm is not
	if got := cfg.DailyCap(model.PlatformX, model.KindDM); got != DefaultDailyCap {
		t.Errorf("expected default cap %d for missing kind, got %d", DefaultDailyCap, got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PolicyConfig)
	}{
		{"threshold above 100", func(c *PolicyConfig) { c.RiskThreshold = 101 }},
		{"negative threshold", func(c *PolicyConfig) { c.RiskThreshold = -1 }},
		{"negative dedupe window", func(c *PolicyConfig) { c.DedupeWindowDays = -1 }},
		{"bad start hour", func(c *PolicyConfig) { c.QuietHours.StartHour = 24 }},
		{"bad timezone", func(c *PolicyConfig) { c.QuietHours.Timezone = "Mars/Olympus" }},
		{"zero cap", func(c *PolicyConfig) { c.RateLimits[model.PlatformX][model.KindPost] = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
	if cfg.RiskThreshold != 70 {
		t.Errorf("expected default risk threshold, got %d", cfg.RiskThreshold)
	}
}

func TestLoadConfigOverridesOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	data := "risk_threshold: 55\nbrand_keywords:\n  - mybrand\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, hash, err := LoadConfigWithHash(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RiskThreshold != 55 {
		t.Errorf("expected overridden threshold 55, got %d", cfg.RiskThreshold)
	}
	if len(cfg.BrandKeywords) != 1 || cfg.BrandKeywords[0] != "mybrand" {
		t.Errorf("expected overridden brand keywords, got %v", cfg.BrandKeywords)
	}
	if cfg.DedupeWindowDays != 14 {
		t.Errorf("unspecified field must keep default, got %d", cfg.DedupeWindowDays)
	}
	if !strings.HasPrefix(hash, "sha256:") {
		t.Errorf("expected sha256-prefixed hash, got %q", hash)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("rate_limits: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}

func TestDefaultConfigYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(DefaultConfigYAML()), cfg); err != nil {
		t.Fatalf("failed to parse DefaultConfigYAML: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("generated YAML must validate: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.RiskThreshold != defaults.RiskThreshold {
		t.Errorf("risk_threshold mismatch: parsed=%d, default=%d", cfg.RiskThreshold, defaults.RiskThreshold)
	}
	if cfg.DedupeWindowDays != defaults.DedupeWindowDays {
		t.Errorf("dedupe_window_days mismatch: parsed=%d, default=%d", cfg.DedupeWindowDays, defaults.DedupeWindowDays)
	}
	if cfg.QuietHours.StartHour != defaults.QuietHours.StartHour || cfg.QuietHours.EndHour != defaults.QuietHours.EndHour {
		t.Errorf("quiet_hours mismatch: parsed=%+v, default=%+v", cfg.QuietHours, defaults.QuietHours)
	}
	if cfg.DailyCap(model.PlatformX, model.KindPost) != defaults.DailyCap(model.PlatformX, model.KindPost) {
		t.Error("rate_limits mismatch for x/post")
	}
	if cfg.DisableEnv != defaults.DisableEnv {
		t.Errorf("disable_env mismatch: %s", cfg.DisableEnv)
	}
}
