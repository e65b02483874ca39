package policy

import (
	"net/url"
	"strings"

	"github.com/agenium/postgate/internal/model"
	"github.com/agenium/postgate/internal/redact"
	"github.com/agenium/postgate/internal/rules"
)

// riskBase is the starting score every action carries.
const riskBase = 10

// lowQualityMinChars is the text length below which standalone content is
// penalized.
const lowQualityMinChars = 50

// RiskBreakdown itemizes the additive risk buckets. Total is clamped to
// [0,100] after summing.
type RiskBreakdown struct {
	Base            int `json:"base"`
	SecretsDetected int `json:"secrets_detected"`
	ExternalLinks   int `json:"external_links"`
	LowQuality      int `json:"low_quality"`
	Total           int `json:"total"`
}

// ScoreRisk computes the deterministic residual-risk score for an action.
// This is cumulative scoring over soft signals, not anomaly detection: every
// addend is a fixed constant tied to one named signal.
//
// Secrets are detected on the original text, independent of whether redaction
// already ran; both paths share the same detector so they always agree.
func ScoreRisk(action *model.CandidateAction, safeDomains []string) RiskBreakdown {
	var b RiskBreakdown

	b.Base = riskBase
	if rules.ContainsRiskyKeyword(action.Text) {
		// compounds into the base bucket before the cap
		b.Base += 15
	}

	if redact.ContainsSecrets(action.Text) {
		b.SecretsDetected = 40
	}

	if countExternalLinks(action.Links, safeDomains) > 3 {
		b.ExternalLinks = 20
	}

	if action.Kind.IsContent() && len(action.Text) < lowQualityMinChars {
		b.LowQuality = 20
	}

	b.Total = clamp(b.Base+b.SecretsDetected+b.ExternalLinks+b.LowQuality, 0, 100)
	return b
}

// IsRiskTooHigh reports whether a score meets or exceeds the deny threshold.
func IsRiskTooHigh(score, threshold int) bool {
	return score >= threshold
}

// countExternalLinks counts links whose hostname is not on the safe-domain
// allowlist. Subdomains of a safe domain are safe; unparseable links count as
// external.
func countExternalLinks(links, safeDomains []string) int {
	external := 0
	for _, link := range links {
		raw := link
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			external++
			continue
		}
		host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
		safe := false
		for _, d := range safeDomains {
			d = strings.ToLower(d)
			if host == d || strings.HasSuffix(host, "."+d) {
				safe = true
				break
			}
		}
		if !safe {
			external++
		}
	}
	return external
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
