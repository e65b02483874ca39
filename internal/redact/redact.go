package redact

import (
	"regexp"
	"sort"
)

// Pattern is one named secret detector with its replacement placeholder.
type Pattern struct {
	Kind        string
	Re          *regexp.Regexp
	Placeholder string
}

// Patterns is the fixed, ordered detector table. Specific formats come before
// the generic hex/base64 catch-alls so a PEM body is replaced whole rather
// than partially eaten by the blob rules. Detection always runs every pattern
// against the original text, so ordering only affects replacement.
var Patterns = []Pattern{
	{
		Kind:        "private_key",
		Re:          regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`),
		Placeholder: "[PRIVATE_KEY]",
	},
	{
		Kind:        "github_token",
		Re:          regexp.MustCompile(`\b(?:gh[pousr]_[A-Za-z0-9]{36,251}|github_pat_[A-Za-z0-9_]{22,255})\b`),
		Placeholder: "[GITHUB_TOKEN]",
	},
	{
		Kind:        "anthropic_key",
		Re:          regexp.MustCompile(`\bsk-ant-[A-Za-z0-9_-]{20,}\b`),
		Placeholder: "[ANTHROPIC_KEY]",
	},
	{
		Kind:        "openai_key",
		Re:          regexp.MustCompile(`\bsk-[A-Za-z0-9]{20,}\b`),
		Placeholder: "[OPENAI_KEY]",
	},
	{
		Kind:        "aws_access_key",
		Re:          regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`),
		Placeholder: "[AWS_ACCESS_KEY]",
	},
	{
		Kind:        "jwt",
		Re:          regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}\b`),
		Placeholder: "[JWT]",
	},
	{
		Kind:        "bearer_token",
		Re:          regexp.MustCompile(`(?i)\bbearer[ \t]+[A-Za-z0-9._~+/-]{16,}=*`),
		Placeholder: "[BEARER_TOKEN]",
	},
	{
		Kind:        "db_uri",
		Re:          regexp.MustCompile(`\b(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqps?)://\S+`),
		Placeholder: "[DB_URI]",
	},
	{
		Kind:        "ssh_key",
		Re:          regexp.MustCompile(`\bssh-(?:rsa|ed25519|dss)[ \t]+AAAA[A-Za-z0-9+/=]+`),
		Placeholder: "[SSH_KEY]",
	},
	{
		Kind:        "credential_pair",
		Re:          regexp.MustCompile(`(?i)\b(?:password|passwd|pwd|secret|token|api[_-]?key|apikey|access[_-]?key|auth)[ \t]*[:=][ \t]*\S+`),
		Placeholder: "[CREDENTIAL]",
	},
	{
		Kind:        "internal_ip",
		Re:          regexp.MustCompile(`\b(?:10\.\d{1,3}\.\d{1,3}\.\d{1,3}|172\.(?:1[6-9]|2\d|3[01])\.\d{1,3}\.\d{1,3}|192\.168\.\d{1,3}\.\d{1,3})\b`),
		Placeholder: "[INTERNAL_IP]",
	},
	{
		Kind:        "hex_secret",
		Re:          regexp.MustCompile(`\b[0-9a-fA-F]{32,}\b`),
		Placeholder: "[HEX_SECRET]",
	},
	{
		Kind:        "base64_secret",
		Re:          regexp.MustCompile(`\b[A-Za-z0-9+/]{40,}={0,2}`),
		Placeholder: "[BASE64_SECRET]",
	},
}

// Result is the outcome of redacting one piece of text.
type Result struct {
	RedactedText string
	HasSecrets   bool
	// Kinds lists every pattern that matched, sorted. Overlapping matches
	// tag multiple kinds on purpose: over-redaction is safe, leakage is not.
	Kinds []string
}

// Scan returns the sorted kinds of every pattern matching text. It never
// builds the redacted copy, so it is the cheap path for detection-only
// callers such as the risk model.
func Scan(text string) []string {
	var kinds []string
	for _, p := range Patterns {
		if p.Re.MatchString(text) {
			kinds = append(kinds, p.Kind)
		}
	}
	sort.Strings(kinds)
	return kinds
}

// ContainsSecrets reports whether any secret pattern matches text.
func ContainsSecrets(text string) bool {
	for _, p := range Patterns {
		if p.Re.MatchString(text) {
			return true
		}
	}
	return false
}

// Redact detects secrets in text and returns a copy with every match replaced
// by its typed placeholder. All patterns are detected against the original
// text first, then replacements are applied in table order, so an earlier
// replacement cannot hide a later pattern from detection.
func Redact(text string) Result {
	kinds := Scan(text)
	if len(kinds) == 0 {
		return Result{RedactedText: text}
	}

	redacted := text
	for _, p := range Patterns {
		redacted = p.Re.ReplaceAllString(redacted, p.Placeholder)
	}

	return Result{
		RedactedText: redacted,
		HasSecrets:   true,
		Kinds:        kinds,
	}
}
