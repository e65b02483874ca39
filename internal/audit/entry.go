// Package audit persists every gate decision to an append-only JSONL log
// with SHA-256 hash chaining, so tampering with history is detectable.
package audit

// EntryAction is the flattened action recorded in each audit entry. Only the
// redacted preview of the text is stored; the log must never retain a live
// secret.
type EntryAction struct {
	Platform    string `json:"platform"`
	Kind        string `json:"kind"`
	Fingerprint string `json:"fingerprint"`
}

// Entry is one line in the hash-chained JSONL audit log. All fields are
// structs and scalars (no map[string]any) so json.Marshal field order is
// deterministic and hashes reproduce.
type Entry struct {
	Timestamp   string      `json:"ts"`
	Action      EntryAction `json:"action"`
	Allow       bool        `json:"allow"`
	ReasonCodes []string    `json:"reason_codes"`
	RiskScore   int         `json:"risk_score"`
	TextPreview string      `json:"text_preview"`
	PolicyHash  string      `json:"policy_hash"`
	PrevHash    string      `json:"prev_hash"`
}
