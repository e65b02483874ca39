package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"github.com/agenium/postgate/internal/model"
)

var (
	nonWordChars   = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// NormalizeText lowercases text, strips punctuation, and collapses
// whitespace runs to single spaces. Minor rephrasing of a duplicate — extra
// spaces, different casing, punctuation swaps — must still collide.
func NormalizeText(text string) string {
	s := strings.ToLower(text)
	s = nonWordChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fingerprint produces the stable content identity used for dedupe lookups
// and audit correlation. It is a pure function of platform, kind, normalized
// text, and the sorted link set: identical inputs always hash identically,
// across processes and across reimplementations.
func Fingerprint(platform model.Platform, kind model.ActionKind, text string, links []string) string {
	sorted := make([]string, len(links))
	copy(sorted, links)
	sort.Strings(sorted)

	payload := string(platform) + ":" + string(kind) + ":" + NormalizeText(text) + ":" + strings.Join(sorted, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
