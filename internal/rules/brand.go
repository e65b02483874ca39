package rules

import (
	"strings"

	"github.com/agenium/postgate/internal/model"
)

// RequiresBrandMention reports whether the action kind must carry a brand
// keyword. Broadcast kinds start new public threads under the project's name;
// conversational replies and comments are exempt.
func RequiresBrandMention(kind model.ActionKind) bool {
	return kind.IsBroadcast()
}

// HasBrandMention reports whether text contains at least one of the
// configured brand keywords, matched as a case-insensitive substring.
func HasBrandMention(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
