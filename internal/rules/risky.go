package rules

import (
	"regexp"
	"strings"
)

// riskyPhrases is the soft spam/urgency phrasing list feeding the risk score.
// Deliberately separate from the hard-block tables: these raise suspicion,
// they do not block on their own.
var riskyPhrases = []string{
	"guaranteed",
	"get rich",
	"make money fast",
	"act now",
	"act fast",
	"limited time",
	"last chance",
	"don't miss out",
	"click here",
	"buy now",
	"100% free",
	"risk free",
	"no strings attached",
	"double your",
	"to the moon",
}

var riskyPatterns = []*regexp.Regexp{
	// shouting with trailing exclamation runs
	regexp.MustCompile(`[A-Z]{6,}!{2,}`),
	// fabricated scarcity counters
	regexp.MustCompile(`(?i)\bonly\s+\d+\s+(?:spots?|seats?|left)\b`),
}

// ContainsRiskyKeyword reports whether text matches any soft spam-trigger
// phrase or pattern.
func ContainsRiskyKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range riskyPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, re := range riskyPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
