package rules

import (
	"regexp"

	"github.com/agenium/postgate/internal/model"
)

// HardBlockRule is one category of content that must never be published.
// A rule fires when any of its patterns match the raw text.
type HardBlockRule struct {
	Code     model.ReasonCode
	Patterns []*regexp.Regexp
}

// HardBlockRules holds the five safety categories, evaluated unconditionally
// and in order. POLITICAL_TARGETING is always computed but only enforced when
// the deployment opts in (see policy.PolicyConfig.EnforcePoliticalTargeting).
var HardBlockRules = []HardBlockRule{
	{
		Code: model.ReasonHateHarassment,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bkill\s+(?:all|every)\s+\w+`),
			regexp.MustCompile(`(?i)\b(?:gas|exterminate|lynch)\s+the\s+\w+`),
			regexp.MustCompile(`(?i)\bgo\s+back\s+to\s+your\s+country\b`),
			regexp.MustCompile(`(?i)\b(?:subhuman|untermensch)\b`),
			regexp.MustCompile(`(?i)\bdeserve\s+to\s+die\b`),
			regexp.MustCompile(`(?i)\b(?:retard|tranny|faggot)s?\b`),
		},
	},
	{
		Code: model.ReasonSexualContent,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:hardcore|explicit)\s+(?:porn|sex)\b`),
			regexp.MustCompile(`(?i)\b(?:nude|naked)\s+(?:pics?|photos?|images?)\b`),
			regexp.MustCompile(`(?i)\bonlyfans\.com/\S+`),
			regexp.MustCompile(`(?i)\b(?:blowjob|cumshot|anal\s+sex)\b`),
			regexp.MustCompile(`(?i)\bsexually\s+explicit\b`),
		},
	},
	{
		Code: model.ReasonDoxxing,
		Patterns: []*regexp.Regexp{
			// street address with house number
			regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Z][a-z]+\s+(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr)\b\.?`),
			// US phone number shapes
			regexp.MustCompile(`\(?\d{3}\)?[-. ]\d{3}[-. ]\d{4}\b`),
			// SSN-shaped digit groups
			regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			regexp.MustCompile(`(?i)\bpersonal\s+(?:info|information|details)\s+(?:of|about|for)\s+@?\w+`),
			regexp.MustCompile(`(?i)\b(?:home|real)\s+address\s+(?:of|is)\b`),
			regexp.MustCompile(`(?i)\bdox(?:x?ed|x?ing)?\b`),
		},
	},
	{
		Code: model.ReasonIllegalInstruction,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bhow\s+to\s+(?:make|build|construct)\s+(?:a\s+)?(?:bomb|explosive|pipe\s+bomb|silencer|ghost\s+gun)`),
			regexp.MustCompile(`(?i)\b(?:synthesi[sz]e|cook|manufacture)\s+(?:meth|fentanyl|mdma|lsd)\b`),
			regexp.MustCompile(`(?i)\b(?:launder(?:ing)?\s+money|money\s+launder)`),
			regexp.MustCompile(`(?i)\b(?:steal|clone|skim)\s+credit\s+cards?\b`),
			regexp.MustCompile(`(?i)\bbypass\s+(?:kyc|sanctions)\b`),
		},
	},
	{
		Code: model.ReasonPoliticalTargeting,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bvote\s+(?:for|against)\s+\w+`),
			regexp.MustCompile(`(?i)\b(?:defeat|destroy)\s+the\s+(?:democrats?|republicans?|left|right)\b`),
			regexp.MustCompile(`(?i)\bconvince\s+\w+\s+voters\b`),
			regexp.MustCompile(`(?i)\b(?:deep\s+state|rigged\s+election)\b`),
		},
	},
}

// Violations runs every hard-block category against text and returns the
// union of fired codes, in rule order. All five categories always run; the
// caller decides whether POLITICAL_TARGETING actually blocks.
func Violations(text string) []model.ReasonCode {
	var codes []model.ReasonCode
	for _, rule := range HardBlockRules {
		for _, re := range rule.Patterns {
			if re.MatchString(text) {
				codes = append(codes, rule.Code)
				break
			}
		}
	}
	return codes
}
