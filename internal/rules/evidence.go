package rules

import "regexp"

// claimPatterns match quantitative claims that must be backed by evidence
// records before publication: throughput figures, percentile latencies,
// percentage quality claims, multiplicative comparisons, and
// achieved/reached/hit phrasing.
var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d[\d,.]*\s*k?\s*(?:req/s|r/s|rps|qps|tps|ops/s)\b`),
	regexp.MustCompile(`(?i)\bp\d{2,3}\b[^.!?\n]*?\d[\d,.]*\s*(?:ms|µs|us|s)\b`),
	regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*%\s*(?:uptime|availability|accuracy|success|improvement|reduction|faster|fewer)\b`),
	regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?x\s+(?:faster|cheaper|better|smaller|higher|lower|more)\b`),
	regexp.MustCompile(`(?i)\b(?:achiev(?:ed|es|ing)|reach(?:ed|es|ing)|hit(?:s|ting)?)\s+\d`),
}

// ContainsNumericClaim reports whether text makes a quantitative claim that
// requires supporting evidence.
func ContainsNumericClaim(text string) bool {
	for _, re := range claimPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
