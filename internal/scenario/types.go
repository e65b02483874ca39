// Package scenario runs policy assertions from YAML files: each case is a
// candidate action plus the verdict it must receive. Used in CI to gate
// policy config changes on expected gate behavior.
package scenario

import "github.com/agenium/postgate/internal/model"

// Case is one test case within a scenario.
type Case struct {
	Action model.CandidateAction `yaml:"action"`
	// Expect is "allow" or "deny".
	Expect string `yaml:"expect"`
	// ExpectReasons optionally pins the exact reason codes, in order.
	ExpectReasons []string `yaml:"expect_reasons,omitempty"`
}

// Scenario is a named collection of policy test cases.
type Scenario struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int      `json:"index"`
	Passed   bool     `json:"passed"`
	Platform string   `json:"platform"`
	Kind     string   `json:"kind"`
	Expected string   `json:"expected"`
	Actual   string   `json:"actual"`
	Reasons  []string `json:"reasons"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
