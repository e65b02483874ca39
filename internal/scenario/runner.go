package scenario

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agenium/postgate/internal/killswitch"
	"github.com/agenium/postgate/internal/policy"
)

// Run evaluates all cases in a scenario against the given policy config.
// Cases are independent: the evaluator carries no store, so rate-limit and
// duplicate state never bleed between cases, and kill switches are held open
// so a stray stop file on the CI host cannot fail the suite.
func Run(s *Scenario, cfg *policy.PolicyConfig) (*RunResult, error) {
	eval, err := policy.New(cfg, policy.WithKillSwitch(killswitch.Disabled{}))
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		action := c.Action
		decision, err := eval.Evaluate(context.Background(), &action)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}

		actual := "deny"
		if decision.Allow {
			actual = "allow"
		}
		expected := strings.ToLower(c.Expect)

		cr := CaseResult{
			Index:    i + 1,
			Platform: string(action.Platform),
			Kind:     string(action.Kind),
			Expected: expected,
			Actual:   actual,
			Reasons:  decision.ReasonStrings(),
		}

		cr.Passed = actual == expected && reasonsMatch(c.ExpectReasons, cr.Reasons)
		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result, nil
}

// reasonsMatch reports whether got equals want exactly. An empty want list
// pins nothing.
func reasonsMatch(want, got []string) bool {
	if len(want) == 0 {
		return true
	}
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

// LoadAndRun loads a scenario YAML file and the policy config, then runs.
func LoadAndRun(path, policyPath string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	cfg, err := policy.LoadConfig(policyPath)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	result, err := Run(&s, cfg)
	if err != nil {
		return nil, err
	}
	result.File = path

	return result, nil
}
