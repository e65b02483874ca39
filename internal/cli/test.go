package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agenium/postgate/internal/scenario"
)

var (
	testScenario string
	testPolicy   string
	testFormat   string
)

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.Flags().StringVar(&testScenario, "scenario", "", "Glob pattern for scenario YAML files (required)")
	testCmd.Flags().StringVar(&testPolicy, "policy", "", "Path to policy YAML (optional)")
	testCmd.Flags().StringVarP(&testFormat, "format", "f", "text", "Output format (text|json)")
	testCmd.MarkFlagRequired("scenario")
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run policy assertions from scenario files",
	Long: "Loads scenario YAML files matching a glob pattern, evaluates each\n" +
		"case through the publishing gate, and reports pass/fail.\n\n" +
		"Exit code 0 if all cases pass, 1 if any fail.\n" +
		"Use in CI to gate policy config changes on expected behavior.",
	RunE: runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	matches, err := filepath.Glob(testScenario)
	if err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no scenario files match pattern: %s", testScenario)
	}

	var results []*scenario.RunResult
	for _, path := range matches {
		r, err := scenario.LoadAndRun(path, testPolicy)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		results = append(results, r)
	}

	switch testFormat {
	case "json":
		out, err := scenario.FormatJSON(results)
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Print(scenario.FormatText(results))
	}

	for _, r := range results {
		if r.Failed > 0 {
			os.Exit(1)
		}
	}

	return nil
}
