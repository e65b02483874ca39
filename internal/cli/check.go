package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenium/postgate/internal/model"
	"github.com/agenium/postgate/internal/policy"
	"github.com/agenium/postgate/internal/store"
)

var (
	checkPolicy string
	checkStore  string
	checkFormat string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkPolicy, "policy", "", "Path to policy YAML (optional)")
	checkCmd.Flags().StringVar(&checkStore, "store", "", "Path to SQLite store; omit for a stateless check")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check <action.json>",
	Short: "Evaluate a candidate action against the publishing gate",
	Long: "Reads a candidate action from a JSON file and runs it through the gate.\n" +
		"Without --store the check is stateless: rate-limit and duplicate state\n" +
		"are not consulted and nothing is recorded.\n\n" +
		"Exit code 0 if the action is allowed, 1 if denied.",
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read action file: %w", err)
	}

	var action model.CandidateAction
	if err := json.Unmarshal(data, &action); err != nil {
		return fmt.Errorf("parse action file: %w", err)
	}

	cfg, err := policy.LoadConfig(checkPolicy)
	if err != nil {
		return err
	}

	var opts []policy.Option
	if checkStore != "" {
		st, err := store.NewSQLiteStore(checkStore)
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, policy.WithStore(st))
	}

	eval, err := policy.New(cfg, opts...)
	if err != nil {
		return err
	}

	decision, err := eval.Evaluate(context.Background(), &action)
	if err != nil {
		return err
	}

	switch checkFormat {
	case "json":
		out, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		printDecision(decision)
	}

	if !decision.Allow {
		os.Exit(1)
	}
	return nil
}

func printDecision(d *model.Decision) {
	verdict := "DENY"
	if d.Allow {
		verdict = "ALLOW"
	}
	fmt.Printf("%s  [%s]\n", verdict, strings.Join(d.ReasonStrings(), ", "))
	fmt.Printf("  risk score:  %d\n", d.RiskScore)
	fmt.Printf("  fingerprint: %s\n", d.Fingerprint)
	fmt.Printf("  daily cap:   %d\n", d.EnforcedLimits.MaxPerDay)
	if d.NextAllowedAt != nil {
		fmt.Printf("  retry after: %s\n", d.NextAllowedAt.Format("2006-01-02 15:04 MST"))
	}
}
