package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenium/postgate/internal/daemon"
)

var (
	watchInbox    string
	watchOutbox   string
	watchState    string
	watchPolicy   string
	watchAuditLog string
	watchStore    string
	watchRedisURL string
	watchPoll     bool
	watchInterval time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)
	defaults := daemon.DefaultDirConfig()
	watchCmd.Flags().StringVar(&watchInbox, "inbox", defaults.Inbox, "Directory to watch for submission files")
	watchCmd.Flags().StringVar(&watchOutbox, "outbox", defaults.Outbox, "Directory for decision outcomes")
	watchCmd.Flags().StringVar(&watchState, "state", defaults.State, "Directory for daemon state")
	watchCmd.Flags().StringVar(&watchPolicy, "policy", "", "Path to policy YAML")
	watchCmd.Flags().StringVar(&watchAuditLog, "audit-log", "", "Path to audit log JSONL file")
	watchCmd.Flags().StringVar(&watchStore, "store", "", "Path to SQLite store (default: <state>/postgate.db)")
	watchCmd.Flags().StringVar(&watchRedisURL, "redis-url", "", "Redis URL for shared gate state (overrides --store)")
	watchCmd.Flags().BoolVar(&watchPoll, "poll", false, "Poll the inbox instead of using fsnotify")
	watchCmd.Flags().DurationVar(&watchInterval, "poll-interval", 0, "Polling interval (with --poll)")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the inbox/outbox submission daemon",
	Long: "Watches the inbox directory for candidate-action JSON files, evaluates\n" +
		"each through the publishing gate, and writes the decision to the outbox.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(daemon.Config{
		Dirs: daemon.DirConfig{
			Inbox:  watchInbox,
			Outbox: watchOutbox,
			State:  watchState,
		},
		PolicyPath:   watchPolicy,
		AuditLog:     watchAuditLog,
		StorePath:    watchStore,
		RedisURL:     watchRedisURL,
		PollMode:     watchPoll,
		PollInterval: watchInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down daemon...")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "postgate daemon watching %s\n", watchInbox)
	return d.Run(ctx)
}
