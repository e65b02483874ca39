package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gatemcp "github.com/agenium/postgate/internal/mcp"
)

var (
	mcpPolicy   string
	mcpStore    string
	mcpRedisURL string
	mcpAuditLog string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpPolicy, "policy", "", "Path to policy YAML")
	mcpCmd.Flags().StringVar(&mcpStore, "store", "", "Path to SQLite store")
	mcpCmd.Flags().StringVar(&mcpRedisURL, "redis-url", "", "Redis URL for shared gate state (overrides --store)")
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Path to audit log JSONL file")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs postgate as an MCP (Model Context Protocol) server over stdio.\nExposes the gate as tools: postgate_check (dry-run) and postgate_submit.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv, err := gatemcp.New(gatemcp.Config{
		PolicyPath:   mcpPolicy,
		StorePath:    mcpStore,
		RedisURL:     mcpRedisURL,
		AuditLogPath: mcpAuditLog,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "postgate MCP server running on stdio")
	fmt.Fprintf(os.Stderr, "policy: %s\n", srv.PolicyHash())

	return srv.Run(ctx)
}
