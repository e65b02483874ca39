// Package mcp exposes the publishing gate over the Model Context Protocol,
// so agents can check and submit content through standard tool calls.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agenium/postgate/internal/audit"
	"github.com/agenium/postgate/internal/policy"
	"github.com/agenium/postgate/internal/store"
)

// Config holds MCP server configuration.
type Config struct {
	PolicyPath   string
	StorePath    string // SQLite database path; empty means the default under ~/.postgate
	RedisURL     string // takes precedence over StorePath when set
	AuditLogPath string
}

// Server wraps the MCP SDK server around the policy gate.
type Server struct {
	mcpServer *mcpsdk.Server
	// gate evaluates with full side effects: counters, fingerprints, audit.
	gate *policy.Evaluator
	// dryGate evaluates the stateless checks only, for postgate_check.
	dryGate    *policy.Evaluator
	policyHash string
	closers    []func() error
}

// New creates an MCP server with loaded policy, store, and tools.
func New(cfg Config) (*Server, error) {
	policyCfg, policyHash, err := policy.LoadConfigWithHash(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy config: %w", err)
	}

	s := &Server{policyHash: policyHash}

	var st store.Store
	if cfg.RedisURL != "" {
		rs, err := store.NewRedisStore(cfg.RedisURL, policyCfg.DedupeWindowDays)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		s.closers = append(s.closers, rs.Close)
		st = rs
	} else {
		path := cfg.StorePath
		if path == "" {
			path = defaultStorePath()
		}
		ss, err := store.NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		s.closers = append(s.closers, ss.Close)
		st = ss
	}

	gateOpts := []policy.Option{policy.WithStore(st)}
	if cfg.AuditLogPath != "" {
		log, err := audit.Open(cfg.AuditLogPath, policyHash)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		s.closers = append(s.closers, log.Close)
		gateOpts = append(gateOpts, policy.WithAudit(log))
	}

	s.gate, err = policy.New(policyCfg, gateOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gate: %w", err)
	}

	// The dry gate shares the config but carries no store or audit sink,
	// so a check never consumes rate-limit budget or records state.
	s.dryGate, err = policy.New(policyCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dry-run gate: %w", err)
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "postgate",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close releases the store and audit log.
func (s *Server) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PolicyHash returns the hash of the loaded policy config.
func (s *Server) PolicyHash() string {
	return s.policyHash
}

// registerTools adds the postgate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "postgate_check",
		Description: "Check whether content would pass the publishing gate without submitting it (dry-run). Rate-limit and duplicate state are not consulted or consumed.",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "postgate_submit",
		Description: "Submit content through the publishing gate. Allowed submissions consume rate-limit budget and register a content fingerprint; denials return stable reason codes.",
	}, s.handleSubmit)
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".postgate", "state", "postgate.db")
}
