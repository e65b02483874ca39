package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/agenium/postgate/internal/audit"
	"github.com/agenium/postgate/internal/policy"
	"github.com/agenium/postgate/internal/store"
)

// Config holds full daemon configuration.
type Config struct {
	Dirs         DirConfig
	PolicyPath   string
	AuditLog     string
	StorePath    string // SQLite database path; defaults to state/postgate.db
	RedisURL     string // takes precedence over StorePath when set
	PollMode     bool
	PollInterval time.Duration
}

// Daemon watches the inbox directory and evaluates submissions.
type Daemon struct {
	cfg       Config
	processor *Processor
	closers   []func() error
}

// New creates a daemon with validated configuration. The policy config,
// store backend, and audit log are all opened here so a misconfigured
// daemon fails before it starts consuming the inbox.
func New(cfg Config) (*Daemon, error) {
	if cfg.Dirs.Inbox == "" || cfg.Dirs.Outbox == "" || cfg.Dirs.State == "" {
		return nil, fmt.Errorf("inbox, outbox, and state directories are required")
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = pollDefault
	}

	if err := EnsureDirs(cfg.Dirs); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	policyCfg, policyHash, err := policy.LoadConfigWithHash(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load policy config: %w", err)
	}

	d := &Daemon{cfg: cfg}

	var st store.Store
	if cfg.RedisURL != "" {
		rs, err := store.NewRedisStore(cfg.RedisURL, policyCfg.DedupeWindowDays)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		d.closers = append(d.closers, rs.Close)
		st = rs
	} else {
		path := cfg.StorePath
		if path == "" {
			path = filepath.Join(cfg.Dirs.State, "postgate.db")
		}
		ss, err := store.NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		d.closers = append(d.closers, ss.Close)
		st = ss
	}

	opts := []policy.Option{policy.WithStore(st)}
	if cfg.AuditLog != "" {
		log, err := audit.Open(cfg.AuditLog, policyHash)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		d.closers = append(d.closers, log.Close)
		opts = append(opts, policy.WithAudit(log))
	}

	eval, err := policy.New(policyCfg, opts...)
	if err != nil {
		return nil, err
	}

	d.processor = NewProcessor(cfg.Dirs, eval)
	return d, nil
}

// Run starts the daemon. Blocks until ctx is cancelled. On startup, recovers
// orphaned processing files and evaluates any submissions already waiting in
// the inbox.
func (d *Daemon) Run(ctx context.Context) error {
	pidPath := filepath.Join(d.cfg.Dirs.State, "daemon.pid")
	if err := acquirePIDLock(pidPath); err != nil {
		return fmt.Errorf("acquire PID lock: %w", err)
	}
	defer func() { _ = os.Remove(pidPath) }()

	if err := d.recoverOrphans(); err != nil {
		return fmt.Errorf("recover orphans: %w", err)
	}

	handler := func(path string) {
		if err := d.processor.Process(ctx, path); err != nil {
			fmt.Fprintf(os.Stderr, "daemon: process %s: %v\n", filepath.Base(path), err)
		}
	}

	if err := ScanExisting(d.cfg.Dirs.Inbox, handler); err != nil {
		return fmt.Errorf("scan existing: %w", err)
	}

	if d.cfg.PollMode {
		pw := NewPollWatcher(d.cfg.Dirs.Inbox, handler, d.cfg.PollInterval)
		return pw.Run(ctx)
	}

	w := NewInboxWatcher(d.cfg.Dirs.Inbox, handler)
	return w.Run(ctx)
}

// Close releases the store and audit log.
func (d *Daemon) Close() error {
	var first error
	for _, c := range d.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// recoverOrphans writes failed outcomes for files left in state/processing/.
// These are submissions that were mid-evaluation when the daemon stopped.
func (d *Daemon) recoverOrphans() error {
	procDir := d.cfg.Dirs.ProcessingDir()
	entries, err := os.ReadDir(procDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !isSubmissionFile(e.Name()) {
			continue
		}
		id := e.Name()[:len(e.Name())-5] // strip .json
		outcome := &Outcome{
			ID:          id,
			Status:      OutcomeFailed,
			Error:       "interrupted: submission was processing when daemon stopped",
			CompletedAt: time.Now().UTC(),
		}
		if err := d.processor.writeOutcome(outcome); err != nil {
			fmt.Fprintf(os.Stderr, "daemon: recover orphan %s: %v\n", id, err)
		}
		_ = os.Remove(filepath.Join(procDir, e.Name()))
	}
	return nil
}

// acquirePIDLock writes the current PID to the file and checks for stale locks.
func acquirePIDLock(path string) error {
	if data, err := os.ReadFile(path); err == nil {
		pid, err := strconv.Atoi(string(data))
		if err == nil {
			if process, err := os.FindProcess(pid); err == nil {
				if err := process.Signal(syscall.Signal(0)); err == nil {
					return fmt.Errorf("another daemon is running (PID %d)", pid)
				}
			}
		}
		// Stale PID file — remove it.
		_ = os.Remove(path)
	}

	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600)
}
