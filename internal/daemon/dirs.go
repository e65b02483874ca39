package daemon

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// dirPerm is the permission for daemon-managed directories.
const dirPerm = 0750

// DirConfig holds the daemon directory layout.
type DirConfig struct {
	Inbox  string // incoming submission files
	Outbox string // decision outcomes
	State  string // state/{processing}, store database, pid file
}

// DefaultDirConfig returns reasonable defaults under the user's home.
func DefaultDirConfig() DirConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	base := filepath.Join(home, ".postgate")
	return DirConfig{
		Inbox:  filepath.Join(base, "inbox"),
		Outbox: filepath.Join(base, "outbox"),
		State:  filepath.Join(base, "state"),
	}
}

// ProcessingDir returns the path to the processing subdirectory.
func (d DirConfig) ProcessingDir() string {
	return filepath.Join(d.State, "processing")
}

// EnsureDirs creates all required directories. Idempotent.
func EnsureDirs(cfg DirConfig) error {
	dirs := []string{
		cfg.Inbox,
		cfg.Outbox,
		cfg.State,
		cfg.ProcessingDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// moveFile moves src to dst using os.Rename. If rename fails with EXDEV
// (cross-device link, common with systemd ReadWritePaths bind mounts),
// it falls back to copy + remove.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) || errno != syscall.EXDEV {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile copies src to dst preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
