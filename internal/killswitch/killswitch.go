// Package killswitch provides the out-of-band signals that halt all
// publishing instantly: a stop file an operator can touch, and an environment
// flag an orchestrator can set. Both are read fresh on every check so a halt
// takes effect without restarting anything.
package killswitch

import (
	"os"
	"strings"
)

// Provider exposes the two independent kill-switch signals to the evaluator.
type Provider interface {
	// StopAll reports whether the operator stop file exists.
	StopAll() bool
	// PublishDisabled reports whether the disable flag is set.
	PublishDisabled() bool
}

// FileEnv is the standard Provider: stop-file presence plus a truthy
// environment variable.
type FileEnv struct {
	StopPath   string
	DisableEnv string
}

func (f FileEnv) StopAll() bool {
	if f.StopPath == "" {
		return false
	}
	_, err := os.Stat(f.StopPath)
	return err == nil
}

func (f FileEnv) PublishDisabled() bool {
	if f.DisableEnv == "" {
		return false
	}
	return truthy(os.Getenv(f.DisableEnv))
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Disabled is a Provider that never fires. Useful in tests that must not
// depend on ambient process state.
type Disabled struct{}

func (Disabled) StopAll() bool         { return false }
func (Disabled) PublishDisabled() bool { return false }
