package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agenium/postgate/internal/policy"
)

// Processor handles submission lifecycle transitions.
type Processor struct {
	dirs DirConfig
	eval *policy.Evaluator
}

// NewProcessor creates a processor evaluating submissions against the given
// gate.
func NewProcessor(dirs DirConfig, eval *policy.Evaluator) *Processor {
	return &Processor{dirs: dirs, eval: eval}
}

// Process handles a single submission file through its full lifecycle:
// read → validate → move to processing → evaluate → write outcome to outbox.
func (p *Processor) Process(ctx context.Context, path string) error {
	// Structural symlink defense: reject symlinks before reading. Without
	// this, a symlink to a valid JSON file elsewhere on the filesystem
	// would be processed as a legitimate submission.
	fi, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat submission file: %w", err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("rejected symlink: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read submission file: %w", err)
	}

	var sub Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return p.writeFailedOutcome(filepath.Base(path), fmt.Sprintf("invalid JSON: %v", err))
	}

	if err := ValidateSubmission(&sub); err != nil {
		return p.writeFailedOutcome(sub.ID, fmt.Sprintf("validation failed: %v", err))
	}

	// Move to processing state. Uses moveFile to handle systemd bind
	// mounts (EXDEV).
	processingPath := filepath.Join(p.dirs.ProcessingDir(), sub.ID+".json")
	if err := moveFile(path, processingPath); err != nil {
		return fmt.Errorf("move to processing: %w", err)
	}

	outcome := p.evaluate(ctx, &sub)

	if err := p.writeOutcome(outcome); err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}

	_ = os.Remove(processingPath)
	return nil
}

// evaluate runs the submission through the gate and maps the decision to an
// outcome. Collaborator failures (store, audit) produce a failed outcome
// rather than losing the submission silently.
func (p *Processor) evaluate(ctx context.Context, sub *Submission) *Outcome {
	outcome := &Outcome{
		ID:          sub.ID,
		CompletedAt: time.Now().UTC(),
	}

	decision, err := p.eval.Evaluate(ctx, &sub.Action)
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		outcome.Decision = decision
		return outcome
	}

	outcome.Decision = decision
	if decision.Allow {
		outcome.Status = OutcomeAllowed
	} else {
		outcome.Status = OutcomeDenied
	}
	return outcome
}

// writeOutcome writes an outcome to the outbox directory atomically.
func (p *Processor) writeOutcome(o *Outcome) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	filename := o.ID + ".json"
	tmpPath := filepath.Join(p.dirs.Outbox, filename+".tmp")
	finalPath := filepath.Join(p.dirs.Outbox, filename)

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	return os.Rename(tmpPath, finalPath)
}

// writeFailedOutcome writes a minimal failed outcome when the submission
// can't be parsed.
func (p *Processor) writeFailedOutcome(id string, errMsg string) error {
	if id == "" {
		id = fmt.Sprintf("unknown-%d", time.Now().UnixNano())
	}
	return p.writeOutcome(&Outcome{
		ID:          id,
		Status:      OutcomeFailed,
		Error:       errMsg,
		CompletedAt: time.Now().UTC(),
	})
}
