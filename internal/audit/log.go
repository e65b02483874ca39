package audit

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agenium/postgate/internal/model"
	"github.com/agenium/postgate/internal/store"
)

// GenesisHash is the prev_hash for the first entry in a new audit log.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// Log is an append-only JSONL audit log with SHA-256 hash chaining. Each
// entry's prev_hash is the hash of the previous entry's JSON line. Log
// implements policy.AuditSink.
type Log struct {
	path       string
	file       *os.File
	prevHash   string
	policyHash string
	mu         sync.Mutex
}

// Open opens (or creates) an audit log file for appending. If the file
// already exists, the last line is read back to recover the chain tail.
// policyHash is stamped into every entry for config correlation.
func Open(path, policyHash string) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}

	prevHash := GenesisHash

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("audit: read existing log: %w", err)
		}
		scanner := bufio.NewScanner(f)
		var lastLine []byte
		for scanner.Scan() {
			lastLine = make([]byte, len(scanner.Bytes()))
			copy(lastLine, scanner.Bytes())
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("audit: scan existing log: %w", err)
		}
		if len(lastLine) > 0 {
			prevHash = HashLine(lastLine)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}

	return &Log{
		path:       path,
		file:       file,
		prevHash:   prevHash,
		policyHash: policyHash,
	}, nil
}

// Record appends the decision for an action, chained to the previous entry.
func (l *Log) Record(ctx context.Context, action *model.CandidateAction, decision *model.Decision) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Action: EntryAction{
			Platform:    string(action.Platform),
			Kind:        string(action.Kind),
			Fingerprint: decision.Fingerprint,
		},
		Allow:       decision.Allow,
		ReasonCodes: decision.ReasonStrings(),
		RiskScore:   decision.RiskScore,
		TextPreview: store.Preview(decision.RedactedText),
		PolicyHash:  l.policyHash,
		PrevHash:    l.prevHash,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: marshal entry: %w", err)
	}

	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: write entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("audit: sync: %w", err)
	}

	l.prevHash = HashLine(line)
	return nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// HashLine returns the chain hash of one raw JSON line.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}
