package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestInboxWatcherDetectsNewFile(t *testing.T) {
	inbox := t.TempDir()

	var mu sync.Mutex
	var received []string

	w := NewInboxWatcher(inbox, func(path string) {
		mu.Lock()
		received = append(received, path)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Run(ctx) }()

	// Give the watcher time to start.
	time.Sleep(100 * time.Millisecond)

	// Write a submission atomically, the way producers are expected to.
	subPath := filepath.Join(inbox, "job-001.json")
	tmpPath := subPath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(`{"id":"job-001"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmpPath, subPath); err != nil {
		t.Fatal(err)
	}

	// Wait for debounce + processing.
	time.Sleep(500 * time.Millisecond)
	cancel()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 file, got %d", len(received))
	}
	if received[0] != subPath {
		t.Errorf("got path %q, want %q", received[0], subPath)
	}
}

func TestInboxWatcherIgnoresTmpFiles(t *testing.T) {
	inbox := t.TempDir()

	var mu sync.Mutex
	var received []string

	w := NewInboxWatcher(inbox, func(path string) {
		mu.Lock()
		received = append(received, path)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	tmpPath := filepath.Join(inbox, "job-002.json.tmp")
	if err := os.WriteFile(tmpPath, []byte(`{"id":"job-002"}`), 0600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	cancel()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 0 {
		t.Fatalf("expected no files, got %d", len(received))
	}
}

func TestScanExisting(t *testing.T) {
	inbox := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "c.txt", "d.json.tmp"} {
		if err := os.WriteFile(filepath.Join(inbox, name), []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	var got []string
	if err := ScanExisting(inbox, func(path string) {
		got = append(got, filepath.Base(path))
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 submissions, got %v", got)
	}
}

func TestScanExistingMissingDir(t *testing.T) {
	if err := ScanExisting(filepath.Join(t.TempDir(), "nope"), func(string) {
		t.Error("handler must not be called")
	}); err != nil {
		t.Fatalf("missing inbox is not an error: %v", err)
	}
}
