package store

import (
	"context"
	"sync"
	"time"

	"github.com/agenium/postgate/internal/model"
)

// LoggedAction is one in-memory action-log row.
type LoggedAction struct {
	Time        time.Time
	Platform    model.Platform
	Kind        model.ActionKind
	Fingerprint string
	Allow       bool
	ReasonCodes []string
	TextPreview string
}

// MemStore is a map-backed Store for tests and dry runs. Unlike the
// production backends it holds a single process-wide mutex, which also closes
// the check-then-insert dedupe race for same-process callers.
type MemStore struct {
	mu           sync.Mutex
	counts       map[string]int
	fingerprints map[string]time.Time
	actions      []LoggedAction

	// Now is overridable for deterministic day-boundary tests.
	Now func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		counts:       make(map[string]int),
		fingerprints: make(map[string]time.Time),
		Now:          time.Now,
	}
}

func (s *MemStore) GetTodayCount(ctx context.Context, platform model.Platform, kind model.ActionKind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[dayKey(platform, kind, s.Now())], nil
}

func (s *MemStore) IsDuplicate(ctx context.Context, fingerprint string, windowDays int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	firstSeen, ok := s.fingerprints[fingerprint]
	if !ok {
		return false, nil
	}
	if windowDays <= 0 {
		return true, nil
	}
	return s.Now().Sub(firstSeen) < time.Duration(windowDays)*24*time.Hour, nil
}

func (s *MemStore) IncrementCounter(ctx context.Context, platform model.Platform, kind model.ActionKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[dayKey(platform, kind, s.Now())]++
	return nil
}

func (s *MemStore) AddFingerprint(ctx context.Context, fingerprint string, platform model.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fingerprints[fingerprint]; !ok {
		s.fingerprints[fingerprint] = s.Now()
	}
	return nil
}

func (s *MemStore) LogAction(ctx context.Context, action *model.CandidateAction, decision *model.Decision, textPreview string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, LoggedAction{
		Time:        s.Now(),
		Platform:    action.Platform,
		Kind:        action.Kind,
		Fingerprint: decision.Fingerprint,
		Allow:       decision.Allow,
		ReasonCodes: decision.ReasonStrings(),
		TextPreview: textPreview,
	})
	return nil
}

// Actions returns a copy of the action log, oldest first.
func (s *MemStore) Actions() []LoggedAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LoggedAction, len(s.actions))
	copy(out, s.actions)
	return out
}
