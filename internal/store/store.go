// Package store defines the persistence contract the policy gate depends on:
// a per-(platform, kind, calendar day) counter, a fingerprint dedupe index,
// and an action log. Any backend satisfying the five methods is valid — the
// gate never assumes a storage technology. MemStore backs tests and dry runs,
// SQLiteStore is the single-host default, RedisStore serves concurrent
// deployments.
package store

import (
	"context"
	"time"

	"github.com/agenium/postgate/internal/model"
)

// Store is the gate's only contract with persistence. All methods are
// synchronous; errors propagate to the caller untouched.
type Store interface {
	// GetTodayCount returns how many actions were recorded for the
	// platform/kind pair during the current UTC calendar day.
	GetTodayCount(ctx context.Context, platform model.Platform, kind model.ActionKind) (int, error)
	// IsDuplicate reports whether the fingerprint was first seen within the
	// last windowDays days.
	IsDuplicate(ctx context.Context, fingerprint string, windowDays int) (bool, error)
	// IncrementCounter records one allowed action against today's counter.
	IncrementCounter(ctx context.Context, platform model.Platform, kind model.ActionKind) error
	// AddFingerprint records a fingerprint in the dedupe index.
	AddFingerprint(ctx context.Context, fingerprint string, platform model.Platform) error
	// LogAction persists the decision for an action.
	LogAction(ctx context.Context, action *model.CandidateAction, decision *model.Decision, textPreview string) error
}

// dayKey buckets counters by UTC calendar day, matching across all backends
// so stores are interchangeable mid-deployment.
func dayKey(platform model.Platform, kind model.ActionKind, t time.Time) string {
	return string(platform) + "/" + string(kind) + "/" + t.UTC().Format(time.DateOnly)
}

// Preview truncates redacted text for log storage.
func Preview(text string) string {
	const max = 120
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
