package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agenium/postgate/internal/model"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "postgate.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteCounterRoundTrip(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	if n, err := s.GetTodayCount(ctx, model.PlatformX, model.KindPost); err != nil || n != 0 {
		t.Fatalf("fresh store: n=%d err=%v", n, err)
	}

	for i := 0; i < 3; i++ {
		if err := s.IncrementCounter(ctx, model.PlatformX, model.KindPost); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.IncrementCounter(ctx, model.PlatformReddit, model.KindPost); err != nil {
		t.Fatal(err)
	}

	if n, _ := s.GetTodayCount(ctx, model.PlatformX, model.KindPost); n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
	if n, _ := s.GetTodayCount(ctx, model.PlatformReddit, model.KindPost); n != 1 {
		t.Errorf("platforms must count independently, got %d", n)
	}
}

func TestSQLiteDedupe(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	const fp = "deadbeef"

	if dup, err := s.IsDuplicate(ctx, fp, 14); err != nil || dup {
		t.Fatalf("unseen fingerprint: dup=%v err=%v", dup, err)
	}
	if err := s.AddFingerprint(ctx, fp, model.PlatformX); err != nil {
		t.Fatal(err)
	}
	if dup, err := s.IsDuplicate(ctx, fp, 14); err != nil || !dup {
		t.Fatalf("just-added fingerprint: dup=%v err=%v", dup, err)
	}

	// second insert hits the primary key and is ignored, not an error
	if err := s.AddFingerprint(ctx, fp, model.PlatformReddit); err != nil {
		t.Errorf("re-adding must be a no-op, got %v", err)
	}
}

func TestSQLiteZeroWindowNeverExpires(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	const fp = "cafe01"

	if err := s.AddFingerprint(ctx, fp, model.PlatformX); err != nil {
		t.Fatal(err)
	}
	if dup, err := s.IsDuplicate(ctx, fp, 0); err != nil || !dup {
		t.Errorf("windowDays 0 treats any seen fingerprint as duplicate: dup=%v err=%v", dup, err)
	}
}

func TestSQLiteLogAction(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	action := &model.CandidateAction{Platform: model.PlatformGitHub, Kind: model.KindIssue, Text: "tracking issue"}
	decision := &model.Decision{
		Allow:       true,
		ReasonCodes: []model.ReasonCode{model.ReasonAllowed},
		RiskScore:   10,
		Fingerprint: "fp-issue",
	}
	if err := s.LogAction(ctx, action, decision, "tracking issue"); err != nil {
		t.Fatal(err)
	}

	var platform, reasons string
	var allow, risk int
	err := s.db.QueryRowContext(ctx,
		`SELECT platform, allow, reason_codes, risk_score FROM action_log`).
		Scan(&platform, &allow, &reasons, &risk)
	if err != nil {
		t.Fatal(err)
	}
	if platform != "github" || allow != 1 || reasons != "ALLOWED" || risk != 10 {
		t.Errorf("unexpected row: platform=%s allow=%d reasons=%s risk=%d", platform, allow, reasons, risk)
	}
}

func TestSQLiteReopenKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "postgate.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.IncrementCounter(ctx, model.PlatformX, model.KindPost); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFingerprint(ctx, "persisted", model.PlatformX); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if n, _ := s.GetTodayCount(ctx, model.PlatformX, model.KindPost); n != 1 {
		t.Errorf("counter must survive reopen, got %d", n)
	}
	if dup, _ := s.IsDuplicate(ctx, "persisted", 14); !dup {
		t.Error("fingerprint must survive reopen")
	}
}
