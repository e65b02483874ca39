package store

import (
	"context"
	"testing"
	"time"

	"github.com/agenium/postgate/internal/model"
)

func TestMemStoreCountsPerPlatformKindDay(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.IncrementCounter(ctx, model.PlatformX, model.KindPost); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.IncrementCounter(ctx, model.PlatformX, model.KindReply); err != nil {
		t.Fatal(err)
	}

	n, err := s.GetTodayCount(ctx, model.PlatformX, model.KindPost)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 posts, got %d", n)
	}
	n, _ = s.GetTodayCount(ctx, model.PlatformX, model.KindReply)
	if n != 1 {
		t.Errorf("expected 1 reply, got %d", n)
	}
	n, _ = s.GetTodayCount(ctx, model.PlatformReddit, model.KindPost)
	if n != 0 {
		t.Errorf("other platforms must start at zero, got %d", n)
	}
}

func TestMemStoreCounterResetsAtUTCMidnight(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC)
	s.Now = func() time.Time { return base }

	if err := s.IncrementCounter(ctx, model.PlatformX, model.KindPost); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.GetTodayCount(ctx, model.PlatformX, model.KindPost); n != 1 {
		t.Fatalf("expected 1 before midnight, got %d", n)
	}

	s.Now = func() time.Time { return base.Add(time.Hour) } // 00:30 next day
	if n, _ := s.GetTodayCount(ctx, model.PlatformX, model.KindPost); n != 0 {
		t.Errorf("counter must reset on the UTC day boundary, got %d", n)
	}
}

func TestMemStoreDedupeWindow(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return base }

	const fp = "abc123"
	dup, err := s.IsDuplicate(ctx, fp, 14)
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Error("unseen fingerprint must not be a duplicate")
	}

	if err := s.AddFingerprint(ctx, fp, model.PlatformX); err != nil {
		t.Fatal(err)
	}

	s.Now = func() time.Time { return base.AddDate(0, 0, 13) }
	if dup, _ := s.IsDuplicate(ctx, fp, 14); !dup {
		t.Error("fingerprint inside the window must be a duplicate")
	}

	s.Now = func() time.Time { return base.AddDate(0, 0, 15) }
	if dup, _ := s.IsDuplicate(ctx, fp, 14); dup {
		t.Error("fingerprint outside the window must not be a duplicate")
	}
}

func TestMemStoreFirstSeenIsStable(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return base }

	const fp = "abc123"
	if err := s.AddFingerprint(ctx, fp, model.PlatformX); err != nil {
		t.Fatal(err)
	}

	// re-adding later must not refresh first_seen and extend the window
	s.Now = func() time.Time { return base.AddDate(0, 0, 10) }
	if err := s.AddFingerprint(ctx, fp, model.PlatformX); err != nil {
		t.Fatal(err)
	}
	s.Now = func() time.Time { return base.AddDate(0, 0, 15) }
	if dup, _ := s.IsDuplicate(ctx, fp, 14); dup {
		t.Error("first_seen must be set once, not refreshed on re-add")
	}
}

func TestMemStoreActionLog(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	action := &model.CandidateAction{Platform: model.PlatformX, Kind: model.KindPost, Text: "hello"}
	decision := &model.Decision{
		Allow:       false,
		ReasonCodes: []model.ReasonCode{model.ReasonBrandMissing},
		Fingerprint: "fp1",
	}
	if err := s.LogAction(ctx, action, decision, "hello"); err != nil {
		t.Fatal(err)
	}

	got := s.Actions()
	if len(got) != 1 {
		t.Fatalf("expected 1 logged action, got %d", len(got))
	}
	row := got[0]
	if row.Platform != model.PlatformX || row.Kind != model.KindPost {
		t.Errorf("unexpected row %+v", row)
	}
	if row.Allow || len(row.ReasonCodes) != 1 || row.ReasonCodes[0] != "BRAND_MISSING" {
		t.Errorf("unexpected decision fields %+v", row)
	}
}

func TestPreviewTruncates(t *testing.T) {
	short := "fits"
	if Preview(short) != short {
		t.Errorf("short text must pass through unchanged")
	}

	long := ""
	for len(long) < 300 {
		long += "x"
	}
	got := Preview(long)
	if len(got) != 123 {
		t.Errorf("expected 120 chars + ellipsis, got len %d", len(got))
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("truncated preview must end with ellipsis: %q", got[len(got)-10:])
	}
}
