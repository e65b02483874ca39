package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/agenium/postgate/internal/model"
)

func sampleDecision(allow bool, fp string) *model.Decision {
	codes := []model.ReasonCode{model.ReasonAllowed}
	if !allow {
		codes = []model.ReasonCode{model.ReasonSecretLeaked}
	}
	return &model.Decision{
		Allow:        allow,
		ReasonCodes:  codes,
		RiskScore:    10,
		RedactedText: "sample text",
		Fingerprint:  fp,
	}
}

func sampleAction() *model.CandidateAction {
	return &model.CandidateAction{Platform: model.PlatformX, Kind: model.KindPost, Text: "sample text"}
}

func readLines(t *testing.T, path string) [][]byte {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines [][]byte
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	return lines
}

func TestRecordChainsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log, err := Open(path, "sha256:policy")
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	ctx := context.Background()
	if err := log.Record(ctx, sampleAction(), sampleDecision(true, "fp1")); err != nil {
		t.Fatal(err)
	}
	if err := log.Record(ctx, sampleAction(), sampleDecision(false, "fp2")); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first, second Entry
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatal(err)
	}

	if first.PrevHash != GenesisHash {
		t.Errorf("first entry must chain to genesis, got %s", first.PrevHash)
	}
	if second.PrevHash != HashLine(lines[0]) {
		t.Errorf("second entry must chain to the first line's hash")
	}
	if first.PolicyHash != "sha256:policy" {
		t.Errorf("policy hash not stamped: %s", first.PolicyHash)
	}
	if first.Action.Fingerprint != "fp1" || second.Action.Fingerprint != "fp2" {
		t.Errorf("fingerprints not recorded: %s %s", first.Action.Fingerprint, second.Action.Fingerprint)
	}
}

func TestReopenContinuesChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	ctx := context.Background()

	log, err := Open(path, "sha256:policy")
	if err != nil {
		t.Fatal(err)
	}
	if err := log.Record(ctx, sampleAction(), sampleDecision(true, "fp1")); err != nil {
		t.Fatal(err)
	}
	if err := log.Close(); err != nil {
		t.Fatal(err)
	}

	log, err = Open(path, "sha256:policy")
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()
	if err := log.Record(ctx, sampleAction(), sampleDecision(true, "fp2")); err != nil {
		t.Fatal(err)
	}

	result := Verify(path)
	if !result.Valid {
		t.Fatalf("chain must survive reopen: %s (line %d)", result.Error, result.ErrorLine)
	}
	if result.Lines != 2 {
		t.Errorf("expected 2 verified lines, got %d", result.Lines)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	ctx := context.Background()

	log, err := Open(path, "sha256:policy")
	if err != nil {
		t.Fatal(err)
	}
	for _, fp := range []string{"fp1", "fp2", "fp3"} {
		if err := log.Record(ctx, sampleAction(), sampleDecision(true, fp)); err != nil {
			t.Fatal(err)
		}
	}
	log.Close()

	if result := Verify(path); !result.Valid || result.Lines != 3 {
		t.Fatalf("untampered log must verify: %+v", result)
	}

	// flip the allow bit on the middle entry
	lines := readLines(t, path)
	var entry Entry
	if err := json.Unmarshal(lines[1], &entry); err != nil {
		t.Fatal(err)
	}
	entry.Allow = false
	forged, err := json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}
	out := append(append(append([]byte{}, lines[0]...), '\n'), forged...)
	out = append(append(out, '\n'), lines[2]...)
	out = append(out, '\n')
	if err := os.WriteFile(path, out, 0o600); err != nil {
		t.Fatal(err)
	}

	result := Verify(path)
	if result.Valid {
		t.Fatal("tampered log must not verify")
	}
	if result.ErrorLine != 3 {
		t.Errorf("mismatch surfaces on the entry after the forgery, got line %d", result.ErrorLine)
	}
}

func TestVerifyRejectsWrongGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	entry := Entry{PrevHash: "sha256:not-genesis"}
	line, err := json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, append(line, '\n'), 0o600); err != nil {
		t.Fatal(err)
	}

	result := Verify(path)
	if result.Valid || result.ErrorLine != 1 {
		t.Errorf("first entry must reference genesis: %+v", result)
	}
}

func TestVerifyEmptyLogIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	result := Verify(path)
	if !result.Valid || result.Lines != 0 {
		t.Errorf("empty log is trivially valid: %+v", result)
	}
}
