package replay

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/stakeplan/internal/ledger"
)

// #region fixture-tests

// TestFixture_Regression replays the hand-checked scenarios. If a table or
// formula changes, this catches the drift.
func TestFixture_Regression(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "regression.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Cases) != 4 {
		t.Fatalf("expected 4 cases, got %d", len(f.Cases))
	}

	results, err := Replay(context.Background(), newEngine(t), f.Cases, 2)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for i, r := range results {
		if r.CaseID != f.Cases[i].ID {
			t.Errorf("case %d: expected id %s, got %s", i, f.Cases[i].ID, r.CaseID)
		}
		if !r.Eval.Passed {
			t.Errorf("case %s: eval failed: %s", r.CaseID, r.Eval.Reason)
		}
		for _, m := range r.Mismatches {
			t.Errorf("case %s: %s", r.CaseID, m)
		}
	}
}

func TestParseFixture_CaseIDs(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing id", `{"cases":[{"input":{}}]}`, "case 0: missing id"},
		{"duplicate id", `{"cases":[{"id":"a"},{"id":"a"}]}`, `case 1: duplicate id "a"`},
		{"bad json", `{"cases":`, "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixture([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseFixture_EmptyExpectation(t *testing.T) {
	f, err := ParseFixture([]byte(`{"description":"d","cases":[{"id":"only","input":{"facts":{"emotion_intensity":2}}}]}`))
	if err != nil {
		t.Fatalf("ParseFixture: %v", err)
	}
	results, err := Replay(context.Background(), newEngine(t), f.Cases, 1)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !results[0].Matched() {
		t.Errorf("a case without expectations should match, got %v / %s", results[0].Mismatches, results[0].Eval.Reason)
	}
}

// TestExportFixture_RoundTrip records runs in a ledger, exports them and
// replays the written fixture. Every exported case must reproduce its run.
func TestExportFixture_RoundTrip(t *testing.T) {
	store, err := ledger.NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	eng := newEngine(t)
	for _, raw := range scenarioInputs() {
		if _, err := store.RecordRun(eng.Run(raw), "replay"); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}
	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}

	f, err := ExportFixture("captured", runs)
	if err != nil {
		t.Fatalf("ExportFixture: %v", err)
	}
	if len(f.Cases) != len(runs) {
		t.Fatalf("expected %d cases, got %d", len(runs), len(f.Cases))
	}
	for i, c := range f.Cases {
		if c.ID != runs[i].ID {
			t.Errorf("case %d: expected run id %s, got %s", i, runs[i].ID, c.ID)
		}
	}

	path := filepath.Join(t.TempDir(), "captured.json")
	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if loaded.Description != "captured" {
		t.Errorf("expected description captured, got %q", loaded.Description)
	}

	results, err := Replay(context.Background(), eng, loaded.Cases, 4)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for _, r := range results {
		if !r.Matched() {
			t.Errorf("case %s diverged: %v %s", r.CaseID, r.Mismatches, r.Eval.Reason)
		}
	}
}

func TestMismatches(t *testing.T) {
	res := newEngine(t).Run(phoneInput())
	exp := ExpectationOf(res)
	if got := exp.Mismatches(res); len(got) != 0 {
		t.Fatalf("expected no mismatches against own result, got %v", got)
	}

	exp.RiskTier = "low"
	exp.StructureMode = "single_shot"
	exp.RequiredBlocks = exp.RequiredBlocks[1:]
	exp.BlockConstraints["evidence_reference_required"] = true
	got := exp.Mismatches(res)
	want := []string{
		"risk_tier: expected low, got high",
		"structure_mode: expected single_shot, got record_style",
		"required_blocks:",
		"block_constraints.evidence_reference_required: expected true, got false",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d mismatches, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !strings.HasPrefix(got[i], want[i]) {
			t.Errorf("mismatch %d: expected prefix %q, got %q", i, want[i], got[i])
		}
	}
}

// #endregion fixture-tests
