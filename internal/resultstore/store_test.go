package resultstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/emprendia/viability/internal/costreview"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "results.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(businessID, moduleID int64, summary string) CompleteAnalysisResult {
	return CompleteAnalysisResult{
		BusinessID: businessID,
		ModuleID:   moduleID,
		SessionID:  "sess-1",
		Summary:    summary,
		SavedState: "COMPLETE",
		AnalyzedCosts: []costreview.AnalyzedCost{
			{CostName: "rent", ReceivedValue: 500, EstimatedRange: "400-900", Evaluation: costreview.EvaluationWithinRange, Comment: "within local range"},
			{CostName: "software", ReceivedValue: 300, EstimatedRange: "30-120", Evaluation: costreview.EvaluationAboveRange, Comment: "well above typical spend"},
		},
		DetectedRisks: []costreview.DetectedRisk{
			{Risk: "thin margin buffer", DirectCause: "software overspend", PotentialImpact: "negative cash months"},
		},
		ActionPlan: []costreview.ActionPlanItem{
			{Title: "Renegotiate software", Description: "Audit subscriptions and cancel unused seats.", Priority: costreview.PriorityHigh},
		},
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleResult(10, 3, "first save")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get(ctx, 10, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Summary != "first save" || got.SessionID != "sess-1" || got.SavedState != "COMPLETE" {
		t.Fatalf("header mismatch: %+v", got)
	}
	if len(got.AnalyzedCosts) != 2 || got.AnalyzedCosts[1].CostName != "software" {
		t.Fatalf("analyzed costs mismatch: %+v", got.AnalyzedCosts)
	}
	if got.AnalyzedCosts[1].Evaluation != costreview.EvaluationAboveRange {
		t.Fatalf("evaluation = %q", got.AnalyzedCosts[1].Evaluation)
	}
	if len(got.DetectedRisks) != 1 || got.DetectedRisks[0].Risk != "thin margin buffer" {
		t.Fatalf("risks mismatch: %+v", got.DetectedRisks)
	}
	if len(got.ActionPlan) != 1 || got.ActionPlan[0].Priority != costreview.PriorityHigh {
		t.Fatalf("plan mismatch: %+v", got.ActionPlan)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("updated_at must be set on save")
	}
}

func TestSaveTwiceKeepsOneRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleResult(10, 3, "first save")); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := sampleResult(10, 3, "second save")
	second.AnalyzedCosts = second.AnalyzedCosts[:1]
	second.ActionPlan = nil
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM complete_results WHERE business_id = 10 AND module_id = 3`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count = %d, want 1", count)
	}

	got, err := s.Get(ctx, 10, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Summary != "second save" {
		t.Fatalf("summary = %q, second save must win", got.Summary)
	}
	if len(got.AnalyzedCosts) != 1 {
		t.Fatalf("stale child rows survived: %+v", got.AnalyzedCosts)
	}
	if len(got.ActionPlan) != 0 {
		t.Fatalf("stale plan rows survived: %+v", got.ActionPlan)
	}
}

func TestModulesAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleResult(10, 3, "module three")); err != nil {
		t.Fatalf("save m3: %v", err)
	}
	if err := s.Save(ctx, sampleResult(10, 4, "module four")); err != nil {
		t.Fatalf("save m4: %v", err)
	}

	a, err := s.Get(ctx, 10, 3)
	if err != nil {
		t.Fatalf("get m3: %v", err)
	}
	b, err := s.Get(ctx, 10, 4)
	if err != nil {
		t.Fatalf("get m4: %v", err)
	}
	if a.Summary == b.Summary {
		t.Fatal("modules must not share rows")
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), 99, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetOrCreateSessionIsStable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrCreateSession(ctx, 42)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.SessionID == "" {
		t.Fatal("session id must be assigned")
	}

	second, err := s.GetOrCreateSession(ctx, 42)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("session id changed: %q vs %q", first.SessionID, second.SessionID)
	}

	other, err := s.GetOrCreateSession(ctx, 43)
	if err != nil {
		t.Fatalf("other business: %v", err)
	}
	if other.SessionID == first.SessionID {
		t.Fatal("different businesses must get different sessions")
	}
}

func TestConcurrentSavesConverge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res := sampleResult(7, 2, "concurrent")
			res.SessionID = "sess-concurrent"
			if err := s.Save(ctx, res); err != nil {
				t.Errorf("save %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM complete_results WHERE business_id = 7 AND module_id = 2`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count = %d after concurrent saves, want 1", count)
	}
}

func TestConcurrentSessionCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids := make([]string, 8)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sess, err := s.GetOrCreateSession(ctx, 55)
			if err != nil {
				t.Errorf("session %d: %v", n, err)
				return
			}
			ids[n] = sess.SessionID
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[0] {
			t.Fatalf("session ids diverged: %v", ids)
		}
	}
}
