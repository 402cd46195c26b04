package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/retype/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "retype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertRun(t *testing.T, st *Store, source string, ended time.Time, correct, incorrect int, chars []model.CharStats) int64 {
	t.Helper()
	stats := model.SessionStats{
		RunID:      source + "@" + ended.Format(time.RFC3339),
		StartedAt:  ended.Add(-time.Minute),
		EndedAt:    ended,
		Source:     source,
		Lines:      1,
		CharsTyped: correct + incorrect,
		Errors:     incorrect,
		Correct:    correct,
		Incorrect:  incorrect,
		DurationMs: time.Minute.Milliseconds(),
	}
	id, err := st.InsertSession(context.Background(), stats, chars)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return id
}

func TestListSessionsFilters(t *testing.T) {
	st := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	insertRun(t, st, "a.go", base, 10, 1, nil)
	second := insertRun(t, st, "b.go", base.Add(time.Hour), 20, 2, nil)
	insertRun(t, st, "a.go", base.Add(2*time.Hour), 30, 3, nil)

	ctx := context.Background()
	all, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(all) != 3 || all[0].Correct != 10 || all[2].Correct != 30 {
		t.Fatalf("unexpected sessions: %+v", all)
	}

	bySource, err := st.ListSessions(ctx, model.StatsConfig{Source: "b.go"})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(bySource) != 1 || bySource[0].SessionID != second || bySource[0].Errors != 2 {
		t.Fatalf("unexpected filtered sessions: %+v", bySource)
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(recent) != 1 || !recent[0].EndedAt.Equal(base.Add(2*time.Hour)) {
		t.Fatalf("unexpected since sessions: %+v", recent)
	}
}

func TestCharAggregates(t *testing.T) {
	st := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := insertRun(t, st, "a.go", base, 3, 1, []model.CharStats{
		{Char: "x", Correct: 2, Incorrect: 1, LatencySumMs: 300, LatencyCount: 3},
	})
	second := insertRun(t, st, "a.go", base.Add(time.Minute), 3, 0, []model.CharStats{
		{Char: "x", Correct: 3, Incorrect: 0, LatencySumMs: 150, LatencyCount: 3},
		{Char: "y", Correct: 1, Incorrect: 0},
	})

	ctx := context.Background()
	aggs, err := st.ListCharAggregatesForSessions(ctx, []int64{first, second})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	found := false
	for _, agg := range aggs {
		if agg.Char == "x" {
			found = true
			if agg.Correct != 5 || agg.Incorrect != 1 || agg.LatencySumMs != 450 || agg.LatencyCount != 6 {
				t.Fatalf("unexpected aggregate: %+v", agg)
			}
		}
	}
	if !found {
		t.Fatalf("missing aggregate for x: %+v", aggs)
	}

	weak, err := st.GetWeakChars(ctx, 1, "a.go")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	if len(weak) != 2 {
		t.Fatalf("expected chars from latest run only, got %+v", weak)
	}
	if none, err := st.GetWeakChars(ctx, 0, ""); err != nil || none != nil {
		t.Fatalf("expected empty result for zero window")
	}
}

func TestTotalsFor(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	empty, err := st.TotalsFor(ctx, "")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if empty.Runs != 0 {
		t.Fatalf("expected no runs, got %+v", empty)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	insertRun(t, st, "a.go", base, 10, 1, nil)
	insertRun(t, st, "b.go", base, 20, 2, nil)
	all, err := st.TotalsFor(ctx, "")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if all.Runs != 2 || all.Correct != 30 || all.Errors != 3 || all.DurationMs != 2*time.Minute.Milliseconds() {
		t.Fatalf("unexpected totals: %+v", all)
	}
	one, err := st.TotalsFor(ctx, "b.go")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if one.Runs != 1 || one.Correct != 20 {
		t.Fatalf("unexpected source totals: %+v", one)
	}
}

func TestOpenRecordsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	version, err := st.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != len(migrations) {
		t.Fatalf("expected version %d, got %d", len(migrations), version)
	}
}

func TestInsertSessionRejectsDuplicateRun(t *testing.T) {
	st := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	insertRun(t, st, "a.go", base, 1, 0, nil)
	dup := model.SessionStats{RunID: "a.go@" + base.Format(time.RFC3339), EndedAt: base, Source: "a.go"}
	chars := []model.CharStats{{Char: "x", Correct: 1}}
	if _, err := st.InsertSession(context.Background(), dup, chars); err == nil {
		t.Fatalf("expected duplicate run id to fail")
	}
	aggs, err := st.GetWeakChars(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	if len(aggs) != 0 {
		t.Fatalf("rolled back run left char stats: %v", aggs)
	}
}
