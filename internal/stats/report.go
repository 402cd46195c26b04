package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/store"
)

// recentRunsShown caps the "Recent Runs" table.
const recentRunsShown = 10

// Report is the history selected by a StatsConfig, ready to render.
type Report struct {
	// Runs are the selected runs, oldest first.
	Runs []model.SessionAggregate
	// WindowIDs are the runs inside the curve window.
	WindowIDs []int64
	// Chars aggregates every selected run; WindowChars only the window.
	Chars       []model.CharAggregate
	WindowChars []model.CharAggregate
}

// BuildReport loads runs and per-character aggregates for cfg.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load runs: %w", err)
	}
	runs = lastN(runs, cfg.Last)

	r := Report{Runs: runs, WindowIDs: runIDs(lastN(runs, cfg.CurveWindow))}
	if r.Chars, err = st.ListCharAggregatesForSessions(ctx, runIDs(runs)); err != nil {
		return Report{}, fmt.Errorf("failed to load char stats: %w", err)
	}
	if r.WindowChars, err = st.ListCharAggregatesForSessions(ctx, r.WindowIDs); err != nil {
		return Report{}, fmt.Errorf("failed to load window char stats: %w", err)
	}
	if cfg.Top > 0 {
		keep := TopCharsByFrequency(r.Chars, cfg.Top)
		r.Chars = FilterChars(r.Chars, keep)
		r.WindowChars = FilterChars(r.WindowChars, keep)
	}
	return r, nil
}

// Render writes the overview followed by the per-character table of the
// curve window.
func (r Report) Render(w io.Writer, cfg model.StatsConfig, width int, now time.Time) error {
	if err := r.RenderOverview(w, cfg, width, recentRunsShown, now); err != nil {
		return err
	}
	if len(r.Runs) == 0 {
		return nil
	}
	return RenderCharTable(w, r.WindowChars)
}

// RenderOverview writes the summary, learning curves and up to runsShown
// recent runs.
func (r Report) RenderOverview(w io.Writer, cfg model.StatsConfig, width, runsShown int, now time.Time) error {
	if err := RenderSummary(w, r.Runs); err != nil {
		return err
	}
	if len(r.Runs) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Runs, cfg.CurveWindow, width); err != nil {
		return err
	}
	return RenderRuns(w, r.Runs, runsShown, now)
}

// lastN keeps the n newest runs; n <= 0 keeps all.
func lastN(runs []model.SessionAggregate, n int) []model.SessionAggregate {
	if n <= 0 || len(runs) <= n {
		return runs
	}
	return runs[len(runs)-n:]
}

func runIDs(runs []model.SessionAggregate) []int64 {
	ids := make([]int64, len(runs))
	for i, run := range runs {
		ids[i] = run.SessionID
	}
	return ids
}
