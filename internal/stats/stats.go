// Package stats contains live typing counters and history reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/retype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes WPM, CPM, and accuracy for a run.
func SessionMetrics(correct, incorrect int, durationMs int64) (wpm, cpm, accuracy float64) {
	if durationMs <= 0 {
		return 0, 0, 0
	}
	minutes := float64(durationMs) / 60000.0
	wpm = (float64(correct) / 5.0) / minutes
	cpm = float64(correct) / minutes
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	return wpm, cpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(min(i+1, window))
		out[i] = sum / den
	}
	return out
}

// Resample stretches or squeezes values to width points. Downsampling
// averages buckets, upsampling repeats values.
func Resample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[min(max(idx, 0), len(sparkChars)-1)])
	}
	return b.String()
}

// RenderSummary prints a summary of runs.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var totalWPM, totalCPM, totalAcc float64
	bestWPM := 0.0
	errorsTotal := 0
	for _, s := range sessions {
		wpm, cpm, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalWPM += wpm
		totalCPM += cpm
		totalAcc += acc
		bestWPM = math.Max(bestWPM, wpm)
		errorsTotal += s.Errors
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", len(sessions)),
		fmt.Sprintf("Avg WPM: %.2f", totalWPM/count),
		fmt.Sprintf("Best WPM: %.2f", bestWPM),
		fmt.Sprintf("Avg CPM: %.2f", totalCPM/count),
		fmt.Sprintf("Avg Accuracy: %.2f%%", (totalAcc/count)*100),
		fmt.Sprintf("Errors: %d", errorsTotal),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy sparklines, smoothed over window runs
// and fitted to width columns.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		wpm, _, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		wpms[i] = wpm
		accs[i] = acc * 100
	}
	const label = "Accuracy "
	plotWidth := min(max(width-len(label)-2, 1), len(sessions))
	rows := []struct {
		name   string
		values []float64
	}{
		{"WPM", MovingAverage(wpms, window)},
		{"Accuracy", MovingAverage(accs, window)},
	}
	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	for _, row := range rows {
		line := Sparkline(Resample(row.values, plotWidth))
		if _, err := fmt.Fprintf(w, "%-*s|%s|\n", len(label), row.name, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderRuns prints the most recent runs, newest first.
func RenderRuns(w io.Writer, sessions []model.SessionAggregate, limit int, now time.Time) error {
	if len(sessions) == 0 {
		return nil
	}
	if limit <= 0 || limit > len(sessions) {
		limit = len(sessions)
	}
	if _, err := fmt.Fprintln(w, "Recent Runs"); err != nil {
		return err
	}
	tbl := newTextTable(
		column{title: "When"},
		column{title: "Source"},
		column{title: "WPM", align: alignRight},
		column{title: "Accuracy", align: alignRight},
		column{title: "Errors", align: alignRight},
	)
	for i := len(sessions) - 1; i >= len(sessions)-limit; i-- {
		s := sessions[i]
		wpm, _, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		tbl.addRow(
			humanize.RelTime(s.EndedAt, now, "ago", "from now"),
			filepath.Base(s.Source),
			fmt.Sprintf("%.1f", wpm),
			fmt.Sprintf("%.2f%%", acc*100),
			fmt.Sprintf("%d", s.Errors),
		)
	}
	return tbl.writeTo(w)
}

// RenderCharTable prints per-character aggregates, lowest accuracy first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	sorted := SortWeakestFirst(aggs)

	if _, err := fmt.Fprintln(w, "Per-Character"); err != nil {
		return err
	}
	tbl := newTextTable(
		column{title: "Char"},
		column{title: "Accuracy", align: alignRight},
		column{title: "Avg Latency (ms)", align: alignRight},
		column{title: "Correct", align: alignRight},
		column{title: "Incorrect", align: alignRight},
	)
	for _, agg := range sorted {
		label := agg.Char
		if label == " " {
			label = "<space>"
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		tbl.addRow(
			label,
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		)
	}
	return tbl.writeTo(w)
}
