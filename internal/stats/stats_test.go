package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/retype/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	wpm, cpm, acc := SessionMetrics(100, 25, 60000)
	if math.Abs(wpm-20) > 1e-9 || math.Abs(cpm-100) > 1e-9 {
		t.Fatalf("unexpected speed: wpm=%v cpm=%v", wpm, cpm)
	}
	if math.Abs(acc-0.8) > 1e-9 {
		t.Fatalf("unexpected accuracy: %v", acc)
	}
	if wpm, cpm, acc := SessionMetrics(10, 0, 0); wpm != 0 || cpm != 0 || acc != 0 {
		t.Fatalf("zero duration should yield zeros")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestResample(t *testing.T) {
	down := Resample([]float64{1, 3, 5, 7}, 2)
	if len(down) != 2 || down[0] != 2 || down[1] != 6 {
		t.Fatalf("unexpected downsample: %v", down)
	}
	up := Resample([]float64{1, 2}, 4)
	if len(up) != 4 || up[0] != 1 || up[1] != 1 || up[2] != 2 || up[3] != 2 {
		t.Fatalf("unexpected upsample: %v", up)
	}
	if Resample(nil, 3) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestSparkline(t *testing.T) {
	line := Sparkline([]float64{0, 9})
	if line != " @" {
		t.Fatalf("unexpected sparkline: %q", line)
	}
	flat := Sparkline([]float64{3, 3, 3})
	if len(flat) != 3 || strings.Trim(flat, "=") != "" {
		t.Fatalf("unexpected flat sparkline: %q", flat)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No runs found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderCharTableSortsByAccuracy(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.CharAggregate{
		{Char: "a", Correct: 9, Incorrect: 1},
		{Char: " ", Correct: 1, Incorrect: 1},
	}
	if err := RenderCharTable(&buf, aggs); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 || !strings.HasPrefix(lines[2], "<space>") {
		t.Fatalf("expected weakest char first:\n%s", buf.String())
	}
}
