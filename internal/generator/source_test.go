package generator

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/store"
)

func TestSourceWrapsToLineWidth(t *testing.T) {
	cfg := model.Config{Words: 30, LineWidth: 20}
	src := NewSource(NewWithSeed(5), cfg, []string{"alpha", "beta", "gamma"}, nil)
	doc, err := src.Next(false)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if doc.Source() != GeneratedSourceName {
		t.Fatalf("unexpected source %q", doc.Source())
	}
	if doc.LineCount() < 2 {
		t.Fatalf("expected wrapped lines, got %d", doc.LineCount())
	}
	words := 0
	for line := 1; line <= doc.LineCount(); line++ {
		if doc.LineLength(line) > 20 {
			t.Fatalf("line %d too wide: %q", line, doc.Line(line))
		}
		words += len(strings.Fields(doc.Line(line)))
	}
	if words != 30 {
		t.Fatalf("expected 30 words, got %d", words)
	}
}

func TestSourceFocusesWeakChars(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "retype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	run := model.SessionStats{
		RunID:      "r",
		StartedAt:  time.Unix(0, 0),
		EndedAt:    time.Unix(60, 0),
		Source:     GeneratedSourceName,
		DurationMs: 60000,
	}
	chars := []model.CharStats{
		{Char: "q", Correct: 1, Incorrect: 9},
		{Char: "a", Correct: 10, Incorrect: 0},
	}
	if _, err := st.InsertSession(context.Background(), run, chars); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cfg := model.Config{Words: 100, LineWidth: 80, FocusWeak: true, WeakTop: 1, WeakFactor: 20, WeakWindow: 5}
	src := NewSource(NewWithSeed(9), cfg, []string{"aaa", "qqq"}, st)
	doc, err := src.Next(false)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	q := 0
	for line := 1; line <= doc.LineCount(); line++ {
		q += strings.Count(doc.Line(line), "qqq")
	}
	if q < 70 {
		t.Fatalf("expected weak words to dominate, got %d of 100", q)
	}
}
