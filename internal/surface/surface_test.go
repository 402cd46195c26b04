package surface

import (
	"testing"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/tracker"
)

func TestSetSpanReplacesPerLine(t *testing.T) {
	s := New()
	s.SetSpan(tracker.Good, 2, 0, 3)
	s.SetSpan(tracker.Good, 2, 1, 5)
	s.SetSpan(tracker.Bad, 2, 5, 6)

	got, ok := s.ExistingSpan(tracker.Good, 2)
	if !ok {
		t.Fatalf("expected good span on line 2")
	}
	want := model.Range{Left: model.Coord{Line: 2, Col: 1}, Right: model.Coord{Line: 2, Col: 5}}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if s.SpanCount() != 2 {
		t.Fatalf("expected 2 spans, got %d", s.SpanCount())
	}
}

func TestEmptySpanClears(t *testing.T) {
	s := New()
	s.SetSpan(tracker.Bad, 1, 2, 3)
	s.SetSpan(tracker.Bad, 1, 2, 2)
	if _, ok := s.ExistingSpan(tracker.Bad, 1); ok {
		t.Fatalf("expected span to be cleared")
	}
}

func TestTagAtPrefersBad(t *testing.T) {
	s := New()
	s.SetSpan(tracker.Good, 1, 0, 4)
	s.SetSpan(tracker.Bad, 1, 3, 5)
	if tag, ok := s.TagAt(1, 3); !ok || tag != tracker.Bad {
		t.Fatalf("expected bad at column 3, got %v %v", tag, ok)
	}
	if tag, ok := s.TagAt(1, 0); !ok || tag != tracker.Good {
		t.Fatalf("expected good at column 0, got %v %v", tag, ok)
	}
	if _, ok := s.TagAt(1, 5); ok {
		t.Fatalf("expected nothing at column 5")
	}
}

func TestScrollByClampsAtZero(t *testing.T) {
	s := New()
	s.ScrollBy(5, 3)
	s.ScrollBy(-8, -1)
	h, v := s.Offsets()
	if h != 0 || v != 2 {
		t.Fatalf("unexpected offsets %d,%d", h, v)
	}
}

func TestClearKeepsSize(t *testing.T) {
	s := New()
	s.Resize(40, 10)
	s.SetSpan(tracker.Good, 1, 0, 2)
	s.ScrollBy(4, 4)
	s.Clear()
	if s.SpanCount() != 0 {
		t.Fatalf("expected no spans")
	}
	if h, v := s.Offsets(); h != 0 || v != 0 {
		t.Fatalf("expected zero offsets, got %d,%d", h, v)
	}
	if s.VisibleColumns() != 40 || s.VisibleRows() != 10 {
		t.Fatalf("size lost on clear")
	}
}
