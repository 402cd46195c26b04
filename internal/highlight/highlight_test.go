package highlight

import (
	"errors"
	"testing"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/surface"
	"github.com/verte-zerg/retype/internal/tracker"
)

type lines []string

func (l lines) LineLength(line int) int {
	if line < 1 || line > len(l) {
		return 0
	}
	return len([]rune(l[line-1]))
}

func c(line, col int) model.Coord {
	return model.Coord{Line: line, Col: col}
}

func newUpdater(doc lines) (*Updater, *tracker.Tracker, *surface.Surface) {
	tr := tracker.New()
	sf := surface.New()
	return New(tr, sf, doc), tr, sf
}

func mustUpdate(t *testing.T, u *Updater, class Class, line, col int) {
	t.Helper()
	if err := u.Update(class, line, col); err != nil {
		t.Fatalf("update(%d,%d): %v", line, col, err)
	}
}

func expectSpan(t *testing.T, sf *surface.Surface, tag tracker.Tag, line, from, to int) {
	t.Helper()
	got, ok := sf.ExistingSpan(tag, line)
	if !ok {
		t.Fatalf("expected %s span on line %d", tag, line)
	}
	if got.Left.Col != from || got.Right.Col != to {
		t.Fatalf("expected %s span [%d,%d) on line %d, got [%d,%d)", tag, from, to, line, got.Left.Col, got.Right.Col)
	}
}

func TestMistypeThenBackspace(t *testing.T) {
	u, tr, sf := newUpdater(lines{"abc"})
	mustUpdate(t, u, Correct, 1, 1)
	mustUpdate(t, u, Correct, 1, 2)
	mustUpdate(t, u, Incorrect, 1, 3)

	if _, right := tr.Get(tracker.Good); right != c(1, 2) {
		t.Fatalf("expected good right (1,2), got %v", right)
	}
	left, right := tr.Get(tracker.Bad)
	if left != c(1, 2) || right != c(1, 3) {
		t.Fatalf("expected bad (1,2)-(1,3), got %v-%v", left, right)
	}
	expectSpan(t, sf, tracker.Good, 1, 0, 2)
	expectSpan(t, sf, tracker.Bad, 1, 2, 3)

	// Backspace over the wrong character.
	mustUpdate(t, u, Incorrect, 1, 2)
	left, right = tr.Get(tracker.Bad)
	if left != c(1, 2) || right != c(1, 2) {
		t.Fatalf("expected bad collapsed at (1,2), got %v-%v", left, right)
	}
	if _, ok := sf.ExistingSpan(tracker.Bad, 1); ok {
		t.Fatalf("expected bad span to be cleared")
	}
	if tr.IsErrorOpen(1) {
		t.Fatalf("expected no open error")
	}
}

func TestTypeAndBackspaceRoundTrip(t *testing.T) {
	const n = 5
	u, tr, sf := newUpdater(lines{"hello world"})
	startLeft, startRight := tr.Get(tracker.Good)
	for col := 1; col <= n; col++ {
		mustUpdate(t, u, Correct, 1, col)
	}
	expectSpan(t, sf, tracker.Good, 1, 0, n)
	for col := n - 1; col >= 0; col-- {
		mustUpdate(t, u, Correct, 1, col)
	}
	left, right := tr.Get(tracker.Good)
	if left != startLeft || right != startRight {
		t.Fatalf("expected good back at %v-%v, got %v-%v", startLeft, startRight, left, right)
	}
	if sf.SpanCount() != 0 {
		t.Fatalf("expected no residual spans, got %d", sf.SpanCount())
	}
}

func TestOutOfWindowIsNoop(t *testing.T) {
	u, tr, sf := newUpdater(lines{"abcdef"})
	tr.Save(tracker.Good, c(1, 3), c(1, 5))
	sf.SetSpan(tracker.Good, 1, 3, 5)

	mustUpdate(t, u, Correct, 1, 2)

	left, right := tr.Get(tracker.Good)
	if left != c(1, 3) || right != c(1, 5) {
		t.Fatalf("expected unchanged range, got %v-%v", left, right)
	}
	expectSpan(t, sf, tracker.Good, 1, 3, 5)
}

func TestFreshErrorAfterCompletedLineStartsOnNextLine(t *testing.T) {
	u, tr, sf := newUpdater(lines{"ab", "cd"})
	mustUpdate(t, u, Correct, 1, 1)
	mustUpdate(t, u, Correct, 1, 2)
	mustUpdate(t, u, Incorrect, 2, 1)

	left, right := tr.Get(tracker.Bad)
	if left != c(2, 0) || right != c(2, 1) {
		t.Fatalf("expected bad (2,0)-(2,1), got %v-%v", left, right)
	}
	expectSpan(t, sf, tracker.Bad, 2, 0, 1)
}

func TestFreshErrorSkipsBlankLines(t *testing.T) {
	u, tr, sf := newUpdater(lines{"ab", "", "", "cd"})
	mustUpdate(t, u, Correct, 1, 1)
	mustUpdate(t, u, Correct, 1, 2)
	mustUpdate(t, u, Incorrect, 4, 1)

	left, right := tr.Get(tracker.Bad)
	if left != c(4, 0) || right != c(4, 1) {
		t.Fatalf("expected bad (4,0)-(4,1), got %v-%v", left, right)
	}
	expectSpan(t, sf, tracker.Bad, 4, 0, 1)

	mustUpdate(t, u, Incorrect, 4, 0)
	left, right = tr.Get(tracker.Bad)
	if left != right {
		t.Fatalf("expected bad to collapse after backspace, got %v-%v", left, right)
	}
	if sf.SpanCount() != 1 {
		t.Fatalf("expected only the good span on line 1, got %d spans", sf.SpanCount())
	}
}

func TestGoodExtendsAcrossLines(t *testing.T) {
	u, tr, sf := newUpdater(lines{"ab", "cde"})
	mustUpdate(t, u, Correct, 1, 1)
	mustUpdate(t, u, Correct, 1, 2)
	mustUpdate(t, u, Correct, 2, 1)
	mustUpdate(t, u, Correct, 2, 2)

	left, right := tr.Get(tracker.Good)
	if left != c(1, 0) || right != c(2, 2) {
		t.Fatalf("expected good (1,0)-(2,2), got %v-%v", left, right)
	}
	expectSpan(t, sf, tracker.Good, 1, 0, 2)
	expectSpan(t, sf, tracker.Good, 2, 0, 2)
}

func TestErrorCarriesOverLineBreak(t *testing.T) {
	u, tr, sf := newUpdater(lines{"ab", "cd"})
	mustUpdate(t, u, Correct, 1, 1)
	mustUpdate(t, u, Incorrect, 1, 2)
	mustUpdate(t, u, Incorrect, 2, 1)

	left, right := tr.Get(tracker.Bad)
	if left != c(1, 1) || right != c(2, 1) {
		t.Fatalf("expected bad (1,1)-(2,1), got %v-%v", left, right)
	}
	expectSpan(t, sf, tracker.Bad, 1, 1, 2)
	expectSpan(t, sf, tracker.Bad, 2, 0, 1)

	// Backspace on line 2, then back onto line 1.
	mustUpdate(t, u, Incorrect, 2, 0)
	left, right = tr.Get(tracker.Bad)
	if left != c(1, 1) || right != c(2, 0) {
		t.Fatalf("expected anchor kept at (1,1), got %v-%v", left, right)
	}
	mustUpdate(t, u, Incorrect, 1, 1)
	left, right = tr.Get(tracker.Bad)
	if left != c(1, 1) || right != c(1, 1) {
		t.Fatalf("expected bad collapsed at (1,1), got %v-%v", left, right)
	}
	if _, ok := sf.ExistingSpan(tracker.Bad, 1); ok {
		t.Fatalf("expected line 1 bad span cleared")
	}
}

func TestShrinkPreviousLineWithoutSpan(t *testing.T) {
	u, tr, sf := newUpdater(lines{"ab", "cd"})
	tr.Save(tracker.Good, c(1, 0), c(2, 1))
	sf.SetSpan(tracker.Good, 2, 0, 1)

	err := u.Update(Correct, 1, 1)
	var spanErr *InconsistentSpanError
	if !errors.As(err, &spanErr) {
		t.Fatalf("expected InconsistentSpanError, got %v", err)
	}
	if spanErr.Line != 1 || spanErr.Tag != tracker.Good {
		t.Fatalf("unexpected error details: %+v", spanErr)
	}
	left, right := tr.Get(tracker.Good)
	if left != c(1, 0) || right != c(2, 1) {
		t.Fatalf("state mutated on error: %v-%v", left, right)
	}
	expectSpan(t, sf, tracker.Good, 2, 0, 1)
}

func TestOverflowWrapsToNextLine(t *testing.T) {
	u, tr, _ := newUpdater(lines{"abc", "def"})
	mustUpdate(t, u, Correct, 1, 3)
	mustUpdate(t, u, Correct, 1, 4)
	if _, right := tr.Get(tracker.Good); right != c(2, 0) {
		t.Fatalf("expected right border at (2,0), got %v", right)
	}
}

func TestResetCollapsesRanges(t *testing.T) {
	u, tr, _ := newUpdater(lines{"abc"})
	mustUpdate(t, u, Correct, 1, 2)
	u.Reset(lines{"xyz", "w"})
	left, right := tr.Get(tracker.Good)
	if left != model.Origin || right != model.Origin {
		t.Fatalf("expected collapsed good range, got %v-%v", left, right)
	}
}
