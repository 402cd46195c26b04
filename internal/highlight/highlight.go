// Package highlight grows and shrinks the good/bad windows as keystrokes
// arrive and mirrors them as per-line spans on a rendering surface.
package highlight

import (
	"fmt"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/tracker"
)

// Class is the verdict for a keystroke.
type Class uint8

const (
	// Correct keystrokes extend or shrink the good window.
	Correct Class = iota
	// Incorrect keystrokes extend or shrink the bad window.
	Incorrect
)

func (c Class) tag() tracker.Tag {
	if c == Incorrect {
		return tracker.Bad
	}
	return tracker.Good
}

// Buffer exposes the line geometry of the document being typed.
type Buffer interface {
	LineLength(line int) int
}

// Spans is the part of a rendering surface that stores colored spans.
type Spans interface {
	ExistingSpan(tag tracker.Tag, line int) (model.Range, bool)
	SetSpan(tag tracker.Tag, line, fromCol, toCol int)
	ClearSpan(tag tracker.Tag, line int)
}

// InconsistentSpanError reports a shrink on a line that has no recorded span.
type InconsistentSpanError struct {
	Tag  tracker.Tag
	Line int
}

func (e *InconsistentSpanError) Error() string {
	return fmt.Sprintf("no %s span recorded on line %d", e.Tag, e.Line)
}

// Updater applies keystroke verdicts to a tracker and a span surface.
type Updater struct {
	tracker *tracker.Tracker
	spans   Spans
	buf     Buffer
}

// New returns an updater over the given tracker, surface and document.
func New(t *tracker.Tracker, spans Spans, buf Buffer) *Updater {
	return &Updater{tracker: t, spans: spans, buf: buf}
}

// Reset attaches a new document and collapses both windows.
func (u *Updater) Reset(buf Buffer) {
	u.buf = buf
	u.tracker.Reset()
}

// Update moves the window selected by class so that its right border sits at
// (line, col), the caret position after the keystroke.
func (u *Updater) Update(class Class, line, col int) error {
	tag := class.tag()
	left, right := u.tracker.Get(tag)

	if class == Incorrect && !u.tracker.IsErrorOpen(line) {
		// A fresh error starts where correct typing stopped.
		_, goodRight := u.tracker.Get(tracker.Good)
		if goodRight.Col >= u.buf.LineLength(goodRight.Line) {
			goodRight = model.Coord{Line: goodRight.Line + 1, Col: 0}
			// Blank lines crossed with Enter hold nothing to mark.
			for goodRight.Line < line && u.buf.LineLength(goodRight.Line) == 0 {
				goodRight.Line++
			}
		}
		left, right = goodRight, goodRight
	}

	if line == left.Line && col < left.Col {
		return nil
	}

	if col > u.buf.LineLength(line) {
		line++
		col = 0
	}

	if col < right.Col || line < right.Line {
		if line < right.Line {
			return u.shrinkPreviousLine(tag, line, col)
		}
		if line == right.Line {
			u.shrinkTail(tag, left, right)
			return nil
		}
	}

	if line == right.Line {
		from := left.Col
		if left.Line != right.Line {
			from = 0
		}
		u.spans.SetSpan(tag, line, from, col)
	} else {
		u.spans.SetSpan(tag, line, 0, col)
	}
	u.tracker.Save(tag, left, model.Coord{Line: line, Col: col})
	return nil
}

// shrinkPreviousLine cuts the span on line back to col after the caret has
// moved up from the line holding the right border.
func (u *Updater) shrinkPreviousLine(tag tracker.Tag, line, col int) error {
	prev, ok := u.spans.ExistingSpan(tag, line)
	if !ok {
		return &InconsistentSpanError{Tag: tag, Line: line}
	}
	u.spans.SetSpan(tag, line, prev.Left.Col, col)
	u.tracker.Save(tag, model.Coord{Line: line, Col: prev.Left.Col}, model.Coord{Line: line, Col: col})
	return nil
}

// shrinkTail drops the last highlighted character on the right border's line.
func (u *Updater) shrinkTail(tag tracker.Tag, left, right model.Coord) {
	end := right.Col - 1
	if cur, ok := u.spans.ExistingSpan(tag, right.Line); ok {
		u.spans.SetSpan(tag, right.Line, cur.Left.Col, min(cur.Right.Col, end))
	}
	u.tracker.Save(tag, left, model.Coord{Line: right.Line, Col: end})
}
