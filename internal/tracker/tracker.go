// Package tracker stores the two highlight windows of a typing run.
package tracker

import (
	"fmt"

	"github.com/verte-zerg/retype/internal/model"
)

// Tag names one of the two tracked ranges.
type Tag uint8

const (
	// Good is the window of correctly typed text.
	Good Tag = iota
	// Bad is the window of text typed since the first uncorrected mistake.
	Bad
)

func (t Tag) String() string {
	switch t {
	case Good:
		return "good"
	case Bad:
		return "bad"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Tracker owns the good and bad ranges.
type Tracker struct {
	good model.Range
	bad  model.Range
}

// New returns a tracker with both ranges collapsed at the origin.
func New() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset collapses both ranges to the origin.
func (t *Tracker) Reset() {
	t.good = model.Range{Left: model.Origin, Right: model.Origin}
	t.bad = model.Range{Left: model.Origin, Right: model.Origin}
}

// Get returns the borders of the named range. The values are copies.
func (t *Tracker) Get(tag Tag) (left, right model.Coord) {
	r := t.Range(tag)
	return r.Left, r.Right
}

// Range returns a copy of the named range.
func (t *Tracker) Range(tag Tag) model.Range {
	if tag == Bad {
		return t.bad
	}
	return t.good
}

// Save stores new borders for the named range.
//
// The good range is overwritten. For the bad range the right border is always
// overwritten, but the left border moves only while the stored range is on a
// single line or when the new right border returns to the anchor line. A bad
// range that has grown across lines keeps its anchor.
func (t *Tracker) Save(tag Tag, left, right model.Coord) {
	if tag == Good {
		t.good = model.Range{Left: left, Right: right}
		return
	}
	if !t.bad.MultiLine() || t.bad.Left.Line == right.Line {
		t.bad.Left = left
	}
	t.bad.Right = right
}

// IsErrorOpen reports whether an uncorrected error affects line.
//
// A collapsed bad range is never open. A non-empty one is open on every line
// up to its right border, and a single-line one also on the line that
// follows it, where typing continues after a line break.
func (t *Tracker) IsErrorOpen(line int) bool {
	if t.bad.Collapsed() {
		return false
	}
	last := t.bad.Right.Line
	if next := t.bad.Left.Line + 1; next > last {
		last = next
	}
	return line <= last
}

// ErrorPending reports whether an uncorrected error lies between the bad
// range's anchor and at. Unlike IsErrorOpen it does not depend on which line
// is queried, so blank lines typed through with Enter keep the error alive.
func (t *Tracker) ErrorPending(at model.Coord) bool {
	return !t.bad.Collapsed() && !at.Before(t.bad.Left)
}
