// Package scroll computes the scroll shifts that keep the caret inside a
// comfortable margin of the visible window.
package scroll

import (
	"errors"

	"github.com/rs/zerolog/log"
)

// DefaultTrigger is the default trigger threshold, in percent of the
// visible span.
const DefaultTrigger = 30

// MaxTrigger is the largest accepted trigger threshold.
const MaxTrigger = 50

// ErrDegenerateGeometry is returned internally when a zero-size viewport or
// an empty line makes a shift undefined. Callers only see a zero shift.
var ErrDegenerateGeometry = errors.New("degenerate viewport geometry")

// Event is the kind of caret movement that preceded a shift computation.
type Event uint8

const (
	// Forward is a caret move within the line after a typed character.
	Forward Event = iota
	// Backspace is a backspace pressed with the caret at the given position.
	Backspace
	// NewLine is a move to the start of the next line.
	NewLine
)

// Document exposes the line geometry the scroller needs.
type Document interface {
	LineLength(line int) int
	LineCount() int
}

// Screen exposes the visible size in character cells.
type Screen interface {
	VisibleColumns() int
	VisibleRows() int
}

// Shift is a scroll delta in character cells.
type Shift struct {
	DX int
	DY int
}

// Thresholds are the viewport-relative trigger positions.
type Thresholds struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// ComputeThresholds derives trigger positions for a visible span and a
// trigger percentage.
func ComputeThresholds(cols, rows, trigger int) Thresholds {
	return Thresholds{
		Left:   ceilPercent(cols, trigger),
		Right:  floorPercent(cols, 100-trigger),
		Top:    ceilPercent(rows, trigger),
		Bottom: floorPercent(rows, 100-trigger),
	}
}

func floorPercent(n, pct int) int {
	return n * pct / 100
}

func ceilPercent(n, pct int) int {
	return (n*pct + 99) / 100
}

// Scroller owns the viewport scroll offsets.
type Scroller struct {
	screen  Screen
	doc     Document
	trigger int

	hOffset int
	vOffset int
}

// New returns a scroller for the given screen and document. The trigger is
// clamped to [0, MaxTrigger].
func New(screen Screen, doc Document, trigger int) *Scroller {
	return &Scroller{
		screen:  screen,
		doc:     doc,
		trigger: min(max(trigger, 0), MaxTrigger),
	}
}

// Reset attaches a new document and scrolls back to the top-left corner.
func (s *Scroller) Reset(doc Document) {
	s.doc = doc
	s.hOffset = 0
	s.vOffset = 0
}

// Offsets returns the horizontal and vertical scroll offsets.
func (s *Scroller) Offsets() (h, v int) {
	return s.hOffset, s.vOffset
}

// Thresholds returns the trigger positions for the current screen size.
func (s *Scroller) Thresholds() Thresholds {
	return ComputeThresholds(s.screen.VisibleColumns(), s.screen.VisibleRows(), s.trigger)
}

// ComputeShift returns the delta to apply to the rendering surface and
// records it in the stored offsets.
//
// For Forward and NewLine, (line, col) is the caret after the move. For
// Backspace it is the caret when the key was pressed; column 0 means the
// caret crosses to the end of the previous line.
func (s *Scroller) ComputeShift(line, col int, ev Event) Shift {
	cols, rows := s.screen.VisibleColumns(), s.screen.VisibleRows()
	if cols <= 0 || rows <= 0 {
		log.Debug().Err(ErrDegenerateGeometry).Int("cols", cols).Int("rows", rows).Msg("scroll: skipping shift")
		return Shift{}
	}
	th := ComputeThresholds(cols, rows, s.trigger)

	dy := s.vertical(line, col, ev, rows, th)
	dx, err := s.horizontal(line, col, ev, cols, rows, th)
	if err != nil {
		log.Debug().Err(err).Int("line", line).Int("col", col).Msg("scroll: horizontal shift dropped")
		dx = 0
	}
	s.hOffset += dx
	s.vOffset += dy
	return Shift{DX: dx, DY: dy}
}

// vertical is evaluated only when the resulting caret sits on a line
// boundary, which is where line transitions happen.
func (s *Scroller) vertical(line, col int, ev Event, rows int, th Thresholds) int {
	if ev == Backspace {
		if col == 0 {
			if line <= 1 {
				return 0
			}
			line--
			col = s.doc.LineLength(line)
		} else {
			col--
		}
	}
	if col != 0 && col != s.doc.LineLength(line) {
		return 0
	}
	total := s.doc.LineCount()
	row := line - s.vOffset
	if row >= th.Bottom && s.vOffset+rows < total {
		return floorMod(row-rows/2, total-rows)
	}
	if row <= th.Top {
		up := s.vOffset + rows/2 - line
		if up > 0 && up <= s.vOffset {
			return -up
		}
	}
	return 0
}

func (s *Scroller) horizontal(line, col int, ev Event, cols, rows int, th Thresholds) (int, error) {
	switch {
	case ev == NewLine:
		return -s.hOffset, nil
	case ev == Backspace && col == 0:
		if line <= 1 {
			return 0, nil
		}
		target := s.doc.LineLength(line-1) - th.Left
		if target > 0 {
			return target - s.hOffset, nil
		}
		return -s.hOffset, nil
	}

	if ev == Backspace {
		col--
	}
	dx := 0
	if col-s.hOffset >= th.Right {
		n := s.doc.LineLength(line)
		if n == 0 {
			return 0, ErrDegenerateGeometry
		}
		dx = floorMod(col-(s.hOffset+cols/2), n)
	}
	h := s.hOffset + dx
	if h >= 1 && col-h <= th.Left {
		if back := h + rows/2 - col; back > 0 {
			dx -= min(back, h)
		}
	}
	return dx, nil
}

// floorMod is a modulo whose result has the sign of n.
func floorMod(a, n int) int {
	if n <= 0 {
		return 0
	}
	return ((a % n) + n) % n
}
