// Package surface is the in-memory rendering surface the typing engine draws on.
package surface

import (
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/tracker"
)

type spanKey struct {
	tag  tracker.Tag
	line int
}

type span struct {
	from int
	to   int
}

// Surface records colored spans, one per (tag, line), together with the
// scroll offsets and the visible size in character cells.
type Surface struct {
	spans map[spanKey]span

	cols int
	rows int

	hOffset int
	vOffset int
}

// New returns an empty surface.
func New() *Surface {
	return &Surface{spans: map[spanKey]span{}}
}

// Resize sets the visible size in character cells.
func (s *Surface) Resize(cols, rows int) {
	s.cols = cols
	s.rows = rows
}

// VisibleColumns returns the number of visible character columns.
func (s *Surface) VisibleColumns() int {
	return s.cols
}

// VisibleRows returns the number of visible text rows.
func (s *Surface) VisibleRows() int {
	return s.rows
}

// SetSpan replaces the span of tag on line with [fromCol, toCol).
// An empty span clears the line.
func (s *Surface) SetSpan(tag tracker.Tag, line, fromCol, toCol int) {
	if toCol <= fromCol {
		s.ClearSpan(tag, line)
		return
	}
	s.spans[spanKey{tag: tag, line: line}] = span{from: fromCol, to: toCol}
}

// ClearSpan removes the span of tag on line.
func (s *Surface) ClearSpan(tag tracker.Tag, line int) {
	delete(s.spans, spanKey{tag: tag, line: line})
}

// ExistingSpan returns the span of tag on line, if any.
func (s *Surface) ExistingSpan(tag tracker.Tag, line int) (model.Range, bool) {
	sp, ok := s.spans[spanKey{tag: tag, line: line}]
	if !ok {
		return model.Range{}, false
	}
	return model.Range{
		Left:  model.Coord{Line: line, Col: sp.from},
		Right: model.Coord{Line: line, Col: sp.to},
	}, true
}

// TagAt reports which span covers (line, col). Bad spans win over good ones.
func (s *Surface) TagAt(line, col int) (tracker.Tag, bool) {
	for _, tag := range []tracker.Tag{tracker.Bad, tracker.Good} {
		if sp, ok := s.spans[spanKey{tag: tag, line: line}]; ok && col >= sp.from && col < sp.to {
			return tag, true
		}
	}
	return 0, false
}

// SpanCount returns the number of recorded spans.
func (s *Surface) SpanCount() int {
	return len(s.spans)
}

// ScrollBy moves the visible window by dx columns and dy lines. Offsets never
// go below zero.
func (s *Surface) ScrollBy(dx, dy int) {
	s.hOffset = max(0, s.hOffset+dx)
	s.vOffset = max(0, s.vOffset+dy)
}

// Offsets returns the horizontal and vertical scroll offsets.
func (s *Surface) Offsets() (h, v int) {
	return s.hOffset, s.vOffset
}

// Clear drops every span and scrolls back to the top-left corner. The visible
// size is kept.
func (s *Surface) Clear() {
	s.spans = map[spanKey]span{}
	s.hOffset = 0
	s.vOffset = 0
}
