// Package session drives a typing run: it routes keystrokes to the accuracy
// tracker, keeps the viewport following the caret, and collects statistics.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/retype/internal/document"
	"github.com/verte-zerg/retype/internal/highlight"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/scroll"
	"github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/surface"
	"github.com/verte-zerg/retype/internal/tracker"
)

type charStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Session is a single typing run over a document.
type Session struct {
	now func() time.Time

	doc      *document.Document
	tracker  *tracker.Tracker
	surface  *surface.Surface
	updater  *highlight.Updater
	scroller *scroll.Scroller
	counter  *stats.Counter

	runID string
	caret model.Coord
	done  bool

	correct       int
	incorrect     int
	charStats     map[rune]*charStat
	prevCorrectAt time.Time
}

// New returns an empty session using the wall clock. Load must be called
// before keys are handled.
func New(trigger int) *Session {
	return NewWithClock(trigger, time.Now)
}

// NewWithClock returns an empty session using now as its clock.
func NewWithClock(trigger int, now func() time.Time) *Session {
	t := tracker.New()
	surf := surface.New()
	return &Session{
		now:      now,
		tracker:  t,
		surface:  surf,
		updater:  highlight.New(t, surf, nil),
		scroller: scroll.New(surf, nil, trigger),
		counter:  stats.NewCounterWithClock(now),
		caret:    model.Origin,
	}
}

// Load replaces the document and resets every piece of run state: both
// accuracy windows, the spans, the viewport, and the statistics.
func (s *Session) Load(doc *document.Document) {
	s.doc = doc
	s.updater.Reset(doc)
	s.surface.Clear()
	s.scroller.Reset(doc)
	s.counter.Reset()
	s.caret = model.Origin
	s.done = false
	s.correct = 0
	s.incorrect = 0
	s.charStats = map[rune]*charStat{}
	s.prevCorrectAt = time.Time{}
	s.runID = uuid.NewString()
	log.Debug().
		Str("run", s.runID).
		Str("source", doc.Source()).
		Int("lines", doc.LineCount()).
		Bool("filtered", doc.Filtered()).
		Msg("session loaded")
}

// Restart reloads the current document.
func (s *Session) Restart() {
	if s.doc != nil {
		s.Load(s.doc)
	}
}

// Resize updates the visible text area.
func (s *Session) Resize(cols, rows int) {
	s.surface.Resize(cols, rows)
}

// HandleKey applies one keystroke. An error leaves the session unchanged.
func (s *Session) HandleKey(k Key) error {
	if s.doc == nil || s.done {
		return nil
	}
	var err error
	switch k.Kind {
	case KeyBackspace:
		err = s.backspace()
	case KeyEnter:
		if s.atLineEnd() {
			s.lineBreak()
		}
	case KeyChar:
		if s.atLineEnd() {
			s.lineBreak()
			return nil
		}
		err = s.typeChar(k.Rune)
	}
	if err != nil {
		log.Error().Err(err).
			Str("run", s.runID).
			Int("line", s.caret.Line).
			Int("col", s.caret.Col).
			Msg("keystroke aborted")
	}
	return err
}

func (s *Session) atLineEnd() bool {
	return s.caret.Col >= s.doc.LineLength(s.caret.Line)
}

// errorPending reports whether a key at pos falls inside an uncorrected
// error, however many lines were crossed since it was made.
func (s *Session) errorPending(pos model.Coord) bool {
	return s.tracker.ErrorPending(pos)
}

func (s *Session) backspace() error {
	line, col := s.caret.Line, s.caret.Col
	if col == 0 {
		if line <= 1 {
			return nil
		}
		s.applyShift(s.scroller.ComputeShift(line, col, scroll.Backspace))
		s.caret = model.Coord{Line: line - 1, Col: s.doc.LineLength(line - 1)}
		return nil
	}
	class := highlight.Correct
	if s.errorPending(s.caret) {
		class = highlight.Incorrect
	}
	if err := s.updater.Update(class, line, col-1); err != nil {
		return err
	}
	s.applyShift(s.scroller.ComputeShift(line, col, scroll.Backspace))
	s.caret.Col = col - 1
	return nil
}

func (s *Session) typeChar(r rune) error {
	line, col := s.caret.Line, s.caret.Col
	expected := s.doc.CharAt(line, col)
	class := highlight.Correct
	if r != expected || s.errorPending(s.caret) {
		class = highlight.Incorrect
	}
	if err := s.updater.Update(class, line, col+1); err != nil {
		return err
	}
	s.caret.Col = col + 1
	s.applyShift(s.scroller.ComputeShift(line, col+1, scroll.Forward))
	s.record(expected, class)

	if line == s.doc.LineCount() && s.atLineEnd() && !s.errorPending(s.caret) {
		s.finish()
	}
	return nil
}

func (s *Session) lineBreak() {
	line := s.caret.Line
	last := line >= s.doc.LineCount()
	if last && s.errorPending(s.caret) {
		log.Debug().Str("run", s.runID).Msg("run not finished: uncorrected error")
		return
	}
	if s.doc.LineLength(line) > 0 {
		s.counter.RecordWord()
	}
	if last {
		s.finish()
		return
	}
	s.caret = model.Coord{Line: line + 1, Col: 0}
	s.applyShift(s.scroller.ComputeShift(line+1, 0, scroll.NewLine))
	if s.caret.Line == s.doc.LineCount() && s.atLineEnd() && !s.errorPending(s.caret) {
		s.finish()
	}
}

func (s *Session) applyShift(sh scroll.Shift) {
	if sh.DX != 0 || sh.DY != 0 {
		s.surface.ScrollBy(sh.DX, sh.DY)
	}
}

func (s *Session) record(expected rune, class highlight.Class) {
	s.counter.RecordChar()
	if class == highlight.Incorrect {
		s.counter.RecordError()
		s.incorrect++
	} else {
		s.correct++
		if expected == ' ' {
			s.counter.RecordWord()
		}
	}
	if expected == ' ' {
		return
	}
	entry := s.charEntry(expected)
	if class == highlight.Incorrect {
		entry.incorrect++
		return
	}
	entry.correct++
	now := s.now()
	if !s.prevCorrectAt.IsZero() {
		entry.latencySumMs += now.Sub(s.prevCorrectAt).Milliseconds()
		entry.latencyCount++
	}
	s.prevCorrectAt = now
}

func (s *Session) charEntry(expected rune) *charStat {
	entry, ok := s.charStats[expected]
	if !ok {
		entry = &charStat{}
		s.charStats[expected] = entry
	}
	return entry
}

func (s *Session) finish() {
	if s.done {
		return
	}
	s.done = true
	errs, wpm := s.counter.Snapshot()
	log.Info().
		Str("run", s.runID).
		Str("source", s.doc.Source()).
		Int("errors", errs).
		Float64("wpm", wpm).
		Msg("run complete")
}

// Caret returns the caret position.
func (s *Session) Caret() model.Coord {
	return s.caret
}

// Done reports whether the run is complete.
func (s *Session) Done() bool {
	return s.done
}

// Started reports whether any character has been typed.
func (s *Session) Started() bool {
	return !s.counter.StartedAt().IsZero()
}

// Progress returns the share of the document behind the caret, in [0, 1].
func (s *Session) Progress() float64 {
	if s.doc == nil {
		return 0
	}
	if s.done {
		return 1
	}
	total := s.doc.CharCount()
	if total == 0 {
		return 0
	}
	typed := s.caret.Col
	for line := 1; line < s.caret.Line; line++ {
		typed += s.doc.LineLength(line)
	}
	return float64(typed) / float64(total)
}

// Document returns the loaded document.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Surface returns the rendering surface holding spans and offsets.
func (s *Session) Surface() *surface.Surface {
	return s.surface
}

// Counter returns the live statistics.
func (s *Session) Counter() *stats.Counter {
	return s.counter
}

// Tracker returns the accuracy windows.
func (s *Session) Tracker() *tracker.Tracker {
	return s.tracker
}

// Result returns the run summary and per-character stats for persistence.
func (s *Session) Result() (model.SessionStats, []model.CharStats) {
	ended := s.now()
	started := s.counter.StartedAt()
	if started.IsZero() {
		started = ended
	}
	out := model.SessionStats{
		RunID:      s.runID,
		StartedAt:  started,
		EndedAt:    ended,
		Lines:      s.caret.Line,
		CharsTyped: s.counter.Chars(),
		WordsTyped: s.counter.Words(),
		Errors:     s.counter.Errors(),
		Correct:    s.correct,
		Incorrect:  s.incorrect,
		DurationMs: ended.Sub(started).Milliseconds(),
	}
	if s.doc != nil {
		out.Source = s.doc.Source()
		out.FilterComments = s.doc.CommentFilter()
	}
	chars := make([]model.CharStats, 0, len(s.charStats))
	for ch, entry := range s.charStats {
		chars = append(chars, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	return out, chars
}
