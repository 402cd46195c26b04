// Package model defines shared data structures.
package model

import "time"

// Coord is a document position. Lines are 1-indexed, columns are 0-indexed
// character counts from the line start.
type Coord struct {
	Line int
	Col  int
}

// Before reports whether c sorts strictly before o in document order.
func (c Coord) Before(o Coord) bool {
	if c.Line != o.Line {
		return c.Line < o.Line
	}
	return c.Col < o.Col
}

// Range is a highlighted span between two coordinates. Intermediate lines of
// a multi-line range are fully covered.
type Range struct {
	Left  Coord
	Right Coord
}

// Collapsed reports whether the range has zero length.
func (r Range) Collapsed() bool {
	return r.Left == r.Right
}

// MultiLine reports whether the range crosses a line boundary.
func (r Range) MultiLine() bool {
	return r.Left.Line != r.Right.Line
}

// Origin is the position every range and caret starts from.
var Origin = Coord{Line: 1, Col: 0}

// Config defines practice settings.
type Config struct {
	Trigger        int
	FilterComments bool
	LineWidth      int
	GoodColor      string
	BadColor       string

	WordListPath string
	Words        int
	CapsPct      float64
	PunctPct     float64
	PunctSet     string
	FocusWeak    bool
	WeakTop      int
	WeakFactor   float64
	WeakWindow   int
}

// StatsConfig defines filters and options for history output.
type StatsConfig struct {
	Source      string
	Since       *time.Time
	Last        int
	CurveWindow int
	Top         int
}

// SessionStats captures a completed typing run.
type SessionStats struct {
	RunID          string
	StartedAt      time.Time
	EndedAt        time.Time
	Source         string
	FilterComments bool
	Lines          int
	CharsTyped     int
	WordsTyped     int
	Errors         int
	Correct        int
	Incorrect      int
	DurationMs     int64
}

// CharStats stores per-character stats for a run.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// CharAggregate aggregates character stats across runs.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a run for reporting.
type SessionAggregate struct {
	SessionID  int64
	RunID      string
	Source     string
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	Errors     int
	DurationMs int64
}
