package stats

import "time"

// Counter tracks live statistics for the run in progress.
type Counter struct {
	now func() time.Time

	errors    int
	chars     int
	words     int
	startedAt time.Time
}

// NewCounter returns a counter using the wall clock.
func NewCounter() *Counter {
	return NewCounterWithClock(time.Now)
}

// NewCounterWithClock returns a counter using now as its clock.
func NewCounterWithClock(now func() time.Time) *Counter {
	return &Counter{now: now}
}

// RecordChar counts a typed character. The first one starts the clock.
func (c *Counter) RecordChar() {
	if c.startedAt.IsZero() {
		c.startedAt = c.now()
	}
	c.chars++
}

// RecordWord counts a completed word.
func (c *Counter) RecordWord() {
	c.words++
}

// RecordError counts a mistyped character.
func (c *Counter) RecordError() {
	c.errors++
}

// Reset clears every counter and stops the clock.
func (c *Counter) Reset() {
	c.errors = 0
	c.chars = 0
	c.words = 0
	c.startedAt = time.Time{}
}

// Snapshot returns the error count and the typing speed in words per
// minute, where a word is five characters.
func (c *Counter) Snapshot() (errors int, wpm float64) {
	if c.startedAt.IsZero() || c.chars == 0 {
		return c.errors, 0
	}
	elapsed := c.now().Sub(c.startedAt).Seconds()
	if elapsed <= 0 {
		return c.errors, 0
	}
	return c.errors, float64(c.chars) / elapsed * 60 / 5
}

// Chars returns the number of typed characters.
func (c *Counter) Chars() int { return c.chars }

// Words returns the number of completed words.
func (c *Counter) Words() int { return c.words }

// Errors returns the number of mistyped characters.
func (c *Counter) Errors() int { return c.errors }

// StartedAt returns the time of the first typed character, or the zero time.
func (c *Counter) StartedAt() time.Time { return c.startedAt }
