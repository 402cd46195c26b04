package stats

import (
	"math"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func TestCounterSnapshot(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	c := NewCounterWithClock(clock.now)
	if errs, wpm := c.Snapshot(); errs != 0 || wpm != 0 {
		t.Fatalf("expected zero snapshot, got %d %.2f", errs, wpm)
	}
	for i := 0; i < 50; i++ {
		c.RecordChar()
	}
	c.RecordError()
	c.RecordWord()
	clock.t = clock.t.Add(30 * time.Second)

	errs, wpm := c.Snapshot()
	if errs != 1 {
		t.Fatalf("expected 1 error, got %d", errs)
	}
	// 50 chars in 30s -> 100 cpm -> 20 wpm
	if math.Abs(wpm-20) > 1e-9 {
		t.Fatalf("expected 20 wpm, got %.4f", wpm)
	}
	if c.Words() != 1 || c.Chars() != 50 {
		t.Fatalf("unexpected counters: words=%d chars=%d", c.Words(), c.Chars())
	}
}

func TestCounterStartsOnFirstChar(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	c := NewCounterWithClock(clock.now)
	clock.t = clock.t.Add(time.Hour)
	c.RecordChar()
	if !c.StartedAt().Equal(time.Unix(100, 0).Add(time.Hour)) {
		t.Fatalf("clock started at %v", c.StartedAt())
	}
}

func TestCounterReset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewCounterWithClock(clock.now)
	c.RecordChar()
	c.RecordError()
	c.RecordWord()
	c.Reset()
	if c.Chars() != 0 || c.Words() != 0 || c.Errors() != 0 || !c.StartedAt().IsZero() {
		t.Fatalf("counter not reset")
	}
}
