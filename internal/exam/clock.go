package exam

import (
	"fmt"
	"time"
)

// Clock is the session stopwatch. It is never paused; elapsed time is always
// the wall-clock delta from Start.
type Clock struct {
	now     func() time.Time
	start   time.Time
	started bool
	elapsed int
}

// NewClock returns a clock reading time from now. A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Start records the start timestamp. Later calls are ignored.
func (c *Clock) Start() {
	if c.started {
		return
	}
	c.start = c.now()
	c.started = true
	c.elapsed = 0
}

// Tick recomputes elapsed seconds and returns them.
func (c *Clock) Tick() int {
	if !c.started {
		return 0
	}
	d := int(c.now().Sub(c.start) / time.Second)
	if d > c.elapsed {
		c.elapsed = d
	}
	return c.elapsed
}

// Elapsed returns the last computed elapsed seconds.
func (c *Clock) Elapsed() int { return c.elapsed }

// StartedAt returns the start timestamp, zero if not started.
func (c *Clock) StartedAt() time.Time { return c.start }

// FormatElapsed renders seconds as MM:SS. Minutes do not roll over into hours.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
