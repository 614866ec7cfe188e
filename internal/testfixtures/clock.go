package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source. Services accept a now func, so
// tests hand them clock.NowFunc() and move time explicitly; nothing ticks
// on its own.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts the clock at start, or at ReferenceTime when start is the
// zero value so every suite shares the same anchor.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc adapts the clock to the injected now signature. A nil clock falls
// back to time.Now, the same default the services apply themselves.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Advance moves the clock forward by d and returns the new reading. Session
// expiry tests jump past the TTL this way.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// AdvanceDays jumps n calendar days while keeping the time of day, which is
// how reservation tests step from one occurrence date to the next.
func (c *Clock) AdvanceDays(n int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
	return c.now
}
