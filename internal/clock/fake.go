package clock

import "time"

// FakeClock is a manually driven Clock for tests. Cooldown and decay
// behavior is exercised by advancing it past the relevant windows.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward. Time never runs backwards here;
// tests needing an earlier instant construct a new clock.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
