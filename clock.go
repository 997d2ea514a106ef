package hauntedhouse

import "time"

// Clock measures seconds since it was created. It is never reset.
type Clock struct {
	start time.Time
	now   func() time.Time
}

func NewClock() *Clock {
	return NewClockWithSource(time.Now)
}

// NewClockWithSource lets tests supply their own time source.
func NewClockWithSource(now func() time.Time) *Clock {
	return &Clock{start: now(), now: now}
}

// ElapsedSeconds is monotonic as long as the source is; time.Now carries a
// monotonic reading, so wall clock jumps do not affect it.
func (c *Clock) ElapsedSeconds() float64 {
	d := c.now().Sub(c.start)
	if d < 0 {
		return 0
	}
	return d.Seconds()
}
