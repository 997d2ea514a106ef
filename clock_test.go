package hauntedhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestClockElapsedSeconds(t *testing.T) {
	ft := &fakeTime{t: time.Unix(1000, 0)}
	c := NewClockWithSource(ft.now)

	assert.Equal(t, 0.0, c.ElapsedSeconds())

	ft.advance(1500 * time.Millisecond)
	assert.InDelta(t, 1.5, c.ElapsedSeconds(), 1e-9)

	ft.advance(time.Millisecond)
	assert.InDelta(t, 1.501, c.ElapsedSeconds(), 1e-9)
}

func TestClockNeverNegative(t *testing.T) {
	ft := &fakeTime{t: time.Unix(1000, 0)}
	c := NewClockWithSource(ft.now)
	ft.advance(-time.Second)
	assert.Equal(t, 0.0, c.ElapsedSeconds())
}

func TestClockRealSourceIsNonDecreasing(t *testing.T) {
	c := NewClock()
	prev := c.ElapsedSeconds()
	for i := 0; i < 100; i++ {
		now := c.ElapsedSeconds()
		assert.GreaterOrEqual(t, now, prev)
		prev = now
	}
}
