package timer

import (
	"testing"

	"chordrack/internal/clock"

	"github.com/stretchr/testify/assert"
)

func TestOnTimeoutFiresOnceAfterDeadline(t *testing.T) {
	s := NewScheduler(1000)
	fired := 0
	s.OnTimeout(0, 1.0, func() { fired++ })

	s.Tick(500)
	assert.Equal(t, 0, fired, "must not fire before its deadline")

	s.Tick(1000)
	assert.Equal(t, 1, fired)

	s.Tick(2000)
	assert.Equal(t, 1, fired, "a one-shot timer must not re-fire")
}

func TestOnBeatRepeats(t *testing.T) {
	s := NewScheduler(1000)
	s.SetTempo(60) // exactly 1 beat/sec == 1000 frames/beat at 1000 Hz
	fired := 0
	s.OnBeat(0, 1, func() { fired++ })

	s.Tick(clock.Instant(1000))
	assert.Equal(t, 1, fired)
	s.Tick(clock.Instant(2000))
	assert.Equal(t, 2, fired)
	s.Tick(clock.Instant(3000))
	assert.Equal(t, 3, fired)
}

func TestCancelTimerPreventsFiring(t *testing.T) {
	s := NewScheduler(1000)
	fired := 0
	h := s.OnTimeout(0, 1.0, func() { fired++ })
	s.CancelTimer(h)
	s.Tick(clock.Instant(5000))
	assert.Equal(t, 0, fired)
}

func TestGetSetTempo(t *testing.T) {
	s := NewScheduler(1000)
	s.SetTempo(140)
	assert.Equal(t, 140.0, s.GetTempo())
}

func TestMultipleTimersFireInDeadlineOrder(t *testing.T) {
	s := NewScheduler(1000)
	var order []int
	s.OnTimeout(0, 2.0, func() { order = append(order, 2) })
	s.OnTimeout(0, 1.0, func() { order = append(order, 1) })
	s.OnTimeout(0, 3.0, func() { order = append(order, 3) })

	s.Tick(clock.Instant(5000))
	assert.Equal(t, []int{1, 2, 3}, order)
}
