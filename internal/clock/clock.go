// Package clock defines the frame-indexed time base shared by the render
// queue, the render loop, and the audio callback.
package clock

import "time"

// Instant is an absolute frame index, monotonic from process start at the
// configured sample rate. At 44.1kHz a uint64 wraps after roughly 13 million
// years, so arithmetic here is ordinary unsigned arithmetic rather than an
// explicit saturating type; Sub clamps to zero instead of wrapping for the
// one case (subtracting a later instant from an earlier one) that would
// otherwise silently produce a huge value.
type Instant uint64

// Sub returns i-other, clamped to zero rather than wrapping if other is
// ahead of i.
func (i Instant) Sub(other Instant) Instant {
	if other > i {
		return 0
	}
	return i - other
}

// Add returns i+frames.
func (i Instant) Add(frames uint64) Instant {
	return i + Instant(frames)
}

// Seconds converts a frame count to a duration at the given sample rate.
func Seconds(frames Instant, sampleRate float64) time.Duration {
	return time.Duration(float64(frames) / sampleRate * float64(time.Second))
}

// Frames converts a duration to a frame count at the given sample rate,
// rounding to the nearest frame.
func Frames(d time.Duration, sampleRate float64) uint64 {
	return uint64(d.Seconds()*sampleRate + 0.5)
}
