// Package device implements the audio callback from spec §4.2: the bounded
// wait protocol that drains the render queue into device-native samples,
// plus the portaudio glue that invokes it.
//
// Grounded on chriskillpack-modplayer's cmd/modplay AudioPlayer.streamCallback
// (other_examples/6cdf98fa_chriskillpack-modplayer__cmd-modplay-play.go.go):
// a struct holding a reusable scratch buffer, fed by portaudio.OpenDefaultStream
// with a Go-native-slice callback function rather than a raw C buffer.
package device

import (
	"time"

	"chordrack/internal/rtqueue"
)

// MaxBufferConsumeSize is the spec §4.2 ceiling on num_frames per callback
// invocation.
const MaxBufferConsumeSize = 256

// BackoffSleep is the bounded sleep budgeted per callback when the queue is
// under-filled (spec §4.2 protocol step 1).
const BackoffSleep = time.Millisecond

// Callback drains queue into device-native output, applying the bounded
// wait protocol from spec §4.2. It holds no state but a reusable scratch
// buffer, so that Render never allocates (spec §5: "No allocation on the
// audio thread").
type Callback struct {
	queue   *rtqueue.Queue
	channels int
	scratch  []float32
	sleep    func(time.Duration)
}

// NewCallback constructs a Callback over queue, broadcasting each mixed
// sample across channels output channels.
func NewCallback(queue *rtqueue.Queue, channels int) *Callback {
	if channels <= 0 {
		channels = 1
	}
	return &Callback{
		queue:    queue,
		channels: channels,
		scratch:  make([]float32, MaxBufferConsumeSize),
		sleep:    time.Sleep,
	}
}

// wait applies spec §4.2's bounded wait: it sleeps at most once, only if
// the driver's playback deadline is still more than BackoffSleep away.
func (c *Callback) wait(numFrames int, playback, callback time.Time) {
	if c.queue.Len() >= numFrames {
		return
	}
	if playback.Add(-BackoffSleep).After(callback) {
		c.sleep(BackoffSleep)
	}
}

// popMixed runs the wait protocol and then attempts to drain numFrames
// mixed f32 samples into the reusable scratch buffer, reporting whether
// enough were available (spec §4.2 step 2's two branches).
func (c *Callback) popMixed(numFrames int, playback, callback time.Time) ([]float32, bool) {
	if numFrames > MaxBufferConsumeSize {
		numFrames = MaxBufferConsumeSize
	}
	c.wait(numFrames, playback, callback)
	frames := c.scratch[:numFrames]
	if !c.queue.PopN(frames) {
		return nil, false
	}
	return frames, true
}

// Render fills dst (numFrames*channels device-native samples) by converting
// each mixed sample with convert and broadcasting it across channels. It
// reports whether the queue had enough frames; on false, dst is left
// untouched, matching spec §4.2's "otherwise ... leave output unchanged."
func Render[T any](c *Callback, dst []T, numFrames int, playback, callback time.Time, convert func(mixed float32) T) bool {
	frames, ok := c.popMixed(numFrames, playback, callback)
	if !ok {
		return false
	}
	for i, mixed := range frames {
		sample := convert(mixed)
		for ch := 0; ch < c.channels; ch++ {
			dst[i*c.channels+ch] = sample
		}
	}
	return true
}
