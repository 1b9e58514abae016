// Package rtqueue implements the speculative render queue: a bounded ring
// of synthesized samples shared between exactly one producer (the render
// loop) and exactly one consumer (the audio callback), indexed by a
// monotonic frame clock.
//
// Grounded on justyntemme-clapgo's pkg/audio.Buffer error-sentinel style and
// its single-mutex-around-short-critical-section discipline in
// pkg/thread/check.go.
package rtqueue

import (
	"errors"
	"sync"

	"chordrack/internal/clock"
)

// DefaultCapacity is the default ring size in frames: at 44.1kHz this is
// ~23ms of look-ahead.
const DefaultCapacity = 1024

var (
	// ErrFull is returned by Push when the ring has no room.
	ErrFull = errors.New("rtqueue: ring is full")
	// ErrEmpty is returned by Pop when the ring has no samples.
	ErrEmpty = errors.New("rtqueue: ring is empty")
)

// Queue is the bounded single-producer/single-consumer ring of f32 samples.
// All state transitions are serialized by mu, held only for the duration of
// a push/pop/time read — never across a blocking operation.
type Queue struct {
	mu sync.Mutex

	ring       []float32
	head, size int // head is the read index; size is the current fill level

	sampleRate        float64
	tailFrame         clock.Instant // frame index of the next frame to be extracted
	lastConsumedSize  uint64
}

// New constructs an empty queue of the given capacity, with the consumer's
// clock starting at startTime.
func New(capacity int, sampleRate float64, startTime clock.Instant) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		ring:       make([]float32, capacity),
		sampleRate: sampleRate,
		tailFrame:  startTime,
	}
}

// Capacity returns the ring's fixed capacity.
func (q *Queue) Capacity() int {
	return len(q.ring)
}

// Len returns the current number of buffered frames.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Push appends one frame. It fails with ErrFull iff the ring is at capacity.
func (q *Queue) Push(sample float32) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.ring) {
		return ErrFull
	}
	writeIdx := (q.head + q.size) % len(q.ring)
	q.ring[writeIdx] = sample
	q.size++
	return nil
}

// Pop removes and returns one frame. It fails with ErrEmpty iff the ring is
// empty. Pop does not advance tailFrame; the audio callback uses PopN,
// which advances it by exactly the number of frames consumed in that call.
func (q *Queue) Pop() (float32, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *Queue) popLocked() (float32, error) {
	if q.size == 0 {
		return 0, ErrEmpty
	}
	sample := q.ring[q.head]
	q.head = (q.head + 1) % len(q.ring)
	q.size--
	return sample, nil
}

// PopN is the audio callback's primary entry point: under a single lock
// acquisition it checks whether at least n frames are available, and if so
// pops exactly n of them into dst and advances tailFrame by n. It reports
// whether it did so. This mirrors spec §4.2's protocol step 2: "under the
// lock: if len >= num_frames, pop num_frames frames ... advance tail_frame
// and set last_consumed_size = num_frames. Otherwise set
// last_consumed_size = 0 and leave output unchanged."
func (q *Queue) PopN(dst []float32) (consumed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(dst)
	if q.size < n {
		q.lastConsumedSize = 0
		return false
	}
	for i := 0; i < n; i++ {
		s, _ := q.popLocked()
		dst[i] = s
	}
	q.tailFrame = q.tailFrame.Add(uint64(n))
	q.lastConsumedSize = uint64(n)
	return true
}

// LastConsumedSize returns the frame count consumed by the most recent
// PopN call (0 if that call under-filled).
func (q *Queue) LastConsumedSize() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastConsumedSize
}

// HeadTime returns tailFrame + ring.len(): the frame index the producer is
// about to write next.
func (q *Queue) HeadTime() clock.Instant {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tailFrame.Add(uint64(q.size))
}

// TailTime returns tailFrame: the frame index of the next frame the
// consumer will extract.
func (q *Queue) TailTime() clock.Instant {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tailFrame
}

// SampleRate returns the queue's configured sample rate.
func (q *Queue) SampleRate() float64 {
	return q.sampleRate
}
