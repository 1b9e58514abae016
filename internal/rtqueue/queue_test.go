package rtqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPushPopBasic(t *testing.T) {
	q := New(4, 44100, 0)

	require.NoError(t, q.Push(1))
	require.NoError(t, q.Push(2))
	assert.Equal(t, 2, q.Len())

	s, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, float32(1), s)
	assert.Equal(t, 1, q.Len())
}

func TestPushFailsWhenFull(t *testing.T) {
	q := New(2, 44100, 0)
	require.NoError(t, q.Push(1))
	require.NoError(t, q.Push(2))
	assert.ErrorIs(t, q.Push(3), ErrFull)
}

func TestPopFailsWhenEmpty(t *testing.T) {
	q := New(2, 44100, 0)
	_, err := q.Pop()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestPopNOnlyAdvancesOnFullConsume(t *testing.T) {
	q := New(8, 44100, 100)
	for i := 0; i < 4; i++ {
		require.NoError(t, q.Push(float32(i)))
	}

	before := q.TailTime()
	dst := make([]float32, 6)
	ok := q.PopN(dst)
	assert.False(t, ok, "should refuse to under-fill the caller's buffer")
	assert.Equal(t, uint64(0), q.LastConsumedSize())
	assert.Equal(t, before, q.TailTime(), "a refused PopN must not advance the tail")

	dst = make([]float32, 4)
	ok = q.PopN(dst)
	assert.True(t, ok)
	assert.Equal(t, []float32{0, 1, 2, 3}, dst)
	assert.Equal(t, uint64(4), q.LastConsumedSize())
}

// TestQueueClockIdentity is the property from spec §8: for any sequence of
// pushes/pops, head_time() - tail_time() == ring.len() holds after each
// operation.
func TestQueueClockIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 32).Draw(t, "capacity")
		q := New(capacity, 44100, 0)

		ops := rapid.SliceOfN(rapid.IntRange(0, 1), 0, 200).Draw(t, "ops")
		for _, op := range ops {
			if op == 0 {
				_ = q.Push(0)
			} else {
				_, _ = q.Pop()
			}
			head := q.HeadTime()
			tail := q.TailTime()
			assert.Equal(t, uint64(q.Len()), uint64(head)-uint64(tail),
				"head_time() - tail_time() must equal ring length")
		}
	})
}

func TestPopNAdvancesTailByExactlyConsumed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 64).Draw(t, "capacity")
		q := New(capacity, 44100, 0)
		pushed := rapid.IntRange(0, capacity).Draw(t, "pushed")
		for i := 0; i < pushed; i++ {
			require.NoError(t, q.Push(float32(i)))
		}

		n := rapid.IntRange(0, capacity).Draw(t, "n")
		dst := make([]float32, n)
		before := q.TailTime()
		ok := q.PopN(dst)
		after := q.TailTime()

		if n <= pushed {
			assert.True(t, ok)
			assert.Equal(t, uint64(n), uint64(after)-uint64(before))
		} else {
			assert.False(t, ok)
			assert.Equal(t, before, after)
		}
	})
}
