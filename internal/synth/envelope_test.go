package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEnvelopeValueBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sampleRate := rapid.Float64Range(8000, 192000).Draw(t, "sampleRate")
		a := DefaultADSR(sampleRate)
		tframe := rapid.Uint64Range(0, 10*uint64(sampleRate)).Draw(t, "t")
		muted := rapid.Int64Range(-1, int64(10*sampleRate)).Draw(t, "mutedAt")

		v := a.Value(tframe, muted)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	})
}

func TestEnvelopeReachesSustain(t *testing.T) {
	a := DefaultADSR(44100)
	v := a.Value(a.Attack+a.Decay+10, -1)
	assert.InDelta(t, a.Sustain, v, 1e-9)
}

func TestEnvelopeZeroAtAttackStart(t *testing.T) {
	a := DefaultADSR(44100)
	assert.Equal(t, 0.0, a.Value(0, -1))
}

func TestEnvelopeReleaseDecaysToZero(t *testing.T) {
	a := DefaultADSR(44100)
	muteAt := int64(a.Attack + a.Decay)
	v := a.Value(uint64(muteAt)+a.Release, muteAt)
	assert.Equal(t, 0.0, v)
}
