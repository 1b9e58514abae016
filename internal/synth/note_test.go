package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHeldButtonRenderBoundedByAmplitude(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sampleRate := 44100.0
		params := DefaultParams()
		params.Amplitude = rapid.Float64Range(0, 1).Draw(t, "amplitude")
		params.Pitch = rapid.Float64Range(20, 18000).Draw(t, "pitch")

		n := NewHeldButtonNote(sampleRate, SineOscillator{}, params)
		tMax := rapid.Uint64Range(0, uint64(2*sampleRate)).Draw(t, "t")
		for tv := uint64(0); tv <= tMax; tv++ {
			sample := n.Render(tv)
			assert.LessOrEqual(t, math.Abs(float64(sample)), params.Amplitude+1e-6)
		}
	})
}

func TestHeldButtonFinishedMonotonic(t *testing.T) {
	sampleRate := 44100.0
	n := NewHeldButtonNote(sampleRate, SineOscillator{}, DefaultParams())

	for tv := uint64(0); tv < 1000; tv++ {
		n.Render(tv)
	}
	n.Mute()
	n.Render(1000)

	assert.False(t, n.Finished(1001))

	releaseEnd := n.mutedAt + int64(n.adsr.Release)
	require.Greater(t, releaseEnd, int64(0))

	wasFinished := false
	for r := uint64(1001); r < uint64(releaseEnd)+200; r++ {
		finished := n.Finished(r)
		if wasFinished {
			assert.True(t, finished, "finished must stay true once set")
		}
		wasFinished = wasFinished || finished
	}
	assert.True(t, wasFinished)
}

func TestHeldButtonPhaseContinuityOnParamChange(t *testing.T) {
	sampleRate := 44100.0
	params := DefaultParams()
	params.Pitch = 440

	n := NewHeldButtonNote(sampleRate, SineOscillator{}, params)

	var last float32
	for tv := uint64(0); tv < 100; tv++ {
		last = n.Render(tv)
	}

	// Predict the sample the OLD params would have produced at the switch
	// frame, using the same phase-accumulation the note itself performs.
	predictedPhase := WrapPhase(n.changePhase + float64(100-n.changeAt)*PhaseIncrement(n.params.Pitch, sampleRate))
	predictedRaw := math.Sin(predictedPhase)
	predictedEnv := n.adsr.Value(100, n.mutedAt)
	predicted := float32(predictedRaw * predictedEnv * n.params.Amplitude)

	n.SetParam(Params{Pitch: 880})
	actual := n.Render(100)

	assert.InDelta(t, predicted, actual, 1e-5)
	_ = last
}
