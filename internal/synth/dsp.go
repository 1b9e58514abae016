package synth

import "math"

// Clip limits a sample to the range [-limit, limit].
//
// Grounded on justyntemme-clapgo's pkg/audio/dsp.go Clip, narrowed from a
// multi-channel Buffer to a single scalar since chordrack mixes to mono
// before the audio callback broadcasts across channels.
func Clip(sample, limit float32) float32 {
	if sample > limit {
		return limit
	}
	if sample < -limit {
		return -limit
	}
	return sample
}

// SoftClip applies tanh soft clipping to a single sample.
//
// Grounded on justyntemme-clapgo's pkg/audio/dsp.go SoftClip.
func SoftClip(sample float32) float32 {
	return float32(math.Tanh(float64(sample)))
}
