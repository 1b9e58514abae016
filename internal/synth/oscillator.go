package synth

import "math"

// SignalKind identifies an oscillator variant; matches the config constant
// table signals = {Sine: 0, BrownNoise: 1} from spec §6.
type SignalKind int

const (
	SignalSine SignalKind = iota
	SignalBrownNoise
)

// Oscillator generates a bounded [-1, 1] sample for a given phase in
// radians. It is pluggable per spec §4.4 step 3 ("the oscillator variant is
// pluggable (sine, brown noise, ...)").
//
// Grounded on justyntemme-clapgo's pkg/audio/oscillator.go
// GenerateWaveformSample, adapted from a [0,1) phase convention to the
// radians convention spec §4.4 specifies directly in its phase-continuity
// formula.
type Oscillator interface {
	// Sample returns the oscillator's output at the given phase (radians).
	Sample(phaseRadians float64) float32
}

// SineOscillator is the default generator named in spec §4.4 step 3.
type SineOscillator struct{}

func (SineOscillator) Sample(phase float64) float32 {
	return float32(math.Sin(phase))
}

// BrownNoiseOscillator produces brown (integrated white) noise: each call
// advances a leaky integrator seeded deterministically from the phase, so
// that two notes constructed with the same starting phase reproduce the
// same noise sequence. Amplitude is normalized to stay within [-1, 1] by
// clamping the integrator.
//
// Grounded on clapgo's WaveformNoise case in GenerateWaveformSample (a
// phase-seeded deterministic pseudo-random generator), adapted here to
// integrate samples rather than emit them directly, producing the -6dB/oct
// spectral tilt associated with brown noise instead of flat white noise.
type BrownNoiseOscillator struct {
	state float64
}

func (o *BrownNoiseOscillator) Sample(phase float64) float32 {
	x := math.Sin(phase*12.9898+78.233) * 43758.5453
	white := 2.0*(x-math.Floor(x)) - 1.0

	const leak = 0.98
	o.state = o.state*leak + white*(1-leak)*8
	o.state = float64(Clip(float32(o.state), 1))
	return float32(o.state)
}

// NewOscillator constructs the oscillator named by kind.
func NewOscillator(kind SignalKind) Oscillator {
	switch kind {
	case SignalBrownNoise:
		return &BrownNoiseOscillator{}
	default:
		return SineOscillator{}
	}
}

// PhaseIncrement returns the per-frame phase advance (radians) for a given
// pitch and sample rate: 2*pi*pitch/sampleRate.
func PhaseIncrement(pitch, sampleRate float64) float64 {
	return 2 * math.Pi * pitch / sampleRate
}

// WrapPhase reduces a phase to [0, 2*pi).
func WrapPhase(phase float64) float64 {
	phase = math.Mod(phase, 2*math.Pi)
	if phase < 0 {
		phase += 2 * math.Pi
	}
	return phase
}
