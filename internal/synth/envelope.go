package synth

// ADSR holds the envelope timing in frames, derived once from the fixed
// 50ms attack / 50ms decay / 0.5 sustain / 500ms release chain named in
// spec §4.4.
type ADSR struct {
	Attack, Decay, Release uint64 // frames
	Sustain                float64
}

// DefaultADSR converts the spec's fixed millisecond envelope into frames at
// the given sample rate.
func DefaultADSR(sampleRate float64) ADSR {
	return ADSR{
		Attack:  uint64(0.050 * sampleRate),
		Decay:   uint64(0.050 * sampleRate),
		Sustain: 0.5,
		Release: uint64(0.500 * sampleRate),
	}
}

// Value implements spec §4.4 step 4 exactly:
//
//	If mute_at = Some(r) and t >= r: adsr = (1 - (t-r)/release) * sustain,
//	clamped to >= 0.
//	Else: linear ramp 0->1 over [0, attack]; linear ramp 1->sustain over
//	[attack, attack+decay]; sustain thereafter.
//
// t is the frame count since the note started; muteAt is the frame at which
// mute() took effect, or -1 if the note has not been muted.
//
// Grounded on justyntemme-clapgo's pkg/util/envelope.go SimpleADSR, which is
// the teacher's own "stateless version that calculates envelope value based
// on elapsed time" — the spec's render() algorithm is exactly that shape, so
// the stateful EnvelopeStage machine in the same file is not used here.
func (a ADSR) Value(t uint64, muteAt int64) float64 {
	if muteAt >= 0 && t >= uint64(muteAt) {
		elapsedRelease := t - uint64(muteAt)
		if a.Release == 0 {
			return 0
		}
		v := (1 - float64(elapsedRelease)/float64(a.Release)) * a.Sustain
		if v < 0 {
			return 0
		}
		return v
	}

	if t < a.Attack {
		if a.Attack == 0 {
			return 1
		}
		return float64(t) / float64(a.Attack)
	}

	decayElapsed := t - a.Attack
	if decayElapsed < a.Decay {
		if a.Decay == 0 {
			return a.Sustain
		}
		progress := float64(decayElapsed) / float64(a.Decay)
		return 1 - progress*(1-a.Sustain)
	}

	return a.Sustain
}
