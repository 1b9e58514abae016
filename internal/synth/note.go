package synth

import "chordrack/internal/clock"

// Note is a stateful synthesizer producing one scalar amplitude sample per
// frame. Implementations are owned exclusively by the render thread's voice
// map; render, setParam, mute and finished are only ever called there.
type Note interface {
	// SetParam patches the note's pending parameters. The change does not
	// take effect until the next Render call, preserving phase continuity
	// within the current frame (spec §4.4).
	SetParam(p Params)
	// Mute schedules the note's release from the frame of the next Render
	// call. Calling it again after the release has begun restarts the
	// release from that later frame.
	Mute()
	// Render produces the sample at frame t, relative to the note's start
	// frame.
	Render(t uint64) float32
	// Finished reports whether the note may be dropped from the voice map,
	// given the retired frame (relative to the note's start frame).
	Finished(retired uint64) bool
}

// heldButtonCore holds the fields common to the HeldButton and PressButton
// variants: pitch/amplitude/envelope state and the phase-continuous
// parameter handoff machinery described in spec §3/§4.4.
type heldButtonCore struct {
	sampleRate float64
	adsr       ADSR
	osc        Oscillator

	params Params

	changeParams  Params
	changePending bool
	changeAt      uint64 // frame at which the active params took effect
	changePhase   float64

	mutePending bool
	mutedAt     int64 // -1 until mute takes effect
}

func newHeldButtonCore(sampleRate float64, adsr ADSR, osc Oscillator, params Params) heldButtonCore {
	return heldButtonCore{
		sampleRate: sampleRate,
		adsr:       adsr,
		osc:        osc,
		params:     params,
		mutedAt:    -1,
	}
}

func (n *heldButtonCore) SetParam(p Params) {
	n.changeParams = n.params.Patch(p)
	n.changePending = true
}

func (n *heldButtonCore) requestMute() {
	n.mutePending = true
}

// advance runs spec §4.4 steps 1-3, mutating phase-handoff state and
// returning the raw oscillator sample (before the envelope is applied).
func (n *heldButtonCore) advance(t uint64) float32 {
	if n.changePending {
		elapsed := t - n.changeAt
		phase := WrapPhase(n.changePhase + float64(elapsed)*PhaseIncrement(n.params.Pitch, n.sampleRate))
		n.changePhase = phase
		n.changeAt = t
		n.params = n.changeParams
		n.changePending = false
	}
	if n.mutePending {
		n.mutedAt = int64(t)
		n.mutePending = false
	}

	elapsed := t - n.changeAt
	phase := WrapPhase(n.changePhase + float64(elapsed)*PhaseIncrement(n.params.Pitch, n.sampleRate))
	return n.osc.Sample(phase)
}

func (n *heldButtonCore) envelope(t uint64) float64 {
	return n.adsr.Value(t, n.mutedAt)
}

// HeldButtonNote is the sustained-tone variant named in spec §4.5: its
// release phase is driven entirely by mute() (there is no implicit decay).
type HeldButtonNote struct {
	heldButtonCore
}

// NewHeldButtonNote constructs a HeldButtonNote seeded with params, at the
// given sample rate.
func NewHeldButtonNote(sampleRate float64, osc Oscillator, params Params) *HeldButtonNote {
	return &HeldButtonNote{heldButtonCore: newHeldButtonCore(sampleRate, DefaultADSR(sampleRate), osc, params)}
}

func (n *HeldButtonNote) Mute() { n.requestMute() }

func (n *HeldButtonNote) Render(t uint64) float32 {
	amp := n.advance(t)
	env := n.envelope(t)
	return float32(float64(amp) * env * n.params.Amplitude)
}

// Finished implements spec §4.4: true iff mute_at is set and
// mute_at + release < retired.
func (n *HeldButtonNote) Finished(retired uint64) bool {
	if n.mutedAt < 0 {
		return false
	}
	return uint64(n.mutedAt)+n.adsr.Release < retired
}

// PressButtonNote is the one-shot/plucked variant supplementing spec §4.5's
// reserved instruments = {HoldButton: 0, PressButton: 1} constant table
// (see SPEC_FULL.md §10): it ignores mute() and always runs attack/decay/
// release to completion once triggered, as if muted at the end of its decay
// stage.
type PressButtonNote struct {
	heldButtonCore
}

// NewPressButtonNote constructs a PressButtonNote that self-mutes at frame
// attack+decay, so its envelope is the attack/decay/release arc with no
// sustain hold.
func NewPressButtonNote(sampleRate float64, osc Oscillator, params Params) *PressButtonNote {
	core := newHeldButtonCore(sampleRate, DefaultADSR(sampleRate), osc, params)
	core.mutedAt = int64(core.adsr.Attack + core.adsr.Decay)
	return &PressButtonNote{heldButtonCore: core}
}

// Mute is a no-op: a PressButton note always runs its fixed envelope to
// completion once triggered.
func (n *PressButtonNote) Mute() {}

func (n *PressButtonNote) Render(t uint64) float32 {
	amp := n.advance(t)
	env := n.envelope(t)
	return float32(float64(amp) * env * n.params.Amplitude)
}

func (n *PressButtonNote) Finished(retired uint64) bool {
	return uint64(n.mutedAt)+n.adsr.Release < retired
}

var _ Note = (*HeldButtonNote)(nil)
var _ Note = (*PressButtonNote)(nil)

// StartFrame is the absolute frame at which a Note was created: the
// start_frame half of spec §3's voice map value type (start_frame:
// FrameInstant, Note).
type StartFrame = clock.Instant
