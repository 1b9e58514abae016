// Package synth implements the per-note synthesis state machine (spec §4.4)
// and the Instrument model that produces notes on demand (spec §4.5).
//
// Grounded on justyntemme-clapgo's pkg/audio (oscillator/dsp primitives) and
// pkg/util/envelope.go (ADSR shape), adapted from CLAP's per-plugin-param
// model to the spec's field-wise NoteParams patch semantics.
package synth

// Params is the set of tunable fields for a note or an instrument's
// next-note template. Other carries parameters recognized only by key, not
// promoted to a named field (spec §4.3: "InstrumentEvent{iid,
// SetParam{param}}"; spec §4.5: "other parameters are recognized by key and
// stored in other").
type Params struct {
	Pitch        float64 // Hz
	Amplitude    float64 // 0..1
	Articulation float64 // 0..1
	Other        map[string]OtherValue
}

// OtherValue is a float or a string, matching spec §3's
// map<string, float|string>.
type OtherValue struct {
	IsString bool
	Float    float64
	String   string
}

// DefaultParams returns the spec-mandated defaults: pitch=440,
// amplitude=0.1, articulation=0.5.
func DefaultParams() Params {
	return Params{
		Pitch:        440,
		Amplitude:    0.1,
		Articulation: 0.5,
	}
}

// Patch applies p field-wise onto a copy of base: a zero Pitch, Amplitude or
// Articulation in p means "not set" and keeps base's value, so a patch
// cannot set one of them to exactly zero; Other entries in p are merged
// over base's, key by key.
func (base Params) Patch(p Params) Params {
	out := base
	if p.Pitch != 0 {
		out.Pitch = p.Pitch
	}
	if p.Amplitude != 0 {
		out.Amplitude = p.Amplitude
	}
	if p.Articulation != 0 {
		out.Articulation = p.Articulation
	}
	if len(p.Other) > 0 {
		merged := make(map[string]OtherValue, len(out.Other)+len(p.Other))
		for k, v := range out.Other {
			merged[k] = v
		}
		for k, v := range p.Other {
			merged[k] = v
		}
		out.Other = merged
	}
	return out
}
