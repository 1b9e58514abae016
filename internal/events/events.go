// Package events implements the multi-producer/single-consumer message
// channel carrying optional events from spec §2/§5: "a nil Message means
// shutdown."
//
// Grounded on justyntemme-clapgo's pkg/event/event.go typed-event-struct
// shape (a Header-like common envelope plus payload-specific fields),
// adapted from CLAP's fixed wire-format event union to a small closed set
// of Go struct types behind an interface, since chordrack has no C ABI to
// satisfy.
package events

// InstrumentPayload is the sealed set of payloads an InstrumentEvent may
// carry.
type InstrumentPayload interface{ isInstrumentPayload() }

// NotePayload is the sealed set of payloads a NoteEvent may carry.
type NotePayload interface{ isNotePayload() }

// SetParam carries a parameter patch, used both as an InstrumentPayload
// (targets instruments[iid].SetParam) and a NotePayload (targets the note
// at (iid, voice)).
type SetParam struct {
	Param ParamPatch
}

func (SetParam) isInstrumentPayload() {}
func (SetParam) isNotePayload()       {}

// ParamPatch is the wire shape of a parameter change; internal/script
// translates Lua tables into this before sending.
type ParamPatch struct {
	Pitch        *float64
	Amplitude    *float64
	Articulation *float64
	Other        map[string]OtherValue
}

// OtherValue mirrors synth.OtherValue without importing synth, keeping
// events a leaf package.
type OtherValue struct {
	IsString bool
	Float    float64
	String   string
}

// Hit requests a new note at a voice slot (spec §4.3: "ask the instrument
// for a new Note, insert into the voice map"). It always addresses a
// specific voice, so it is a NotePayload, carried as
// InstrumentEvent{iid, Note: &NoteEvent{voice, Hit{}}}.
type Hit struct{}

func (Hit) isNotePayload() {}

// Mute requests release of the note at a voice slot.
type Mute struct{}

func (Mute) isInstrumentPayload() {}
func (Mute) isNotePayload()       {}

// NoteEvent targets a specific voice within an instrument.
type NoteEvent struct {
	Voice   uint32
	Payload NotePayload
}

// InstrumentEvent is the top-level message payload: either a direct
// instrument-level event (SetParam, Mute) or a NoteEvent addressed to one of
// its voices.
type InstrumentEvent struct {
	InstrumentID uint32
	Payload      InstrumentPayload // nil if Note is set
	Note         *NoteEvent        // nil if Payload is set
}

// Message is the unit carried on the event channel. A nil *Message means
// shutdown, matching spec §2's "None means shutdown" exactly.
type Message struct {
	Instrument InstrumentEvent
}
