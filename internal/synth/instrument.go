package synth

// Kind identifies an instrument variant, matching the config constant table
// instruments = {HoldButton: 0, PressButton: 1} from spec §6.
type Kind int

const (
	KindHoldButton Kind = iota
	KindPressButton
)

// Instrument produces Notes on demand and holds the NoteParams template
// seeding the next note() call (spec §4.5).
type Instrument interface {
	// SetParam applies a patch to the next-note template (NextNote field)
	// or records an other-keyed parameter.
	SetParam(p Params)
	// Note constructs a new Note seeded from the current template, running
	// at the given sample rate.
	Note(sampleRate float64) Note
}

// HeldButtonInstrument is the concrete variant described in spec §4.5.
type HeldButtonInstrument struct {
	kind     Kind
	signal   SignalKind
	nextNote Params
}

// NewInstrument constructs an instrument of the given kind/signal, seeded
// with default note parameters.
func NewInstrument(kind Kind, signal SignalKind) *HeldButtonInstrument {
	return &HeldButtonInstrument{
		kind:     kind,
		signal:   signal,
		nextNote: DefaultParams(),
	}
}

func (i *HeldButtonInstrument) SetParam(p Params) {
	i.nextNote = i.nextNote.Patch(p)
}

func (i *HeldButtonInstrument) Note(sampleRate float64) Note {
	osc := NewOscillator(i.signal)
	switch i.kind {
	case KindPressButton:
		return NewPressButtonNote(sampleRate, osc, i.nextNote)
	default:
		return NewHeldButtonNote(sampleRate, osc, i.nextNote)
	}
}

var _ Instrument = (*HeldButtonInstrument)(nil)
