package dispatch

// Callback is a scripting-level effect invoked on a dispatch transition.
// The hosting hooks this up to a Lua function value; the core only needs
// to call it with the chord that fired.
type Callback func(chord KeyChord)

// KeyAction is spec §3's KeyAction: an effect, an optional release effect,
// and the state to transition to.
type KeyAction struct {
	Effect    Callback
	EffectUp  Callback
	NextState uint32
}

// Mode is spec §3's Mode: a named chord-to-action table plus a default
// action for unmatched chords.
type Mode struct {
	Name    string
	Keys    map[KeyChord]KeyAction
	Default KeyAction
}

func newMode(name string, def KeyAction) *Mode {
	return &Mode{Name: name, Keys: make(map[KeyChord]KeyAction), Default: def}
}
