// Package keyspec implements the key-chord textual syntax from spec §6:
// hyphen-separated modifiers first, key last.
//
// Grounded on justyntemme-clapgo's pkg/util error-sentinel-plus-struct-error
// style (concrete typed errors the caller can type-switch on, rather than
// string-matching), adapted to the three named parse failures the spec
// calls out by name: Empty, BadKey, BadModifier.
package keyspec

import (
	"fmt"
	"strings"
)

// Modifiers is the 4-bit set {CTRL, SHIFT, ALT, SUPER} from spec §3.
type Modifiers uint8

const (
	Ctrl Modifiers = 1 << iota
	Shift
	Alt
	Super
)

// Has reports whether m contains every bit set in other.
func (m Modifiers) Has(other Modifiers) bool { return m&other == other }

// PopCount returns the number of set modifier bits.
func (m Modifiers) PopCount() int {
	n := 0
	for b := Modifiers(1); b <= Super; b <<= 1 {
		if m&b != 0 {
			n++
		}
	}
	return n
}

// modifierOrder maps each modifier bit to its one-letter textual token,
// in the fixed serialization order C, S, A, W from spec §6.
var modifierOrder = []struct {
	bit   Modifiers
	token byte
}{
	{Ctrl, 'C'},
	{Shift, 'S'},
	{Alt, 'A'},
	{Super, 'W'},
}

// Chord is a (key, modifiers) pair, spec §3's KeyChord.
type Chord struct {
	Key  string
	Mods Modifiers
}

// ErrKind distinguishes the three named parse failures from spec §6.
type ErrKind int

const (
	ErrEmpty ErrKind = iota
	ErrBadKey
	ErrBadModifier
)

// ParseError is the structured error surfaced through the scripting bridge
// (spec §7: "returned through the scripting bridge as a structured error").
type ParseError struct {
	Kind ErrKind
	Text string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrEmpty:
		return "keyspec: empty chord"
	case ErrBadModifier:
		return fmt.Sprintf("keyspec: bad modifier %q", e.Text)
	default:
		return fmt.Sprintf("keyspec: bad key %q", e.Text)
	}
}

var specialKeys = map[string]bool{
	"<ESC>":  true,
	"<DASH>": true,
}

func isPlainKeyToken(tok string) bool {
	if len(tok) != 1 {
		return false
	}
	c := tok[0]
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '`' || c == '=' || c == '{' || c == '}' || c == '\\':
		return true
	}
	return false
}

func isKeyToken(tok string) bool {
	return isPlainKeyToken(tok) || specialKeys[tok]
}

// Parse parses a hyphen-separated chord string such as "C-S-a" or "<ESC>".
func Parse(s string) (Chord, error) {
	if s == "" {
		return Chord{}, &ParseError{Kind: ErrEmpty}
	}
	parts := strings.Split(s, "-")

	// The key token may itself be "<DASH>" which contains no literal
	// hyphen, so a naive split never misparses it; a bare trailing "-" in
	// "C--" would split into an empty final token, which is simply not a
	// valid key and falls through to the BadKey branch below.
	keyTok := parts[len(parts)-1]
	modTokens := parts[:len(parts)-1]

	if !isKeyToken(keyTok) {
		return Chord{}, &ParseError{Kind: ErrBadKey, Text: keyTok}
	}

	var mods Modifiers
	for _, mt := range modTokens {
		bit, ok := modifierBit(mt)
		if !ok {
			return Chord{}, &ParseError{Kind: ErrBadModifier, Text: mt}
		}
		mods |= bit
	}

	return Chord{Key: keyTok, Mods: mods}, nil
}

func modifierBit(tok string) (Modifiers, bool) {
	switch tok {
	case "C":
		return Ctrl, true
	case "S":
		return Shift, true
	case "A":
		return Alt, true
	case "W":
		return Super, true
	default:
		return 0, false
	}
}

// Format serializes c back into its canonical textual form: modifiers in
// fixed order C, S, A, W, followed by the key token.
func Format(c Chord) string {
	var b strings.Builder
	for _, m := range modifierOrder {
		if c.Mods&m.bit != 0 {
			b.WriteByte(m.token)
			b.WriteByte('-')
		}
	}
	b.WriteString(c.Key)
	return b.String()
}
