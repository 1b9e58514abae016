// Package dispatch implements the modal key-dispatch engine from spec §4.6:
// modes, chord-to-action bindings, modifier precedence, and key-release
// routing.
//
// Grounded on justyntemme-clapgo's pkg/thread/check.go reentrancy-guard
// idiom (an atomic flag asserting no nested mutation) for the dispatch
// state's "mutation APIs refuse reentry" rule (spec §4.6), and on its
// table-driven style (e.g. pkg/audio/dsp.go's const tables) for the
// modifier-precedence table.
package dispatch

import "chordrack/internal/keyspec"

// KeyChord is spec §3's (KeyCode, KeyModifiers) pair.
type KeyChord = keyspec.Chord

// Modifiers re-exports keyspec's 4-bit modifier set so callers needn't
// import both packages for a single bit type.
type Modifiers = keyspec.Modifiers

const (
	Ctrl  = keyspec.Ctrl
	Shift = keyspec.Shift
	Alt   = keyspec.Alt
	Super = keyspec.Super
)

// precedenceTable is spec §6's 16-entry descending-specificity modifier
// mask order: the full set, then the three-element subsets in the order
// (SAW, CAW, CSW, CSA), then the six two-element subsets in the order
// (AW, SW, SA, CW, CA, CS), then the singletons (W, A, S, C), then empty.
var precedenceTable = [16]Modifiers{
	Ctrl | Shift | Alt | Super,
	Shift | Alt | Super,
	Ctrl | Alt | Super,
	Ctrl | Shift | Super,
	Ctrl | Shift | Alt,
	Alt | Super,
	Shift | Super,
	Shift | Alt,
	Ctrl | Super,
	Ctrl | Alt,
	Ctrl | Shift,
	Super,
	Alt,
	Shift,
	Ctrl,
	0,
}

// matchMask walks precedenceTable from most to least specific and returns
// the first mask M such that mods has all of M's bits set (mods ⊇ M) and
// contains(M) reports true for it — i.e. the mode has a binding at that
// mask. It always terminates: the trailing entry, 0, is a superset of
// nothing and a subset of everything, so it always satisfies mods ⊇ M.
func matchMask(mods Modifiers, contains func(Modifiers) bool) (Modifiers, bool) {
	for _, m := range precedenceTable {
		if mods.Has(m) && contains(m) {
			return m, true
		}
	}
	return 0, false
}
