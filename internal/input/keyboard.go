// Package input reads physical keyboard events and decodes them into
// KeyEvents for a dispatch.Machine's Press/Release pair, spec §4.6's inputs.
//
// Grounded on the tcell-based terminal key handling shared by three
// manifest-only pack entries (lixenwraith-vi-fighter, mmp-vice,
// valerio-go-jeebie go.mod files all pull in github.com/gdamore/tcell/v2 for
// exactly this role); no source from those entries was retrieved, so the
// event loop shape below follows tcell's own documented idiom: construct a
// Screen, call Init, and PollEvent in a loop until it returns nil (which it
// does once the screen is finalized).
//
// Terminals do not report key-up: a *tcell.EventKey is a single opaque
// "this key happened" notification, never paired press/release signals. A
// true key-up would need a lower-level device grab (e.g. reading
// /dev/input directly) that is out of scope here. The consumer of KeyEvent
// (engine.uiLoop) adapts to that limitation by calling Release right after
// each Press, which still exercises the full Press/Release state machine and
// spec §4.6's release-routing rule, at the cost of instruments never
// receiving a genuinely held key (documented in DESIGN.md).
//
// Start never touches a dispatch.Machine itself: dispatch state has no
// synchronization of its own beyond a same-goroutine reentrancy flag (spec
// §5 — single-threaded on the UI side), and the scripting bridge's onBeat/
// onTimeout callbacks can fire from a different goroutine entirely. Instead
// Start decodes raw tcell events into KeyEvents and forwards them on a
// channel; the caller is responsible for running Press/Release from the one
// goroutine that owns dispatch state.
package input

import (
	"fmt"

	"chordrack/internal/keyspec"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
)

// KeyEvent is a decoded keyboard event: a key code in keyspec's vocabulary
// plus the modifier mask held during the event.
type KeyEvent struct {
	Code string
	Mods keyspec.Modifiers
}

// Start opens the terminal screen in raw input mode and begins decoding key
// events onto the returned channel from a dedicated goroutine. The returned
// stop function closes the screen and waits for that goroutine to exit,
// closing the channel.
func Start(logger *log.Logger) (events <-chan KeyEvent, stop func(), err error) {
	if logger == nil {
		logger = log.Default()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, nil, fmt.Errorf("input: creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, nil, fmt.Errorf("input: initializing screen: %w", err)
	}
	screen.HideCursor()

	out := make(chan KeyEvent)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(out)
		for {
			ev := screen.PollEvent()
			switch e := ev.(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ke, ok := decodeKey(logger, e); ok {
					out <- ke
				}
			}
		}
	}()

	stop = func() {
		screen.Fini()
		<-done
	}
	return out, stop, nil
}

func decodeKey(logger *log.Logger, e *tcell.EventKey) (KeyEvent, bool) {
	code, ok := keyCode(e)
	if !ok {
		logger.Debug("input: unrepresentable key event, ignoring", "key", e.Key())
		return KeyEvent{}, false
	}
	return KeyEvent{Code: code, Mods: modifiers(e.Modifiers())}, true
}

func keyCode(e *tcell.EventKey) (string, bool) {
	if e.Key() == tcell.KeyRune {
		r := e.Rune()
		switch {
		case r >= 'A' && r <= 'Z':
			return string(r - 'A' + 'a'), true
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return string(r), true
		case r == '`' || r == '=' || r == '{' || r == '}' || r == '\\':
			return string(r), true
		case r == '-':
			return "<DASH>", true
		default:
			return "", false
		}
	}
	if e.Key() == tcell.KeyEscape {
		return "<ESC>", true
	}
	return "", false
}

func modifiers(tm tcell.ModMask) keyspec.Modifiers {
	var mods keyspec.Modifiers
	if tm&tcell.ModCtrl != 0 {
		mods |= keyspec.Ctrl
	}
	if tm&tcell.ModShift != 0 {
		mods |= keyspec.Shift
	}
	if tm&tcell.ModAlt != 0 {
		mods |= keyspec.Alt
	}
	if tm&tcell.ModMeta != 0 {
		mods |= keyspec.Super
	}
	return mods
}
