// Package rtcheck guards against dispatch-mutation APIs being invoked while
// a scripting callback is active, per spec §4.6/§5: "mode mutation APIs are
// valid to call only outside of any active effect, and attempting otherwise
// reports a clearly labeled failure."
//
// Grounded on justyntemme-clapgo's pkg/thread/check.go (Checker with an
// Assert* method per forbidden context) and pkg/thread/debug.go (a
// debug-build-only validator that panics loudly instead of returning an
// error) — here adapted from a host-extension-backed main/audio-thread
// split into a single in-callback flag, since chordrack has no CLAP host to
// ask.
package rtcheck

import (
	"errors"
	"sync/atomic"
)

// ErrReentrant is returned by a mode-mutation API invoked from within a
// scripting callback.
var ErrReentrant = errors.New("rtcheck: mode mutation called from within an active key callback")

// ReentrancyGuard tracks whether a callback is currently executing.
type ReentrancyGuard struct {
	inCallback atomic.Bool
}

// Enter marks the start of a callback invocation. Callers must defer Exit.
func (g *ReentrancyGuard) Enter() {
	g.inCallback.Store(true)
}

// Exit marks the end of a callback invocation.
func (g *ReentrancyGuard) Exit() {
	g.inCallback.Store(false)
}

// RunCallback invokes fn with the guard held for its duration.
func (g *ReentrancyGuard) RunCallback(fn func()) {
	g.Enter()
	defer g.Exit()
	fn()
}

// CheckMutation returns ErrReentrant if called while a callback is active;
// nil otherwise. Mutation APIs (bind, unbind, bindUp, mkMode) must call this
// before taking any effect.
func (g *ReentrancyGuard) CheckMutation() error {
	if g.inCallback.Load() {
		return ErrReentrant
	}
	return nil
}
