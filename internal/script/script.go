// Package script embeds the gopher-lua scripting layer and exposes the
// fixed operation table from spec §4.7 as a Lua-callable namespace.
//
// Grounded on other_examples/manifests' IntuitionAmiga-IntuitionEngine and
// AndrewDonelson-retroforge-engine go.mod files, which both pull in
// github.com/yuin/gopher-lua for realtime engine scripting — the same role
// this package plays for chordrack's config script. The hosting-API shape
// here (a namespaced table of Go-backed functions registered on an
// *lua.LState, constant tables for enums, structured error values raised
// with L.Error) follows gopher-lua's own documented idioms, since neither
// manifest-only entry retrieved source code to imitate directly.
//
// gopher-lua's *lua.LState has no internal locking and dispatch.Machine has
// no mutex of its own (only a same-goroutine reentrancy flag), so exactly
// one goroutine may ever call into L or the Machine. onBeat/onTimeout
// callbacks fire from Scheduler.Tick on the render thread (spec §5:
// dispatch state is single-threaded on the UI side), so they must never
// call L directly from there. Instead they are wrapped to enqueue onto
// Bridge.fired, a render-thread -> UI-thread handoff; only the UI-owning
// goroutine (chosen at startup to be the sole caller of L and
// dispatch.Machine) drains Fired() and runs the callbacks it finds there.
package script

import (
	"fmt"

	"chordrack/internal/clock"
	"chordrack/internal/dispatch"
	"chordrack/internal/events"
	"chordrack/internal/keyspec"
	"chordrack/internal/synth"
	"chordrack/internal/timer"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
)

// firedQueueCapacity bounds how many onBeat/onTimeout firings may be
// pending for the UI thread before new ones are dropped with a warning
// rather than blocking the render thread that produced them.
const firedQueueCapacity = 256

// Bridge holds the Go-side state the scripting surface manipulates. It is
// constructed before the config script runs and outlives it: dispatch
// effects and timer callbacks continue to call back into it for the life
// of the process.
type Bridge struct {
	Dispatch    *dispatch.Machine
	Events      *events.Channel
	Timers      *timer.Scheduler
	Instruments []synth.Instrument
	Now         func() clock.Instant

	// actions mirrors dispatch bindings by (mode, chord) so bind/bindUp/
	// unbind can hand scripts back the original Lua function value of a
	// replaced binding, since dispatch.Callback is an opaque Go closure.
	actions map[modeChordKey]lua.LValue

	// fired carries onBeat/onTimeout callbacks from whichever goroutine
	// called Scheduler.Tick to the single goroutine that owns L. See the
	// package doc comment.
	fired chan func()
	log   *log.Logger
}

// NewBridge constructs a Bridge over already-built collaborators.
func NewBridge(d *dispatch.Machine, ch *events.Channel, timers *timer.Scheduler, now func() clock.Instant, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{
		Dispatch: d,
		Events:   ch,
		Timers:   timers,
		Now:      now,
		fired:    make(chan func(), firedQueueCapacity),
		log:      logger,
	}
}

// Fired returns the channel of pending onBeat/onTimeout callbacks. It must
// be drained only by the goroutine that owns L and Dispatch.
func (b *Bridge) Fired() <-chan func() { return b.fired }

// enqueueFired hands cb to the UI thread without blocking the caller (the
// render thread, inside Scheduler.Tick). A full queue means the UI thread
// has fallen far behind; the firing is dropped and logged rather than
// stalling render.
func (b *Bridge) enqueueFired(cb func()) {
	select {
	case b.fired <- cb:
	default:
		b.log.Warn("script: dropped onBeat/onTimeout callback, UI thread queue full")
	}
}

// Install registers the chordrack namespace table as a global on L, with
// its two constant tables (instruments, signals — spec §6) as fields of it.
func (b *Bridge) Install(L *lua.LState) {
	ns := L.NewTable()

	L.SetField(ns, "mkMode", L.NewFunction(b.luaMkMode))
	L.SetField(ns, "bind", L.NewFunction(b.luaBind))
	L.SetField(ns, "bindUp", L.NewFunction(b.luaBindUp))
	L.SetField(ns, "unbind", L.NewFunction(b.luaUnbind))
	L.SetField(ns, "mkInstrument", L.NewFunction(b.luaMkInstrument))
	L.SetField(ns, "mkPlay", L.NewFunction(b.luaMkPlay))
	L.SetField(ns, "mkMute", L.NewFunction(b.luaMkMute))
	L.SetField(ns, "play", L.NewFunction(b.luaPlay))
	L.SetField(ns, "mute", L.NewFunction(b.luaMute))
	L.SetField(ns, "setTempo", L.NewFunction(b.luaSetTempo))
	L.SetField(ns, "getTempo", L.NewFunction(b.luaGetTempo))
	L.SetField(ns, "onBeat", L.NewFunction(b.luaOnBeat))
	L.SetField(ns, "onTimeout", L.NewFunction(b.luaOnTimeout))
	L.SetField(ns, "cancelTimer", L.NewFunction(b.luaCancelTimer))

	instruments := L.NewTable()
	L.SetField(instruments, "HoldButton", lua.LNumber(synth.KindHoldButton))
	L.SetField(instruments, "PressButton", lua.LNumber(synth.KindPressButton))
	L.SetField(ns, "instruments", instruments)

	signals := L.NewTable()
	L.SetField(signals, "Sine", lua.LNumber(synth.SignalSine))
	L.SetField(signals, "BrownNoise", lua.LNumber(synth.SignalBrownNoise))
	L.SetField(ns, "signals", signals)

	L.SetGlobal("chordrack", ns)
}

// Load executes the script at path once, as the config file from spec §6.
func Load(L *lua.LState, path string) error {
	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("script: %s: %w", path, err)
	}
	return nil
}

// raiseKeyspecError surfaces a keyspec.ParseError to Lua as a structured
// error table {kind=string, text=string} rather than a bare string, per
// SPEC_FULL.md §10's supplement to spec §7's "returned through the
// scripting bridge as a structured error."
func raiseKeyspecError(L *lua.LState, err error) int {
	pe, ok := err.(*keyspec.ParseError)
	if !ok {
		L.RaiseError("%s", err.Error())
		return 0
	}
	tbl := L.NewTable()
	L.SetField(tbl, "kind", lua.LString(parseErrKindName(pe.Kind)))
	L.SetField(tbl, "text", lua.LString(pe.Text))
	L.Error(lua.LValue(tbl), 1)
	return 0
}

func parseErrKindName(k keyspec.ErrKind) string {
	switch k {
	case keyspec.ErrEmpty:
		return "Empty"
	case keyspec.ErrBadModifier:
		return "BadModifier"
	default:
		return "BadKey"
	}
}
