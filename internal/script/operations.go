package script

import (
	"chordrack/internal/dispatch"
	"chordrack/internal/events"
	"chordrack/internal/keyspec"
	"chordrack/internal/synth"
	"chordrack/internal/timer"

	lua "github.com/yuin/gopher-lua"
)

type modeChordKey struct {
	mode  uint32
	chord dispatch.KeyChord
}

func (b *Bridge) actionsMap() map[modeChordKey]lua.LValue {
	if b.actions == nil {
		b.actions = make(map[modeChordKey]lua.LValue)
	}
	return b.actions
}

func (b *Bridge) wrapEffect(L *lua.LState, fn lua.LValue) dispatch.Callback {
	if fn == nil || fn == lua.LNil {
		return nil
	}
	return func(chord dispatch.KeyChord) {
		chordTbl := L.NewTable()
		L.SetField(chordTbl, "key", lua.LString(chord.Key))
		L.SetField(chordTbl, "mods", lua.LNumber(chord.Mods))
		L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, chordTbl)
	}
}

func (b *Bridge) luaMkMode(L *lua.LState) int {
	name := L.CheckString(1)
	defaultNext := uint32(L.CheckInt(2))
	defaultAction := L.Get(3)

	id, err := b.Dispatch.MkMode(name, defaultNext, b.wrapEffect(L, defaultAction))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(id))
	return 1
}

func (b *Bridge) luaBind(L *lua.LState) int {
	mode := uint32(L.CheckInt(1))
	chordStr := L.CheckString(2)
	action := L.Get(3)
	var nextPtr *uint32
	if n, ok := L.Get(4).(lua.LNumber); ok {
		v := uint32(n)
		nextPtr = &v
	}

	chord, err := keyspec.Parse(chordStr)
	if err != nil {
		return raiseKeyspecError(L, err)
	}

	_, existed, err := b.Dispatch.Bind(mode, chord, b.wrapEffect(L, action), nextPtr)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}

	key := modeChordKey{mode: mode, chord: chord}
	prevLua := lua.LValue(lua.LNil)
	if existed {
		if v, ok := b.actionsMap()[key]; ok {
			prevLua = v
		}
	}
	b.actionsMap()[key] = action
	L.Push(prevLua)
	return 1
}

func (b *Bridge) luaBindUp(L *lua.LState) int {
	mode := uint32(L.CheckInt(1))
	chordStr := L.CheckString(2)
	action := L.Get(3)

	chord, err := keyspec.Parse(chordStr)
	if err != nil {
		return raiseKeyspecError(L, err)
	}

	prev, err := b.Dispatch.BindUp(mode, chord, b.wrapEffect(L, action))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	if prev == nil {
		L.Push(lua.LNil)
	} else {
		// The previous up-action's original Lua value isn't separately
		// tracked (bindUp doesn't participate in the press/release action
		// table); returning true signals "there was one" without fabricating
		// a Lua function identity we never stored.
		L.Push(lua.LTrue)
	}
	return 1
}

func (b *Bridge) luaUnbind(L *lua.LState) int {
	mode := uint32(L.CheckInt(1))
	chordStr := L.CheckString(2)

	chord, err := keyspec.Parse(chordStr)
	if err != nil {
		return raiseKeyspecError(L, err)
	}

	_, existed, err := b.Dispatch.Unbind(mode, chord)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}

	key := modeChordKey{mode: mode, chord: chord}
	prevLua := lua.LValue(lua.LNil)
	if existed {
		if v, ok := b.actionsMap()[key]; ok {
			prevLua = v
		}
	}
	delete(b.actionsMap(), key)
	L.Push(prevLua)
	return 1
}

func (b *Bridge) luaMkInstrument(L *lua.LState) int {
	kind := synth.Kind(L.CheckInt(1))
	signal := synth.SignalKind(L.CheckInt(2))
	id := uint32(len(b.Instruments))
	b.Instruments = append(b.Instruments, synth.NewInstrument(kind, signal))
	L.Push(lua.LNumber(id))
	return 1
}

// playArgs parses the common (instrument, pitch?, voice?, duration?)
// argument shape shared by mkPlay and play.
func (b *Bridge) playArgs(L *lua.LState, base int) (instrument uint32, pitch *float64, voice uint32, duration *float64) {
	instrument = uint32(L.CheckInt(base))
	if n, ok := L.Get(base + 1).(lua.LNumber); ok {
		v := float64(n)
		pitch = &v
	}
	voice = 0
	if n, ok := L.Get(base + 2).(lua.LNumber); ok {
		voice = uint32(n)
	}
	if n, ok := L.Get(base + 3).(lua.LNumber); ok {
		v := float64(n)
		duration = &v
	}
	return
}

func (b *Bridge) doPlay(instrument uint32, pitch *float64, voice uint32, duration *float64) {
	if pitch != nil {
		b.Events.Send(&events.Message{Instrument: events.InstrumentEvent{
			InstrumentID: instrument,
			Payload:      events.SetParam{Param: events.ParamPatch{Pitch: pitch}},
		}})
	}
	b.Events.Send(&events.Message{Instrument: events.InstrumentEvent{
		InstrumentID: instrument,
		Note:         &events.NoteEvent{Voice: voice, Payload: events.Hit{}},
	}})
	if duration != nil {
		b.Timers.OnTimeout(b.Now(), *duration, func() { b.doMute(instrument, voice) })
	}
}

func (b *Bridge) doMute(instrument uint32, voice uint32) {
	b.Events.Send(&events.Message{Instrument: events.InstrumentEvent{
		InstrumentID: instrument,
		Note:         &events.NoteEvent{Voice: voice, Payload: events.Mute{}},
	}})
}

func (b *Bridge) luaMkPlay(L *lua.LState) int {
	instrument, pitch, voice, duration := b.playArgs(L, 1)
	fn := L.NewFunction(func(L *lua.LState) int {
		b.doPlay(instrument, pitch, voice, duration)
		return 0
	})
	L.Push(fn)
	return 1
}

func (b *Bridge) luaMkMute(L *lua.LState) int {
	instrument := uint32(L.CheckInt(1))
	voice := uint32(0)
	if n, ok := L.Get(2).(lua.LNumber); ok {
		voice = uint32(n)
	}
	fn := L.NewFunction(func(L *lua.LState) int {
		b.doMute(instrument, voice)
		return 0
	})
	L.Push(fn)
	return 1
}

func (b *Bridge) luaPlay(L *lua.LState) int {
	instrument, pitch, voice, duration := b.playArgs(L, 1)
	b.doPlay(instrument, pitch, voice, duration)
	return 0
}

func (b *Bridge) luaMute(L *lua.LState) int {
	instrument := uint32(L.CheckInt(1))
	voice := uint32(0)
	if n, ok := L.Get(2).(lua.LNumber); ok {
		voice = uint32(n)
	}
	b.doMute(instrument, voice)
	return 0
}

func (b *Bridge) luaSetTempo(L *lua.LState) int {
	b.Timers.SetTempo(float64(L.CheckNumber(1)))
	return 0
}

func (b *Bridge) luaGetTempo(L *lua.LState) int {
	L.Push(lua.LNumber(b.Timers.GetTempo()))
	return 1
}

// luaOnBeat and luaOnTimeout's Scheduler callbacks fire from whichever
// goroutine calls Scheduler.Tick (the render thread, per
// render.Loop.produceFrame). They must not touch L directly from there, so
// they only enqueue the actual Lua call onto Bridge.fired for the UI
// thread to run.
func (b *Bridge) luaOnBeat(L *lua.LState) int {
	division := float64(L.CheckNumber(1))
	callback := L.CheckFunction(2)
	h := b.Timers.OnBeat(b.Now(), division, func() {
		b.enqueueFired(func() {
			L.CallByParam(lua.P{Fn: callback, NRet: 0, Protect: true})
		})
	})
	L.Push(lua.LNumber(h))
	return 1
}

func (b *Bridge) luaOnTimeout(L *lua.LState) int {
	seconds := float64(L.CheckNumber(1))
	callback := L.CheckFunction(2)
	h := b.Timers.OnTimeout(b.Now(), seconds, func() {
		b.enqueueFired(func() {
			L.CallByParam(lua.P{Fn: callback, NRet: 0, Protect: true})
		})
	})
	L.Push(lua.LNumber(h))
	return 1
}

func (b *Bridge) luaCancelTimer(L *lua.LState) int {
	h := timer.Handle(uint64(L.CheckNumber(1)))
	b.Timers.CancelTimer(h)
	return 0
}
