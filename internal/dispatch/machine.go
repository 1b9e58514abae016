package dispatch

import (
	"errors"
	"fmt"

	"chordrack/internal/rtcheck"

	"github.com/charmbracelet/log"
)

// KeyCode is the textual key half of a chord (spec's KeyCode).
type KeyCode = string

// ErrReentrantMutation is returned by the mutation APIs (mkMode, bind,
// bindUp, unbind) when called from within an active effect callback, per
// spec §4.6: "mode mutation APIs ... are valid to call only outside any
// active effect, and attempting otherwise reports a clearly labeled
// failure."
var ErrReentrantMutation = rtcheck.ErrReentrant

// ErrNoSuchMode is returned when a mode index is out of range.
var ErrNoSuchMode = errors.New("dispatch: no such mode")

// ErrNoPriorBinding is returned by bindUp when no bind has been made for
// the chord yet (spec §4.7: "requires prior bind").
var ErrNoPriorBinding = errors.New("dispatch: bindUp requires a prior bind")

type pressRecord struct {
	priorState  uint32
	matchedMask Modifiers
}

// Machine is the dispatch state machine from spec §3/§4.6. Mode 0
// ("Normal") is created implicitly at construction and always present.
type Machine struct {
	modes        []*Mode
	currentState uint32
	pressed      map[KeyCode]pressRecord
	guard        rtcheck.ReentrancyGuard
	log          *log.Logger
}

// NewMachine constructs a dispatch machine with the implicit Normal mode
// (index 0) whose default action is a no-op that stays in Normal.
func NewMachine(logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.Default()
	}
	normal := newMode("Normal", KeyAction{NextState: 0})
	return &Machine{
		modes:   []*Mode{normal},
		pressed: make(map[KeyCode]pressRecord),
		log:     logger,
	}
}

// MkMode appends a new mode and returns its id. Refuses reentry.
func (m *Machine) MkMode(name string, defaultNext uint32, defaultAction Callback) (uint32, error) {
	if err := m.guard.CheckMutation(); err != nil {
		return 0, fmt.Errorf("dispatch: mkMode: %w", err)
	}
	id := uint32(len(m.modes))
	m.modes = append(m.modes, newMode(name, KeyAction{Effect: defaultAction, NextState: defaultNext}))
	return id, nil
}

// Bind sets the binding for chord in mode, returning the previous action if
// one existed. next, if nil, keeps the mode unchanged on match.
func (m *Machine) Bind(mode uint32, chord KeyChord, effect Callback, next *uint32) (prev KeyAction, existed bool, err error) {
	if err := m.guard.CheckMutation(); err != nil {
		return KeyAction{}, false, fmt.Errorf("dispatch: bind: %w", err)
	}
	mo, err := m.mode(mode)
	if err != nil {
		return KeyAction{}, false, err
	}
	nextState := mode
	if next != nil {
		nextState = *next
	}
	prev, existed = mo.Keys[chord]
	mo.Keys[chord] = KeyAction{Effect: effect, NextState: nextState}
	return prev, existed, nil
}

// BindUp sets the release handler for an already-bound chord.
func (m *Machine) BindUp(mode uint32, chord KeyChord, effectUp Callback) (prev Callback, err error) {
	if err := m.guard.CheckMutation(); err != nil {
		return nil, fmt.Errorf("dispatch: bindUp: %w", err)
	}
	mo, err := m.mode(mode)
	if err != nil {
		return nil, err
	}
	action, ok := mo.Keys[chord]
	if !ok {
		return nil, ErrNoPriorBinding
	}
	prev = action.EffectUp
	action.EffectUp = effectUp
	mo.Keys[chord] = action
	return prev, nil
}

// Unbind removes the binding for chord in mode, returning the previous
// action if one existed.
func (m *Machine) Unbind(mode uint32, chord KeyChord) (prev KeyAction, existed bool, err error) {
	if err := m.guard.CheckMutation(); err != nil {
		return KeyAction{}, false, fmt.Errorf("dispatch: unbind: %w", err)
	}
	mo, err := m.mode(mode)
	if err != nil {
		return KeyAction{}, false, err
	}
	prev, existed = mo.Keys[chord]
	delete(mo.Keys, chord)
	return prev, existed, nil
}

func (m *Machine) mode(id uint32) (*Mode, error) {
	if int(id) >= len(m.modes) {
		return nil, ErrNoSuchMode
	}
	return m.modes[id], nil
}

// Press implements spec §4.6's key-press algorithm.
func (m *Machine) Press(code KeyCode, mods Modifiers) {
	prior := m.currentState
	mo := m.modes[prior]

	mask, matched := matchMask(mods, func(candidate Modifiers) bool {
		_, ok := mo.Keys[KeyChord{Key: code, Mods: candidate}]
		return ok
	})

	if matched {
		action := mo.Keys[KeyChord{Key: code, Mods: mask}]
		m.currentState = action.NextState
		m.pressed[code] = pressRecord{priorState: prior, matchedMask: mask}
		m.invoke(action.Effect, KeyChord{Key: code, Mods: mask})
		return
	}

	m.currentState = mo.Default.NextState
	m.pressed[code] = pressRecord{priorState: prior, matchedMask: mods}
	m.invoke(mo.Default.Effect, KeyChord{Key: code, Mods: mods})
}

// Release implements spec §4.6's key-release algorithm.
func (m *Machine) Release(code KeyCode) {
	rec, ok := m.pressed[code]
	if !ok {
		m.log.Warn("dispatch: release for key with no recorded press", "code", code)
		return
	}
	delete(m.pressed, code)

	mo, err := m.mode(rec.priorState)
	if err != nil {
		m.log.Warn("dispatch: release for key whose mode no longer exists", "code", code)
		return
	}
	action, ok := mo.Keys[KeyChord{Key: code, Mods: rec.matchedMask}]
	if !ok {
		action = mo.Default
	}
	if action.EffectUp != nil {
		m.invoke(action.EffectUp, KeyChord{Key: code, Mods: rec.matchedMask})
	}
}

func (m *Machine) invoke(effect Callback, chord KeyChord) {
	if effect == nil {
		return
	}
	m.guard.RunCallback(func() { effect(chord) })
}

// CurrentState returns the index of the mode currently active.
func (m *Machine) CurrentState() uint32 { return m.currentState }
