package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingEffect(fired *[]KeyChord) Callback {
	return func(c KeyChord) { *fired = append(*fired, c) }
}

func TestModifierPrecedence(t *testing.T) {
	m := NewMachine(nil)
	var fired []KeyChord

	_, _, err := m.Bind(0, KeyChord{Key: "a", Mods: Ctrl}, recordingEffect(&fired), nil)
	require.NoError(t, err)
	_, _, err = m.Bind(0, KeyChord{Key: "a", Mods: Ctrl | Shift}, recordingEffect(&fired), nil)
	require.NoError(t, err)

	m.Press("a", Ctrl|Shift)
	require.Len(t, fired, 1)
	assert.Equal(t, Ctrl|Shift, fired[0].Mods, "C-S-a binding must win over C-a when both exist")
	m.Release("a")

	_, _, err = m.Unbind(0, KeyChord{Key: "a", Mods: Ctrl | Shift})
	require.NoError(t, err)

	fired = nil
	m.Press("a", Ctrl|Shift)
	require.Len(t, fired, 1)
	assert.Equal(t, Ctrl, fired[0].Mods, "falls back to C-a once C-S-a is removed")
	m.Release("a")

	_, _, err = m.Unbind(0, KeyChord{Key: "a", Mods: Ctrl})
	require.NoError(t, err)

	fired = nil
	var defaultFired []KeyChord
	m2 := NewMachine(nil)
	m2.modes[0].Default = KeyAction{Effect: recordingEffect(&defaultFired)}
	m2.Press("a", Shift)
	require.Len(t, defaultFired, 1)
}

func TestReleaseRoutesToBindingFromPressTime(t *testing.T) {
	m := NewMachine(nil)
	var upFired []KeyChord

	next := uint32(1)
	_, err := m.MkMode("Other", 0, nil)
	require.NoError(t, err)

	_, _, err = m.Bind(0, KeyChord{Key: "a", Mods: 0}, func(KeyChord) {}, &next)
	require.NoError(t, err)
	_, err = m.BindUp(0, KeyChord{Key: "a", Mods: 0}, recordingEffect(&upFired))
	require.NoError(t, err)

	m.Press("a", 0)
	assert.Equal(t, uint32(1), m.CurrentState(), "press transitions to next_state")

	// A binding on (Other, a, 0) must NOT be what fires on release: the
	// release handler attached at press time (mode 0) must run instead.
	_, _, err = m.Bind(1, KeyChord{Key: "a", Mods: 0}, func(KeyChord) {}, nil)
	require.NoError(t, err)

	m.Release("a")
	require.Len(t, upFired, 1, "release must invoke the handler bound under the mode active at press time")
}

func TestBindUpWithoutPriorBindFails(t *testing.T) {
	m := NewMachine(nil)
	_, err := m.BindUp(0, KeyChord{Key: "z", Mods: 0}, func(KeyChord) {})
	assert.ErrorIs(t, err, ErrNoPriorBinding)
}

func TestMutationDuringCallbackIsRejected(t *testing.T) {
	m := NewMachine(nil)
	var mutateErr error
	_, _, err := m.Bind(0, KeyChord{Key: "a", Mods: 0}, func(KeyChord) {
		_, _, mutateErr = m.Bind(0, KeyChord{Key: "b", Mods: 0}, func(KeyChord) {}, nil)
	}, nil)
	require.NoError(t, err)

	m.Press("a", 0)
	assert.ErrorIs(t, mutateErr, ErrReentrantMutation)
}

func TestReleaseOfUntrackedKeyWarnsAndReturns(t *testing.T) {
	m := NewMachine(nil)
	assert.NotPanics(t, func() { m.Release("never-pressed") })
}

func TestDefaultFiresWhenNoBindingMatches(t *testing.T) {
	var defaultFired []KeyChord
	m := NewMachine(nil)
	m.modes[0].Default = KeyAction{Effect: recordingEffect(&defaultFired)}
	m.Press("q", Alt)
	require.Len(t, defaultFired, 1)
	assert.Equal(t, Alt, defaultFired[0].Mods)
}
