package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstrumentSeedsNoteFromTemplate(t *testing.T) {
	inst := NewInstrument(KindHoldButton, SignalSine)
	inst.SetParam(Params{Pitch: 220, Amplitude: 0.5})

	n := inst.Note(44100)
	hb, ok := n.(*HeldButtonNote)
	if !ok {
		t.Fatalf("expected *HeldButtonNote, got %T", n)
	}
	assert.Equal(t, 220.0, hb.params.Pitch)
	assert.Equal(t, 0.5, hb.params.Amplitude)
}

func TestPressButtonIgnoresMute(t *testing.T) {
	inst := NewInstrument(KindPressButton, SignalSine)
	n := inst.Note(44100)
	n.Mute()
	pb := n.(*PressButtonNote)
	assert.Equal(t, int64(pb.adsr.Attack+pb.adsr.Decay), pb.mutedAt)
}
