package render

import (
	"testing"

	"chordrack/internal/events"
	"chordrack/internal/rtqueue"
	"chordrack/internal/synth"
	"chordrack/internal/timer"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoop() (*Loop, *synth.HeldButtonInstrument) {
	inst := synth.NewInstrument(synth.KindHoldButton, synth.SignalSine)
	q := rtqueue.New(rtqueue.DefaultCapacity, 44100, 0)
	ch := events.NewChannel(16)
	timers := timer.NewScheduler(44100)
	l := New([]synth.Instrument{inst}, q, ch, timers, 44100, log.Default())
	return l, inst
}

func TestHitAllocatesVoice(t *testing.T) {
	l, _ := newTestLoop()
	l.handle(&events.Message{Instrument: events.InstrumentEvent{
		InstrumentID: 0,
		Note:         &events.NoteEvent{Voice: 3, Payload: events.Hit{}},
	}})
	require.Equal(t, 1, l.voices.Len())
}

func TestMuteMissingVoiceIsNonFatal(t *testing.T) {
	l, _ := newTestLoop()
	assert.NotPanics(t, func() {
		l.handle(&events.Message{Instrument: events.InstrumentEvent{
			InstrumentID: 0,
			Note:         &events.NoteEvent{Voice: 1, Payload: events.Mute{}},
		}})
	})
}

func TestOutOfRangeInstrumentIsNonFatal(t *testing.T) {
	l, _ := newTestLoop()
	assert.NotPanics(t, func() {
		l.handle(&events.Message{Instrument: events.InstrumentEvent{
			InstrumentID: 99,
			Payload:      events.SetParam{},
		}})
	})
}

func TestProduceFrameSkipsWhenQueueFull(t *testing.T) {
	l, _ := newTestLoop()
	for l.queue.Len() < l.queue.Capacity() {
		_ = l.queue.Push(0)
	}
	before := l.queue.Len()
	l.produceFrame()
	assert.Equal(t, before, l.queue.Len(), "a full queue must not be pushed to")
}

func TestProduceFramePushesMixedSample(t *testing.T) {
	l, _ := newTestLoop()
	l.handle(&events.Message{Instrument: events.InstrumentEvent{
		InstrumentID: 0,
		Note:         &events.NoteEvent{Voice: 0, Payload: events.Hit{}},
	}})
	before := l.queue.Len()
	l.produceFrame()
	assert.Equal(t, before+1, l.queue.Len())
}

func TestDrainEventsStopsOnShutdown(t *testing.T) {
	l, _ := newTestLoop()
	l.events.Send(&events.Message{Instrument: events.InstrumentEvent{InstrumentID: 0, Payload: events.SetParam{}}})
	l.events.Shutdown()
	assert.False(t, l.drainEvents())
}
