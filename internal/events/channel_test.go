package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelFIFO(t *testing.T) {
	c := NewChannel(10)
	c.Send(&Message{Instrument: InstrumentEvent{InstrumentID: 1, Note: &NoteEvent{Payload: Hit{}}}})
	c.Send(&Message{Instrument: InstrumentEvent{InstrumentID: 2, Note: &NoteEvent{Payload: Hit{}}}})

	m1 := c.Recv()
	m2 := c.Recv()
	require.NotNil(t, m1)
	require.NotNil(t, m2)
	assert.Equal(t, uint32(1), m1.Instrument.InstrumentID)
	assert.Equal(t, uint32(2), m2.Instrument.InstrumentID)
}

func TestChannelShutdownIsNil(t *testing.T) {
	c := NewChannel(10)
	c.Shutdown()
	msg := c.Recv()
	assert.Nil(t, msg)
}

func TestChannelDropsOldestParamWhenFull(t *testing.T) {
	c := NewChannel(2)
	c.Send(&Message{Instrument: InstrumentEvent{InstrumentID: 1, Payload: SetParam{}}})
	c.Send(&Message{Instrument: InstrumentEvent{InstrumentID: 2, Note: &NoteEvent{Payload: Hit{}}}})
	// queue is full; next send should evict the oldest param-only message,
	// not the Hit.
	c.Send(&Message{Instrument: InstrumentEvent{InstrumentID: 3, Payload: SetParam{}}})

	first := c.Recv()
	second := c.Recv()
	assert.Equal(t, uint32(2), first.Instrument.InstrumentID, "the Hit must survive")
	assert.Equal(t, uint32(3), second.Instrument.InstrumentID)
}

func TestChannelRetainsAllHitsWhenFull(t *testing.T) {
	c := NewChannel(1)
	c.Send(&Message{Instrument: InstrumentEvent{InstrumentID: 1, Note: &NoteEvent{Payload: Hit{}}}})
	c.Send(&Message{Instrument: InstrumentEvent{InstrumentID: 2, Payload: Mute{}}})

	first := c.Recv()
	second := c.Recv()
	assert.Equal(t, uint32(1), first.Instrument.InstrumentID)
	assert.Equal(t, uint32(2), second.Instrument.InstrumentID)
}

func TestTryRecvNonBlocking(t *testing.T) {
	c := NewChannel(10)
	_, ok := c.TryRecv()
	assert.False(t, ok)

	c.Send(&Message{})
	msg, ok := c.TryRecv()
	assert.True(t, ok)
	assert.NotNil(t, msg)
}
