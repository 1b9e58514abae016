package voice

import (
	"testing"

	"chordrack/internal/clock"
	"chordrack/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNote struct {
	muteCalls int
	finished  bool
}

func (n *countingNote) SetParam(p synth.Params)       {}
func (n *countingNote) Mute()                         { n.muteCalls++ }
func (n *countingNote) Render(t uint64) float32       { return 0 }
func (n *countingNote) Finished(retired uint64) bool  { return n.finished }

var _ synth.Note = (*countingNote)(nil)

func TestInsertDisplacesAndMutesExactlyOnce(t *testing.T) {
	m := NewMap()
	key := Key{InstrumentID: 1, VoiceID: 2}

	first := &countingNote{}
	second := &countingNote{}

	m.Insert(key, clock.Instant(0), first)
	require.Equal(t, 1, m.Len())

	m.Insert(key, clock.Instant(10), second)
	assert.Equal(t, 1, first.muteCalls, "displaced note must be muted exactly once")
	assert.Equal(t, 1, m.Len(), "at most one live note per key")

	entry := m.Get(key)
	require.NotNil(t, entry)
	assert.Same(t, second, entry.Note)
}

func TestVoiceUniquenessAcrossKeys(t *testing.T) {
	m := NewMap()
	m.Insert(Key{InstrumentID: 1, VoiceID: 1}, clock.Instant(0), &countingNote{})
	m.Insert(Key{InstrumentID: 1, VoiceID: 2}, clock.Instant(0), &countingNote{})
	m.Insert(Key{InstrumentID: 2, VoiceID: 1}, clock.Instant(0), &countingNote{})
	assert.Equal(t, 3, m.Len())
}
