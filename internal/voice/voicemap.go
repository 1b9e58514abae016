// Package voice implements the (instrument, voice) -> (start_frame, Note)
// map from spec §3/§4.3. It is owned exclusively by the render thread; no
// synchronization is needed inside the map itself (see spec §5: "Instruments
// and voice map are not shared: the render thread is their sole mutator").
//
// Grounded on justyntemme-clapgo's pkg/audio/voice.go VoiceManager, adapted
// from its polyphonic-pool/voice-stealing model (fixed-size slice of
// pre-allocated voices, steal-oldest policy) to the spec's exact-key map
// model: one note per (instrument, voice) pair, no stealing, displacement
// instead mutes and immediately drops the old note.
package voice

import (
	"chordrack/internal/clock"
	"chordrack/internal/synth"
)

// Key identifies a voice slot.
type Key struct {
	InstrumentID uint32
	VoiceID      uint32
}

// Entry pairs a Note with the absolute frame at which it started.
type Entry struct {
	StartFrame clock.Instant
	Note       synth.Note
}

// Map is the voice map. Zero value is ready to use.
type Map struct {
	entries map[Key]*Entry
}

// NewMap constructs an empty voice map.
func NewMap() *Map {
	return &Map{entries: make(map[Key]*Entry)}
}

// Insert places note at key, starting at startFrame. If a note already
// occupies that slot it is muted first (spec §4.3: "if a note previously
// occupied that slot, mute it ... the displaced note is dropped from the
// map"), then replaced — so the displaced note never renders again after
// this call, per spec's "Displaced-note audibility" design note.
func (m *Map) Insert(key Key, startFrame clock.Instant, note synth.Note) {
	if m.entries == nil {
		m.entries = make(map[Key]*Entry)
	}
	if existing, ok := m.entries[key]; ok {
		existing.Note.Mute()
	}
	m.entries[key] = &Entry{StartFrame: startFrame, Note: note}
}

// Get returns the entry at key, or nil if absent.
func (m *Map) Get(key Key) *Entry {
	return m.entries[key]
}

// Delete removes the entry at key.
func (m *Map) Delete(key Key) {
	delete(m.entries, key)
}

// Len returns the number of live entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// RetireFinished walks the map, removing any note whose Finished(retired -
// start) reports true, and returns the mixed sum of render(now - start)
// across the remaining notes — spec §4.3 step 2's per-frame production
// algorithm.
func (m *Map) RetireFinished(now, retired clock.Instant) float32 {
	var sum float32
	for key, entry := range m.entries {
		relativeRetired := retired.Sub(entry.StartFrame)
		if entry.Note.Finished(uint64(relativeRetired)) {
			delete(m.entries, key)
			continue
		}
		relativeNow := now.Sub(entry.StartFrame)
		sum += entry.Note.Render(uint64(relativeNow))
	}
	return sum
}

// Each calls fn for every live entry. fn must not mutate the map.
func (m *Map) Each(fn func(Key, *Entry)) {
	for k, e := range m.entries {
		fn(k, e)
	}
}
