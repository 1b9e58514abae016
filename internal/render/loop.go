// Package render implements the render loop from spec §4.3: the sole
// mutator of the instrument table and voice map, and the sole producer
// into the render queue.
//
// Grounded on justyntemme-clapgo's pkg/audio/process.go main-loop shape
// (drain events, then produce a block), restructured from CLAP's
// host-driven per-block Process callback into chordrack's self-paced,
// one-frame-per-iteration loop with its own dedicated, priority-elevated
// goroutine.
package render

import (
	"chordrack/internal/events"
	"chordrack/internal/priority"
	"chordrack/internal/rtqueue"
	"chordrack/internal/synth"
	"chordrack/internal/timer"
	"chordrack/internal/voice"

	"github.com/charmbracelet/log"
)

// Loop owns the instrument table and voice map and is the only goroutine
// that ever touches them, per spec §5: "Render thread. Owns instruments and
// voice map."
type Loop struct {
	instruments []synth.Instrument
	voices      *voice.Map
	queue       *rtqueue.Queue
	events      *events.Channel
	timers      *timer.Scheduler
	sampleRate  float64
	log         *log.Logger
}

// New constructs a render loop over the given instrument table, wired to
// queue for output, ch for incoming events, and timers for onBeat/onTimeout
// callbacks advanced by the frame clock rather than wall time.
func New(instruments []synth.Instrument, queue *rtqueue.Queue, ch *events.Channel, timers *timer.Scheduler, sampleRate float64, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{
		instruments: instruments,
		voices:      voice.NewMap(),
		queue:       queue,
		events:      ch,
		timers:      timers,
		sampleRate:  sampleRate,
		log:         logger,
	}
}

// Run elevates the calling goroutine's thread priority and then executes
// the loop body until a shutdown event is observed. It is meant to be the
// entire body of its own dedicated goroutine (it never returns except on
// shutdown).
func (l *Loop) Run() {
	if err := priority.Elevate(); err != nil {
		l.log.Warn("render: priority elevation failed, continuing at default priority", "err", err)
	}

	for {
		if !l.drainEvents() {
			return
		}
		l.produceFrame()
	}
}

// drainEvents performs spec §4.3 step 1: a non-blocking drain of every
// currently-queued event. It returns false iff a shutdown (nil *Message)
// was observed.
func (l *Loop) drainEvents() bool {
	for {
		msg, ok := l.events.TryRecv()
		if !ok {
			return true
		}
		if msg == nil {
			return false
		}
		l.handle(msg)
	}
}

func (l *Loop) handle(msg *events.Message) {
	ie := msg.Instrument
	iid := int(ie.InstrumentID)
	if iid < 0 || iid >= len(l.instruments) {
		l.log.Warn("render: event for out-of-range instrument", "instrument", ie.InstrumentID)
		return
	}
	inst := l.instruments[iid]

	if ie.Note != nil {
		l.handleNoteEvent(iid, inst, *ie.Note)
		return
	}
	switch payload := ie.Payload.(type) {
	case events.SetParam:
		inst.SetParam(patchToParams(payload.Param))
	default:
		l.log.Warn("render: unrecognized instrument event payload", "instrument", ie.InstrumentID)
	}
}

// handleNoteEvent dispatches a NoteEvent addressed to (iid, ne.Voice): Hit
// allocates a fresh Note from inst and inserts it (spec §4.3: "ask the
// instrument for a new Note, insert into the voice map at (iid, voice)"),
// SetParam and Mute forward to the existing occupant.
func (l *Loop) handleNoteEvent(iid int, inst synth.Instrument, ne events.NoteEvent) {
	key := voice.Key{InstrumentID: uint32(iid), VoiceID: ne.Voice}
	switch payload := ne.Payload.(type) {
	case events.Hit:
		now := l.queue.HeadTime()
		note := inst.Note(l.sampleRate)
		l.voices.Insert(key, now, note)
	case events.SetParam:
		entry := l.voices.Get(key)
		if entry == nil {
			l.log.Warn("render: SetParam for missing voice", "instrument", iid, "voice", ne.Voice)
			return
		}
		entry.Note.SetParam(patchToParams(payload.Param))
	case events.Mute:
		entry := l.voices.Get(key)
		if entry == nil {
			l.log.Warn("render: Mute for missing voice", "instrument", iid, "voice", ne.Voice)
			return
		}
		entry.Note.Mute()
	default:
		l.log.Warn("render: unrecognized note event payload", "instrument", iid, "voice", ne.Voice)
	}
}

// produceFrame implements spec §4.3 step 2: mix one frame's worth of live
// notes and push it onto the queue, or skip without busy-spinning if the
// queue is already full.
func (l *Loop) produceFrame() {
	if l.queue.Len() == l.queue.Capacity() {
		return
	}
	now := l.queue.HeadTime()
	retired := l.queue.TailTime()
	if l.timers != nil {
		l.timers.Tick(now)
	}
	sample := l.voices.RetireFinished(now, retired)
	// Summing multiple live voices (spec §4.3 step 2) can push the mix
	// outside [-1, 1]; soft-clip rather than let it clip hard downstream.
	sample = synth.SoftClip(sample)
	// The queue was known not-full a moment ago under a different lock
	// acquisition; a concurrent Pop can only have freed more room, so this
	// Push cannot fail with ErrFull.
	_ = l.queue.Push(sample)
}

func patchToParams(p events.ParamPatch) synth.Params {
	out := synth.Params{}
	if p.Pitch != nil {
		out.Pitch = *p.Pitch
	}
	if p.Amplitude != nil {
		out.Amplitude = *p.Amplitude
	}
	if p.Articulation != nil {
		out.Articulation = *p.Articulation
	}
	if len(p.Other) > 0 {
		out.Other = make(map[string]synth.OtherValue, len(p.Other))
		for k, v := range p.Other {
			out.Other[k] = synth.OtherValue{IsString: v.IsString, Float: v.Float, String: v.String}
		}
	}
	return out
}
