package device

import (
	"fmt"
	"time"

	"chordrack/internal/rtqueue"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

// BufferSizeHint is the frames-per-buffer hint passed to the device,
// matching spec §6's "buffer-size hint of 256 frames."
const BufferSizeHint = MaxBufferConsumeSize

// Stream wraps a portaudio output stream driven by a Callback. Device
// selection, format negotiation and the host API itself are out of scope
// per spec §1 ("the sound-device host selection and format conversion glue"
// is an external collaborator); this is that collaborator's glue code.
type Stream struct {
	stream *portaudio.Stream
	cb     *Callback
	log    *log.Logger
}

// OpenDefaultStream opens the default output device at sampleRate with the
// given channel count, wiring queue as the sample source. It mirrors
// chriskillpack-modplayer's portaudio.OpenDefaultStream(in, out, rate,
// framesPerBuffer, callback) usage, substituting a float32 slice callback
// (the callback always writes float32 samples, passed through unchanged by
// convertIdentity).
func OpenDefaultStream(queue *rtqueue.Queue, sampleRate float64, channels int, logger *log.Logger) (*Stream, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("device: initialize portaudio: %w", err)
	}

	cb := NewCallback(queue, channels)
	s := &Stream{cb: cb, log: logger}

	paStream, err := portaudio.OpenDefaultStream(0, channels, sampleRate, BufferSizeHint, s.paCallback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("device: open default output stream: %w", err)
	}
	s.stream = paStream
	return s, nil
}

// paCallback is invoked by the PortAudio driver. It approximates the
// driver-supplied playback/callback timestamps from §4.2 with wall-clock
// time plus the stream's reported output latency, since the simple
// []float32-callback form this binding exposes does not hand us
// StreamCallbackTimeInfo directly.
func (s *Stream) paCallback(out []float32) {
	now := time.Now()
	playback := now
	if info := s.stream.Info(); info != nil {
		playback = now.Add(info.OutputLatency)
	}
	numFrames := len(out) / s.cb.channels
	if !Render(s.cb, out, numFrames, playback, now, convertIdentity) {
		for i := range out {
			out[i] = 0
		}
	}
}

func convertIdentity(mixed float32) float32 { return mixed }

// Start starts the underlying stream.
func (s *Stream) Start() error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("device: start stream: %w", err)
	}
	return nil
}

// Stop stops and closes the underlying stream, and terminates the
// portaudio library. Safe to call once.
func (s *Stream) Stop() error {
	if err := s.stream.Stop(); err != nil {
		s.log.Warn("device: stop stream", "err", err)
	}
	closeErr := s.stream.Close()
	if err := portaudio.Terminate(); err != nil {
		s.log.Warn("device: terminate portaudio", "err", err)
	}
	if closeErr != nil {
		return fmt.Errorf("device: close stream: %w", closeErr)
	}
	return nil
}
