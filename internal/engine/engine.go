// Package engine wires the whole chordrack process together: the render
// queue, the event channel, the dispatch machine, the timer scheduler, the
// scripting bridge that a config script drives, the render loop's dedicated
// goroutine, the keyboard-reading UI goroutine, and the portaudio output
// stream.
//
// Grounded on justyntemme-clapgo's pkg/host wiring (one constructor function
// assembling every collaborator in dependency order, returning a single
// handle with Run/Close), adapted from a CLAP host's plugin lifecycle to
// chordrack's config-script-driven process lifecycle.
package engine

import (
	"fmt"
	"sync"

	"chordrack/internal/clock"
	"chordrack/internal/device"
	"chordrack/internal/dispatch"
	"chordrack/internal/events"
	"chordrack/internal/input"
	"chordrack/internal/render"
	"chordrack/internal/rtqueue"
	"chordrack/internal/script"
	"chordrack/internal/timer"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
)

// DefaultSampleRate is the sample rate of the render queue, the instruments,
// the timer scheduler and the output stream alike. The device's own default
// sample rate is not queried; the stream is opened at this rate.
const DefaultSampleRate = 44100

// DefaultChannels is the number of output channels opened on the default
// device, broadcasting the same mixed sample to each.
const DefaultChannels = 2

// Engine owns every long-lived collaborator in the running process.
//
// *lua.LState has no internal locking and dispatch.Machine has no mutex of
// its own, so exactly one goroutine may ever touch lua or dispatch: the
// goroutine Run starts as uiLoop. The render loop's goroutine never reaches
// either — onBeat/onTimeout callbacks it triggers via timers.Tick are
// wrapped by the scripting bridge to land on bridge.Fired() instead of
// calling lua directly, and uiLoop is the sole consumer of that channel.
type Engine struct {
	queue    *rtqueue.Queue
	events   *events.Channel
	dispatch *dispatch.Machine
	timers   *timer.Scheduler
	bridge   *script.Bridge
	loop     *render.Loop
	stream   *device.Stream
	log      *log.Logger

	lua *lua.LState

	keyEvents <-chan input.KeyEvent
	stopInput func()
	stopOnce  sync.Once
}

// New constructs an Engine with every collaborator wired together and runs
// the config script at configPath once, letting it populate instruments,
// modes and bindings through chordrack.mkInstrument/mkMode/bind. No render
// loop or UI goroutine runs until Run.
func New(configPath string, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.Default()
	}

	q := rtqueue.New(rtqueue.DefaultCapacity, DefaultSampleRate, clock.Instant(0))
	ch := events.NewChannel(events.DefaultCapacity)
	d := dispatch.NewMachine(logger)
	timers := timer.NewScheduler(DefaultSampleRate)

	bridge := script.NewBridge(d, ch, timers, func() clock.Instant { return q.HeadTime() }, logger)

	L := lua.NewState()
	bridge.Install(L)

	if err := script.Load(L, configPath); err != nil {
		L.Close()
		return nil, fmt.Errorf("engine: loading config: %w", err)
	}

	loop := render.New(bridge.Instruments, q, ch, timers, DefaultSampleRate, logger)

	stream, err := device.OpenDefaultStream(q, DefaultSampleRate, DefaultChannels, logger)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("engine: opening audio device: %w", err)
	}

	keyEvents, stopInput, err := input.Start(logger)
	if err != nil {
		stream.Stop()
		L.Close()
		return nil, fmt.Errorf("engine: starting keyboard input: %w", err)
	}

	return &Engine{
		queue:     q,
		events:    ch,
		dispatch:  d,
		timers:    timers,
		bridge:    bridge,
		loop:      loop,
		stream:    stream,
		log:       logger,
		lua:       L,
		keyEvents: keyEvents,
		stopInput: stopInput,
	}, nil
}

// Dispatch exposes the key-dispatch machine for inspection (e.g. tests
// asserting on bound modes). Press/Release are driven exclusively by
// uiLoop; callers must not call them concurrently with a running Engine.
func (e *Engine) Dispatch() *dispatch.Machine { return e.dispatch }

// Run starts the render loop and the keyboard-reading UI loop on their own
// goroutines and the audio stream, and blocks until the render loop stops
// (via Close's Shutdown) or the stream fails to start.
func (e *Engine) Run() error {
	renderDone := make(chan struct{})
	go func() {
		e.loop.Run()
		close(renderDone)
	}()

	uiDone := make(chan struct{})
	go e.uiLoop(uiDone)

	if err := e.stream.Start(); err != nil {
		e.events.Shutdown()
		<-renderDone
		e.stopUI()
		<-uiDone
		return fmt.Errorf("engine: starting stream: %w", err)
	}

	<-renderDone
	e.stopUI()
	<-uiDone
	return nil
}

// uiLoop is the sole goroutine that ever calls dispatch.Press/Release or
// runs a scripting-bridge callback, eliminating the concurrent access to
// *lua.LState and dispatch.Machine's unsynchronized maps that calling
// either from more than one goroutine would cause. It exits once keyEvents
// is closed by stopInput.
func (e *Engine) uiLoop(done chan<- struct{}) {
	defer close(done)
	fired := e.bridge.Fired()
	for {
		select {
		case ke, ok := <-e.keyEvents:
			if !ok {
				return
			}
			e.dispatch.Press(ke.Code, ke.Mods)
			e.dispatch.Release(ke.Code)
		case cb := <-fired:
			cb()
		}
	}
}

func (e *Engine) stopUI() {
	e.stopOnce.Do(e.stopInput)
}

// Close shuts the render loop down, stops keyboard input, stops the audio
// stream, and releases the scripting VM. Safe to call once, after Run has
// returned or to interrupt it from another goroutine.
func (e *Engine) Close() error {
	e.events.Shutdown()
	e.stopUI()
	if err := e.stream.Stop(); err != nil {
		e.log.Warn("engine: stopping stream", "err", err)
	}
	e.lua.Close()
	return nil
}
