package events

import "sync"

// DefaultCapacity bounds the channel before the drop-oldest policy kicks
// in. This resolves spec §9's open back-pressure question in favor of the
// documented bounded alternative: "a bounded channel with a drop-oldest
// policy on parameter events (retaining all hit/mute events)."
const DefaultCapacity = 256

// Channel is the multi-producer/single-consumer event queue from spec §2.
// Multiple UI-thread goroutines (or scripting callbacks) may Send
// concurrently; exactly one render loop goroutine calls Recv.
type Channel struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	queue    []*Message
	capacity int
	closed   bool
}

// NewChannel constructs a channel with the given capacity (DefaultCapacity
// if capacity <= 0).
func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Channel{capacity: capacity}
	c.notEmpty = sync.NewCond(&c.mu)
	return c
}

// Send enqueues msg, applying the drop-oldest policy to the oldest
// parameter-only event in the queue if it is full. Hit and Mute events are
// never dropped; if the queue is full of only those, it is allowed to grow
// past capacity rather than lose one.
func (c *Channel) Send(msg *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if len(c.queue) >= c.capacity {
		c.dropOldestParamLocked()
	}
	c.queue = append(c.queue, msg)
	c.notEmpty.Signal()
}

// Shutdown sends the nil sentinel that terminates the render loop.
func (c *Channel) Shutdown() {
	c.Send(nil)
}

// Recv blocks until a message is available and returns it. A nil message
// signals shutdown.
func (c *Channel) Recv() *Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.queue) == 0 {
		c.notEmpty.Wait()
	}
	msg := c.queue[0]
	c.queue = c.queue[1:]
	return msg
}

// TryRecv returns the next message without blocking, or (nil, false) if
// the queue is empty. This is what the render loop's non-blocking drain
// (spec §4.3 step 1) uses.
func (c *Channel) TryRecv() (*Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil, false
	}
	msg := c.queue[0]
	c.queue = c.queue[1:]
	return msg, true
}

func (c *Channel) dropOldestParamLocked() {
	for i, msg := range c.queue {
		if msg == nil {
			continue
		}
		if isParamOnly(msg) {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

func isParamOnly(msg *Message) bool {
	if msg.Instrument.Note != nil {
		_, ok := msg.Instrument.Note.Payload.(SetParam)
		return ok
	}
	_, ok := msg.Instrument.Payload.(SetParam)
	return ok
}
