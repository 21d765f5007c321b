package events

import (
	"context"
	"errors"
	"sync"
)

// Sentinel errors returned by Loop.Post.
var (
	// ErrLoopFull is returned when the queue has no room for another event.
	ErrLoopFull = errors.New("events: loop queue full")

	// ErrLoopClosed is returned after Close.
	ErrLoopClosed = errors.New("events: loop closed")
)

// DefaultQueueSize is the queue capacity used when NewLoop is given zero.
const DefaultQueueSize = 256

// Loop serializes event handling onto a single goroutine. Every handler
// reachable from the bus runs to completion before the next event is
// dequeued, so component state needs no locking.
type Loop struct {
	bus   *Bus
	queue chan Event

	mu     sync.RWMutex
	closed bool
}

// NewLoop creates a loop that publishes onto bus.
func NewLoop(bus *Bus, size int) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{bus: bus, queue: make(chan Event, size)}
}

// Bus returns the bus events are published on.
func (l *Loop) Bus() *Bus {
	return l.bus
}

// Post enqueues ev without blocking. Safe for concurrent use; timers and
// connection readers both post here.
func (l *Loop) Post(ev Event) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrLoopClosed
	}
	select {
	case l.queue <- ev:
		return nil
	default:
		return ErrLoopFull
	}
}

// Run dispatches queued events until ctx is done or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-l.queue:
			if !ok {
				return nil
			}
			l.bus.Publish(ev)
		}
	}
}

// RunPending dispatches every event already queued and returns how many
// were handled. It never blocks. Must not be used concurrently with Run.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case ev, ok := <-l.queue:
			if !ok {
				return n
			}
			l.bus.Publish(ev)
			n++
		default:
			return n
		}
	}
}

// Len returns the number of queued events.
func (l *Loop) Len() int {
	return len(l.queue)
}

// Close stops accepting events. Run returns once the queue drains.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.queue)
}
