package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const deliveryAttempts = 3

// Emitter dispatches lifecycle events to registered listeners.
// Delivery is asynchronous relative to Publish and FIFO for events of
// the same request; events of different requests are delivered
// independently and may interleave. Each event is attempted at least
// once per listener, with a bounded retry: after deliveryAttempts
// failures the event is logged and dropped for that listener.
type Emitter struct {
	log       *zap.Logger
	listeners []Listener

	mu     sync.Mutex
	queues map[string][]Event
	closed bool
	wg     sync.WaitGroup
}

var _ Publisher = (*Emitter)(nil)

func NewEmitter(log *zap.Logger, listeners ...Listener) *Emitter {
	return &Emitter{
		log:       log.Named("events"),
		listeners: listeners,
		queues:    make(map[string][]Event),
	}
}

// Publish enqueues the event and returns immediately. A slow listener
// never stalls the transition that emitted the event.
func (e *Emitter) Publish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.log.Warn("publish on closed emitter", zap.String("requestId", ev.RequestID))
		return
	}
	queue, running := e.queues[ev.RequestID]
	e.queues[ev.RequestID] = append(queue, ev)
	if !running {
		e.wg.Add(1)
		go e.drain(ev.RequestID)
	}
}

// drain delivers the request's queue head by head until it is empty.
// One drainer per request at a time keeps per-request ordering.
func (e *Emitter) drain(requestID string) {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		queue := e.queues[requestID]
		if len(queue) == 0 {
			delete(e.queues, requestID)
			e.mu.Unlock()
			return
		}
		ev := queue[0]
		e.queues[requestID] = queue[1:]
		e.mu.Unlock()

		e.deliver(ev)
	}
}

func (e *Emitter) deliver(ev Event) {
	for _, l := range e.listeners {
		var err error
		for attempt := 0; attempt < deliveryAttempts; attempt++ {
			if err = l.Handle(context.Background(), ev); err == nil {
				break
			}
			time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
		}
		if err != nil {
			e.log.Error("listener gave up",
				zap.String("eventId", ev.ID),
				zap.String("kind", string(ev.Kind)),
				zap.String("requestId", ev.RequestID),
				zap.Error(err))
		}
	}
}

// Close stops accepting events and waits until in-flight queues flush.
func (e *Emitter) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.wg.Wait()
}
