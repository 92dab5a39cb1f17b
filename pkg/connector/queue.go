package connector

import (
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
)

type event struct {
	typ      domain.EventType
	update   domain.HostContext
	snapshot domain.HostContext
	err      error
}

// eventQueue is an unbounded FIFO. Producers never block, so a slow hook
// cannot stall the transport.
type eventQueue struct {
	mu     sync.Mutex
	items  []event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{signal: make(chan struct{}, 1)}
}

// push appends an event. It reports false if the queue is closed.
func (q *eventQueue) push(e event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, e)
	q.mu.Unlock()
	q.wake()
	return true
}

// pop blocks until an event is available. After close, remaining events
// are still returned; ok is false once the queue is closed and drained.
func (q *eventQueue) pop() (event, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			e := q.items[0]
			q.items[0] = event{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return e, true
		}
		if q.closed {
			q.mu.Unlock()
			return event{}, false
		}
		q.mu.Unlock()
		<-q.signal
	}
}

func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
