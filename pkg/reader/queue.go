package reader

import (
	"container/list"
	"context"
	"sync"
)

// DefaultQueueSize is the default capacity of the hand-off queue.
const DefaultQueueSize = 64

// Queue is the bounded hand-off between the Loop and the consumer goroutine.
// Publish blocks while the queue is full, so events are neither dropped nor
// reordered.
type Queue struct {
	events chan Event

	subsLock sync.RWMutex
	subs     list.List
}

// Subscription is a registered Handler.
type Subscription struct {
	queue   *Queue
	elm     *list.Element
	handler Handler
}

// NewQueue creates a Queue holding up to size events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{events: make(chan Event, size)}
}

// Publish implements Publisher.
func (q *Queue) Publish(ctx context.Context, ev Event) error {
	select {
	case q.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Subscribe registers a Handler. Handlers run in the draining goroutine,
// in subscription order.
func (q *Queue) Subscribe(h Handler) *Subscription {
	sub := &Subscription{queue: q, handler: h}
	q.subsLock.Lock()
	sub.elm = q.subs.PushBack(sub)
	q.subsLock.Unlock()
	return sub
}

// Close unsubscribes.
func (s *Subscription) Close() error {
	s.queue.subsLock.Lock()
	if s.elm != nil {
		s.queue.subs.Remove(s.elm)
		s.elm = nil
	}
	s.queue.subsLock.Unlock()
	return nil
}

// Drain dispatches events until ctx is done.
func (q *Queue) Drain(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-q.events:
			q.dispatch(ctx, ev)
		}
	}
}

// DrainPending dispatches queued events without waiting and returns how many.
func (q *Queue) DrainPending(ctx context.Context) (n int) {
	for {
		select {
		case ev := <-q.events:
			q.dispatch(ctx, ev)
			n++
		default:
			return
		}
	}
}

// Run implements Runnable.
func (q *Queue) Run(ctx context.Context) error {
	return q.Drain(ctx)
}

func (q *Queue) dispatch(ctx context.Context, ev Event) {
	q.subsLock.RLock()
	handlers := make([]Handler, 0, q.subs.Len())
	for elm := q.subs.Front(); elm != nil; elm = elm.Next() {
		handlers = append(handlers, elm.Value.(*Subscription).handler)
	}
	q.subsLock.RUnlock()
	for _, h := range handlers {
		h.HandleEvent(ctx, ev)
	}
}
