package reader

import (
	"context"
	"fmt"

	"github.com/robotalks/adclink/pkg/frame"
)

// EventKind tells what an Event carries.
type EventKind int

// Event kinds.
const (
	// EventSample carries a decoded, stamped Sample.
	EventSample EventKind = iota
	// EventFault carries a read fault of the link (e.g. device unplugged).
	// Malformed lines never produce events.
	EventFault
)

// Event is published by the Loop.
type Event struct {
	Kind   EventKind
	Sample frame.Sample
	Err    error
	// Generation is the link generation a fault was read from.
	Generation uint64
}

// SampleEvent wraps a sample.
func SampleEvent(s frame.Sample) Event {
	return Event{Kind: EventSample, Sample: s}
}

// FaultEvent wraps a read fault of link generation gen.
func FaultEvent(gen uint64, err error) Event {
	return Event{Kind: EventFault, Err: err, Generation: gen}
}

// String implements fmt.Stringer.
func (e Event) String() string {
	if e.Kind == EventFault {
		return fmt.Sprintf("fault: %v", e.Err)
	}
	return "sample: " + e.Sample.String()
}

// Handler is called for every drained event.
type Handler interface {
	HandleEvent(context.Context, Event)
}

// HandleEventFunc is func type of Handler.
type HandleEventFunc func(context.Context, Event)

// HandleEvent implements Handler.
func (f HandleEventFunc) HandleEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// SampleHandler adapts a sample callback to Handler, ignoring faults.
func SampleHandler(fn func(frame.Sample)) Handler {
	return HandleEventFunc(func(_ context.Context, ev Event) {
		if ev.Kind == EventSample {
			fn(ev.Sample)
		}
	})
}

// FaultHandler adapts a fault callback to Handler, ignoring samples.
func FaultHandler(fn func(error)) Handler {
	return HandleEventFunc(func(_ context.Context, ev Event) {
		if ev.Kind == EventFault {
			fn(ev.Err)
		}
	})
}

// Publisher accepts events from the Loop.
type Publisher interface {
	Publish(context.Context, Event) error
}
