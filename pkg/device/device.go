// Package device wires the link, the reader loop and the command channel
// into one object owned by the presentation side.
package device

import (
	"context"
	"sync"
	"time"

	"github.com/robotalks/adclink/pkg/command"
	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
	"github.com/robotalks/adclink/pkg/reader"
)

// Options configures a Device.
type Options struct {
	Driver      link.Driver
	ReadTimeout time.Duration
	Checksum    frame.ChecksumMode
	QueueSize   int
	Interval    time.Duration
}

// StateFunc is notified after Connect and Disconnect.
type StateFunc func(link.State)

// Device is the ADC board as seen by collaborators.
// Connect, Disconnect and the drain are expected from the presentation side;
// Run is the reader goroutine.
type Device struct {
	Link    *link.Link
	Loop    *reader.Loop
	Queue   *reader.Queue
	Channel *command.Channel

	stateLock sync.Mutex
	watchers  []StateFunc
}

// New creates a Device.
func New(opts Options) *Device {
	l := link.New(opts.Driver)
	if opts.ReadTimeout > 0 {
		l.ReadTimeout = opts.ReadTimeout
	}
	q := reader.NewQueue(opts.QueueSize)
	loop := reader.NewLoop(l, q)
	loop.Decoder = &frame.Decoder{Checksum: opts.Checksum}
	if opts.Interval > 0 {
		loop.Interval = opts.Interval
	}
	return &Device{
		Link:    l,
		Loop:    loop,
		Queue:   q,
		Channel: command.NewChannel(l),
	}
}

// Connect opens the port, replacing the current one.
func (d *Device) Connect(port string) error {
	err := d.Link.Open(port)
	d.notify()
	return err
}

// Disconnect closes the port.
func (d *Device) Disconnect() error {
	err := d.Link.Close()
	d.notify()
	return err
}

// State returns the link state.
func (d *Device) State() link.State {
	return d.Link.State()
}

// Stats returns the reader counters.
func (d *Device) Stats() reader.Stats {
	return d.Loop.Stats()
}

// SendCommand implements command.Sender. No-op while disconnected.
func (d *Device) SendCommand(cmd frame.Command) error {
	return d.Channel.Send(cmd)
}

// Send implements command.Sender.
func (d *Device) Send(cmd frame.Command) error {
	return d.SendCommand(cmd)
}

// Subscribe registers an event handler called from the drain.
func (d *Device) Subscribe(h reader.Handler) *reader.Subscription {
	return d.Queue.Subscribe(h)
}

// OnSample registers a sample callback called from the drain.
func (d *Device) OnSample(fn func(frame.Sample)) *reader.Subscription {
	return d.Queue.Subscribe(reader.SampleHandler(fn))
}

// OnFault registers a read fault callback called from the drain.
func (d *Device) OnFault(fn func(error)) *reader.Subscription {
	return d.Queue.Subscribe(reader.FaultHandler(fn))
}

// OnStateChange registers a callback invoked after Connect and Disconnect.
func (d *Device) OnStateChange(fn StateFunc) {
	d.stateLock.Lock()
	d.watchers = append(d.watchers, fn)
	d.stateLock.Unlock()
}

// Run implements framework.Runnable: the reader loop.
func (d *Device) Run(ctx context.Context) error {
	return d.Loop.Run(ctx)
}

// Drain dispatches events to subscribers until ctx is done.
func (d *Device) Drain(ctx context.Context) error {
	return d.Queue.Drain(ctx)
}

// Close disconnects.
func (d *Device) Close() error {
	return d.Disconnect()
}

func (d *Device) notify() {
	st := d.Link.State()
	d.stateLock.Lock()
	watchers := append([]StateFunc(nil), d.watchers...)
	d.stateLock.Unlock()
	for _, fn := range watchers {
		fn(st)
	}
}
