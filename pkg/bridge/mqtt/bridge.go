package mqtt

import (
	"context"
	"sync"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/adclink/pkg/bridge/payload"
	"github.com/robotalks/adclink/pkg/device"
	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
	"github.com/robotalks/adclink/pkg/reader"
)

// Topic suffixes under <prefix><id>/.
const (
	TopicSamples = "samples"
	TopicState   = "state"
	TopicFault   = "fault"
	TopicCmd     = "cmd"
)

// Device is the part of device.Device the Bridge needs.
type Device interface {
	State() link.State
	SendCommand(frame.Command) error
	Subscribe(reader.Handler) *reader.Subscription
	OnStateChange(device.StateFunc)
}

// DefaultID returns an ID unique to this machine and application.
func DefaultID() string {
	id, err := machineid.ProtectedID("adclink")
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "adclink"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// Bridge publishes samples and link state, and forwards commands received
// on <id>/cmd to the device.
type Bridge struct {
	Queue *Queue
	Codec payload.Codec
	ID    string

	dev Device

	lock    sync.Mutex
	started bool
	evSub   *reader.Subscription
	cmdSub  *Subscription
}

// NewBridge creates a Bridge.
func NewBridge(q *Queue, dev Device, codec payload.Codec, id string) *Bridge {
	if codec == nil {
		codec = payload.JSON
	}
	if id == "" {
		id = DefaultID()
	}
	b := &Bridge{Queue: q, Codec: codec, ID: id, dev: dev}
	prev := q.OnConnect
	q.OnConnect = func(q *Queue) {
		if prev != nil {
			prev(q)
		}
		// state is retained, republish after reconnects.
		if b.active() {
			b.PublishState(b.dev.State())
		}
	}
	dev.OnStateChange(func(st link.State) {
		if b.active() {
			b.PublishState(st)
		}
	})
	return b
}

// Topic returns the topic for a suffix, without the queue prefix.
func (b *Bridge) Topic(suffix string) string {
	return b.ID + "/" + suffix
}

// Start subscribes to device events and commands, and publishes the current
// state.
func (b *Bridge) Start() {
	b.lock.Lock()
	if b.started {
		b.lock.Unlock()
		return
	}
	b.started = true
	b.evSub = b.dev.Subscribe(reader.HandleEventFunc(b.HandleEvent))
	b.cmdSub = b.Queue.Sub(b.Topic(TopicCmd), b.handleCommand)
	b.lock.Unlock()

	b.PublishState(b.dev.State())
}

// Stop unsubscribes.
func (b *Bridge) Stop() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if !b.started {
		return nil
	}
	b.started = false
	b.evSub.Close()
	return b.cmdSub.Close()
}

// Run implements framework.Runnable: connects, starts, and stops on cancel.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Queue.Connect(); err != nil {
		return err
	}
	defer b.Queue.Close()
	b.Start()
	<-ctx.Done()
	b.Stop()
	return ctx.Err()
}

func (b *Bridge) active() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.started
}

// HandleEvent implements reader.Handler.
func (b *Bridge) HandleEvent(_ context.Context, ev reader.Event) {
	switch ev.Kind {
	case reader.EventSample:
		data, err := b.Codec.EncodeSample(ev.Sample)
		if err != nil {
			glog.Errorf("encode sample: %v", err)
			return
		}
		b.Queue.Pub(b.Topic(TopicSamples), data)
	case reader.EventFault:
		b.Queue.Pub(b.Topic(TopicFault), []byte(ev.Err.Error()))
	}
}

// PublishState publishes the retained link state.
func (b *Bridge) PublishState(st link.State) {
	data, err := b.Codec.EncodeState(st)
	if err != nil {
		glog.Errorf("encode state: %v", err)
		return
	}
	b.Queue.PubWith(b.Topic(TopicState), data, 1, true)
}

func (b *Bridge) handleCommand(topic string, data []byte) {
	cmd, err := b.Codec.DecodeCommand(data)
	if err != nil {
		glog.Warningf("%s: bad command: %v", topic, err)
		return
	}
	if err := b.dev.SendCommand(cmd); err != nil {
		glog.Errorf("%s: %s: %v", topic, cmd, err)
	}
}
