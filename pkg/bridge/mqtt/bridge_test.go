package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/adclink/pkg/bridge/payload"
	"github.com/robotalks/adclink/pkg/device"
	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
	"github.com/robotalks/adclink/pkg/reader"
)

type testDevice struct {
	state    link.State
	queue    *reader.Queue
	watchers []device.StateFunc
	sent     []frame.Command
}

func newTestDevice() *testDevice {
	return &testDevice{queue: reader.NewQueue(8)}
}

func (d *testDevice) State() link.State { return d.state }

func (d *testDevice) SendCommand(cmd frame.Command) error {
	d.sent = append(d.sent, cmd)
	return nil
}

func (d *testDevice) Subscribe(h reader.Handler) *reader.Subscription {
	return d.queue.Subscribe(h)
}

func (d *testDevice) OnStateChange(fn device.StateFunc) {
	d.watchers = append(d.watchers, fn)
}

func (d *testDevice) setState(st link.State) {
	d.state = st
	for _, fn := range d.watchers {
		fn(st)
	}
}

func TestBridge(t *testing.T) {
	q, conn := newTestQueue("adc/")
	dev := newTestDevice()
	b := NewBridge(q, dev, payload.JSON, "dev1")
	require.Equal(t, "dev1/samples", b.Topic(TopicSamples))

	b.Start()
	b.Start()
	require.Equal(t, []string{"adc/dev1/cmd"}, conn.subscribed)
	require.Len(t, conn.pubs, 1)
	require.Equal(t, "adc/dev1/state", conn.pubs[0].topic)
	require.True(t, conn.pubs[0].retained)
	require.JSONEq(t, `{"open":false,"generation":0}`, string(conn.pubs[0].payload))

	dev.setState(link.State{Open: true, Port: "ttyA", Generation: 1})
	require.Len(t, conn.pubs, 2)
	require.JSONEq(t, `{"open":true,"port":"ttyA","generation":1}`, string(conn.pubs[1].payload))

	ctx := context.Background()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, dev.queue.Publish(ctx, reader.SampleEvent(frame.NewSample(1, 2, 3, 4).Stamped(at))))
	require.NoError(t, dev.queue.Publish(ctx, reader.FaultEvent(1, errors.New("unplugged"))))
	dev.queue.DrainPending(ctx)
	require.Len(t, conn.pubs, 4)
	require.Equal(t, "adc/dev1/samples", conn.pubs[2].topic)
	require.JSONEq(t, `{"time":"2024-01-02T03:04:05Z","values":[1,2,3,4]}`, string(conn.pubs[2].payload))
	require.Equal(t, "adc/dev1/fault", conn.pubs[3].topic)
	require.Equal(t, "unplugged", string(conn.pubs[3].payload))

	q.deliver("adc/dev1/cmd", []byte(`{"mask":16,"rate":10}`))
	q.deliver("adc/dev1/cmd", []byte(`SET,8,2`))
	q.deliver("adc/dev1/cmd", []byte(`{"mask":1,"rate":0}`))
	q.deliver("adc/dev1/cmd", []byte(`garbage`))
	require.Equal(t, []frame.Command{{Mask: 16, Rate: 10}, {Mask: 8, Rate: 2}}, dev.sent)

	q.OnConnect(q)
	require.Len(t, conn.pubs, 5)
	require.Equal(t, "adc/dev1/state", conn.pubs[4].topic)

	require.NoError(t, b.Stop())
	require.NoError(t, b.Stop())
	require.Equal(t, []string{"adc/dev1/cmd"}, conn.unsubbed)
	dev.setState(link.State{})
	require.NoError(t, dev.queue.Publish(ctx, reader.SampleEvent(frame.Sample{})))
	dev.queue.DrainPending(ctx)
	require.Len(t, conn.pubs, 5)
}

func TestBridgeRestartPublishesStateOnce(t *testing.T) {
	q, conn := newTestQueue("adc/")
	dev := newTestDevice()
	b := NewBridge(q, dev, payload.JSON, "dev1")
	require.Len(t, dev.watchers, 1)

	for i := 0; i < 3; i++ {
		b.Start()
		require.NoError(t, b.Stop())
	}
	b.Start()
	require.Len(t, dev.watchers, 1)

	n := len(conn.pubs)
	dev.setState(link.State{Open: true, Port: "ttyA", Generation: 1})
	require.Len(t, conn.pubs, n+1)
	require.Equal(t, "adc/dev1/state", conn.pubs[n].topic)
}

func TestDefaultID(t *testing.T) {
	require.NotEmpty(t, DefaultID())
}
