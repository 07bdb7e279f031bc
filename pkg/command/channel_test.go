package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
)

type testSink struct {
	open   bool
	err    error
	writes []string
}

func (s *testSink) IsOpen() bool { return s.open }

func (s *testSink) Write(p []byte) error {
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, string(p))
	return nil
}

func TestSend(t *testing.T) {
	sink := &testSink{open: true}
	ch := NewChannel(sink)
	require.NoError(t, ch.Send(frame.Command{Mask: frame.IndicatorSolid, Rate: 5}))
	require.Equal(t, []string{"SET,16,5\n"}, sink.writes)
}

func TestSendClosedIsNoop(t *testing.T) {
	sink := &testSink{}
	require.NoError(t, NewChannel(sink).Send(frame.Command{Rate: 1}))
	require.Empty(t, sink.writes)

	sink.open, sink.err = true, &link.Error{Op: "write", Err: link.ErrNotOpen}
	require.NoError(t, NewChannel(sink).Send(frame.Command{Rate: 1}))
}

func TestSendErrors(t *testing.T) {
	sink := &testSink{open: true}
	ch := NewChannel(sink)
	require.True(t, errors.Is(ch.Send(frame.Command{Rate: 0}), frame.ErrRate))
	require.True(t, errors.Is(ch.Send(frame.Command{Rate: 21}), frame.ErrRate))
	require.Empty(t, sink.writes)

	errIO := errors.New("io error")
	sink.err = &link.Error{Op: "write", Port: "ttyA", Err: errIO}
	require.True(t, errors.Is(ch.Send(frame.Command{Rate: 1}), errIO))
}

func TestControlsOneWritePerChange(t *testing.T) {
	sink := &testSink{open: true}
	c := NewControls(NewChannel(sink))
	require.Equal(t, frame.Command{Rate: 1}, c.Current())

	require.NoError(t, c.Toggle(frame.PrimaryOn))
	require.NoError(t, c.Toggle(frame.IndicatorBlink))
	require.NoError(t, c.Toggle(frame.PrimaryOn))
	require.NoError(t, c.SetRate(10))
	require.NoError(t, c.SetMask(frame.SecondaryOn|frame.PrimaryOff))
	require.NoError(t, c.Preset(1))
	require.NoError(t, c.Resend())
	require.Equal(t, []string{
		"SET,8,1\n",
		"SET,40,1\n",
		"SET,32,1\n",
		"SET,32,10\n",
		"SET,6,10\n",
		"SET,16,1\n",
		"SET,16,1\n",
	}, sink.writes)
}

func TestControlsRejectsRate(t *testing.T) {
	sink := &testSink{open: true}
	c := NewControls(NewChannel(sink))
	require.Error(t, c.SetRate(0))
	require.Error(t, c.Preset(25))
	require.Empty(t, sink.writes)
	require.Equal(t, frame.Command{Rate: 1}, c.Current())
}

func TestControlsWhileClosed(t *testing.T) {
	sink := &testSink{}
	c := NewControls(NewChannel(sink))
	require.NoError(t, c.Preset(10))
	require.Empty(t, sink.writes)
	require.Equal(t, frame.Command{Mask: frame.IndicatorSolid, Rate: 10}, c.Current())
}
