package sim

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestBoard(values [frame.Channels]uint16) (*Board, *testClock) {
	clock := &testClock{now: time.Unix(1700000000, 0)}
	b := NewBoard(0)
	b.Now = clock.Now
	b.Wave = ConstWave(values)
	return b, clock
}

func readAll(t *testing.T, b *Board) string {
	var sb strings.Builder
	buf := make([]byte, 8)
	for {
		n, err := b.Read(buf)
		require.NoError(t, err)
		if n == 0 {
			return sb.String()
		}
		sb.Write(buf[:n])
	}
}

func TestBoardTelemetryRate(t *testing.T) {
	b, clock := newTestBoard([frame.Channels]uint16{1, 2, 3, 4095})
	require.Equal(t, "A,1,2,3,4095\r\n", readAll(t, b))
	require.Empty(t, readAll(t, b))

	clock.now = clock.now.Add(500 * time.Millisecond)
	require.Empty(t, readAll(t, b))
	clock.now = clock.now.Add(500 * time.Millisecond)
	require.Equal(t, "A,1,2,3,4095\r\n", readAll(t, b))

	n, err := b.Write([]byte("SET,16,"))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	_, err = b.Write([]byte("10\nSET,1,0\ngarbage\n"))
	require.NoError(t, err)
	cmd, count := b.Command()
	require.Equal(t, frame.Command{Mask: frame.IndicatorSolid, Rate: 10}, cmd)
	require.Equal(t, 1, count)

	clock.now = clock.now.Add(time.Second)
	readAll(t, b)
	clock.now = clock.now.Add(100 * time.Millisecond)
	require.Equal(t, "A,1,2,3,4095\r\n", readAll(t, b))
}

func TestBoardChecksum(t *testing.T) {
	b, _ := newTestBoard([frame.Channels]uint16{10, 20, 30, 40})
	b.Checksum = frame.ChecksumCRC16
	line := readAll(t, b)
	s, err := (&frame.Decoder{Checksum: frame.ChecksumCRC16}).Decode([]byte(line))
	require.NoError(t, err)
	require.Equal(t, [frame.Channels]uint16{10, 20, 30, 40}, s.Values)
}

func TestBoardClose(t *testing.T) {
	b, _ := newTestBoard([frame.Channels]uint16{})
	require.NoError(t, b.Close())
	require.Equal(t, ErrClosed, b.Close())
	_, err := b.Read(make([]byte, 4))
	require.Equal(t, ErrClosed, err)
	_, err = b.Write([]byte("SET,1,1\n"))
	require.Equal(t, ErrClosed, err)
}

func TestBoardReadTimeout(t *testing.T) {
	b := NewBoard(20 * time.Millisecond)
	b.Wave = ConstWave([frame.Channels]uint16{})
	buf := make([]byte, 64)
	n, err := b.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "A,0,0,0,0\r\n", string(buf[:n]))
	start := time.Now()
	n, err = b.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)
	require.True(t, time.Since(start) >= 20*time.Millisecond)
}

func TestSineWave(t *testing.T) {
	w := SineWave(time.Second)
	require.Equal(t, uint16(2048), w(0, 0))
	require.Equal(t, uint16(4095), w(1, 0))
	require.Equal(t, uint16(4095), w(0, 250*time.Millisecond))
	require.Equal(t, uint16(0), w(0, 750*time.Millisecond))
	for ch := 0; ch < frame.Channels; ch++ {
		for ms := 0; ms < 4000; ms += 37 {
			require.LessOrEqual(t, w(ch, time.Duration(ms)*time.Millisecond), uint16(frame.MaxValue))
		}
	}
}

func TestDriverWithLink(t *testing.T) {
	l := link.New(Driver{Wave: ConstWave([frame.Channels]uint16{7, 7, 7, 7})})
	require.NoError(t, l.Open("sim0"))
	defer l.Close()
	data, err := l.ReadAvailable()
	require.NoError(t, err)
	require.Equal(t, "A,7,7,7,7\r\n", string(data))
	require.NoError(t, l.Write(frame.Encode(frame.Command{Mask: 1, Rate: 20})))
}
