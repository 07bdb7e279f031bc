// Package sim simulates the ADC board behind a serial port, so adclink can
// run and be tested without hardware.
package sim

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/adclink/pkg/frame"
)

// DefaultWavePeriod is the period of channel 1 of the default wave.
const DefaultWavePeriod = 10 * time.Second

// ErrClosed is returned by a closed Board.
var ErrClosed = errors.New("board closed")

// Board is a simulated ADC board. It implements io.ReadWriteCloser and
// SetReadTimeout like a serial port: reads return telemetry lines at the
// commanded rate, writes are parsed as commands.
type Board struct {
	Wave     Wave
	Checksum frame.ChecksumMode
	Now      func() time.Time

	lock    sync.Mutex
	timeout time.Duration
	start   time.Time
	next    time.Time
	cmd     frame.Command
	cmds    int
	out     []byte
	in      []byte
	closed  bool
}

// NewBoard creates a Board sending 1 sample per second.
func NewBoard(readTimeout time.Duration) *Board {
	return &Board{
		Wave:    SineWave(DefaultWavePeriod),
		timeout: readTimeout,
		cmd:     frame.Command{Rate: frame.MinRate},
	}
}

// SetReadTimeout sets the timeout of Read. 0 makes Read non-blocking.
func (b *Board) SetReadTimeout(t time.Duration) error {
	b.lock.Lock()
	b.timeout = t
	b.lock.Unlock()
	return nil
}

// Command returns the last accepted command and how many were accepted.
func (b *Board) Command() (frame.Command, int) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.cmd, b.cmds
}

// Read implements io.Reader.
func (b *Board) Read(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	deadline := b.now().Add(b.timeout)
	for {
		if b.closed {
			return 0, ErrClosed
		}
		if len(b.out) > 0 {
			n := copy(p, b.out)
			b.out = b.out[n:]
			return n, nil
		}
		now := b.now()
		if b.start.IsZero() {
			b.start, b.next = now, now
		}
		if !now.Before(b.next) {
			b.emit(now)
			continue
		}
		if !now.Before(deadline) {
			return 0, nil
		}
		wait := b.next.Sub(now)
		if d := deadline.Sub(now); d < wait {
			wait = d
		}
		b.lock.Unlock()
		time.Sleep(wait)
		b.lock.Lock()
	}
}

func (b *Board) emit(now time.Time) {
	elapsed := now.Sub(b.start)
	var s frame.Sample
	for ch := range s.Values {
		s.Values[ch] = b.Wave(ch, elapsed)
	}
	line := []byte("A," + s.String())
	line = frame.AppendChecksum(line, b.Checksum)
	b.out = append(append(b.out, line...), '\r', '\n')
	b.next = b.next.Add(time.Second / time.Duration(b.cmd.Rate))
	if b.next.Before(now) {
		// fell behind, no burst.
		b.next = now
	}
}

// Write implements io.Writer. Complete lines are parsed as commands;
// invalid ones are ignored like the firmware does.
func (b *Board) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		return 0, ErrClosed
	}
	b.in = append(b.in, p...)
	for {
		i := bytes.IndexByte(b.in, '\n')
		if i < 0 {
			break
		}
		line := b.in[:i]
		b.in = b.in[i+1:]
		cmd, err := frame.DecodeCommand(line)
		if err == nil {
			err = cmd.Validate()
		}
		if err != nil {
			glog.V(3).Infof("sim: ignored %q: %v", line, err)
			continue
		}
		b.cmd = cmd
		b.cmds++
		glog.V(2).Infof("sim: %s", cmd)
	}
	return len(p), nil
}

// Close implements io.Closer.
func (b *Board) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.closed = true
	return nil
}

func (b *Board) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

var _ io.ReadWriteCloser = (*Board)(nil)
