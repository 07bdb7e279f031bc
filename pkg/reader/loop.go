package reader

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
)

// DefaultInterval is the delay between polls.
const DefaultInterval = 10 * time.Millisecond

// Source is the read side of a link.Link.
type Source interface {
	State() link.State
	BytesAvailable() (int, error)
	ReadAvailable() ([]byte, error)
}

// Stats are counters maintained by the Loop.
type Stats struct {
	Lines   uint64
	Samples uint64
	Dropped uint64
	Faults  uint64
}

// Loop polls a Source and publishes decoded samples.
type Loop struct {
	Source    Source
	Decoder   *frame.Decoder
	Publisher Publisher
	Interval  time.Duration
	Now       func() time.Time

	reasm   Reassembler
	gen     uint64
	faulted bool

	lines   uint64
	samples uint64
	dropped uint64
	faults  uint64
}

// NewLoop creates a Loop.
func NewLoop(src Source, pub Publisher) *Loop {
	return &Loop{
		Source:    src,
		Decoder:   frame.DefaultDecoder,
		Publisher: pub,
		Interval:  DefaultInterval,
	}
}

// Stats returns a snapshot of the counters. Safe from any goroutine.
func (l *Loop) Stats() Stats {
	return Stats{
		Lines:   atomic.LoadUint64(&l.lines),
		Samples: atomic.LoadUint64(&l.samples),
		Dropped: atomic.LoadUint64(&l.dropped),
		Faults:  atomic.LoadUint64(&l.faults),
	}
}

// Run polls until ctx is done. Closed links, malformed lines and read faults
// never stop it.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := l.Poll(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll performs one iteration. It only fails when publishing is cancelled.
func (l *Loop) Poll(ctx context.Context) error {
	st := l.Source.State()
	if !st.Open {
		l.reasm.Reset()
		return nil
	}
	if st.Generation != l.gen {
		l.gen, l.faulted = st.Generation, false
		l.reasm.Reset()
	}
	if l.faulted {
		return nil
	}
	n, err := l.Source.BytesAvailable()
	if err == nil && n > 0 {
		var data []byte
		if data, err = l.Source.ReadAvailable(); err == nil {
			return l.consume(ctx, data)
		}
	}
	if err != nil {
		return l.fault(ctx, st, err)
	}
	return nil
}

func (l *Loop) consume(ctx context.Context, data []byte) error {
	decoder := l.Decoder
	if decoder == nil {
		decoder = frame.DefaultDecoder
	}
	for _, line := range l.reasm.Feed(data) {
		atomic.AddUint64(&l.lines, 1)
		s, err := decoder.Decode(line)
		if err != nil {
			atomic.AddUint64(&l.dropped, 1)
			if glog.V(3) {
				glog.Infof("reader: dropped: %v", err)
			}
			continue
		}
		atomic.AddUint64(&l.samples, 1)
		if err = l.Publisher.Publish(ctx, SampleEvent(s.Stamped(l.now()))); err != nil {
			return err
		}
	}
	return nil
}

// fault reports a read fault once per link generation, then idles until the
// link is reopened.
func (l *Loop) fault(ctx context.Context, st link.State, err error) error {
	if errors.Is(err, link.ErrNotOpen) {
		l.reasm.Reset()
		return nil
	}
	l.faulted = true
	atomic.AddUint64(&l.faults, 1)
	glog.Warningf("reader: %s: %v", st.Port, err)
	return l.Publisher.Publish(ctx, FaultEvent(st.Generation, err))
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
