// Package monitor is the headless presentation model: the latest values,
// bar meters, the graph of one channel and the CSV log switch.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/adclink/pkg/csvlog"
	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/history"
	"github.com/robotalks/adclink/pkg/reader"
)

// MeterWidth is the number of cells of a bar meter.
const MeterWidth = 20

var sparks = []rune("▁▂▃▄▅▆▇█")

// ErrNotLogging is returned when stopping a log which isn't started.
var ErrNotLogging = errors.New("not logging")

// Monitor consumes events from the drain. Reads are safe from other
// goroutines.
type Monitor struct {
	LogDir string
	Now    func() time.Time

	lock      sync.Mutex
	latest    frame.Sample
	hasSample bool
	samples   uint64
	faults    uint64
	lastFault error
	buffer    *history.Buffer
	trace     *history.Trace
	log       *csvlog.Writer
}

// New creates a Monitor keeping size samples of history.
func New(size int) *Monitor {
	return &Monitor{
		buffer: history.NewBuffer(size),
		trace:  history.NewTrace(size),
	}
}

// HandleEvent implements reader.Handler.
func (m *Monitor) HandleEvent(_ context.Context, ev reader.Event) {
	m.lock.Lock()
	defer m.lock.Unlock()
	switch ev.Kind {
	case reader.EventSample:
		m.latest, m.hasSample = ev.Sample, true
		m.samples++
		m.buffer.Append(ev.Sample)
		m.trace.Append(ev.Sample)
		if m.log != nil {
			if err := m.log.Append(ev.Sample); err != nil {
				glog.Errorf("log %s: %v, logging stopped", m.log.Name(), err)
				m.log.Close()
				m.log = nil
			}
		}
	case reader.EventFault:
		m.faults++
		m.lastFault = ev.Err
	}
}

// Latest returns the most recent sample.
func (m *Monitor) Latest() (frame.Sample, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.latest, m.hasSample
}

// Samples returns the recent samples, oldest first.
func (m *Monitor) Samples() []frame.Sample {
	return m.buffer.Samples()
}

// Counters returns the number of samples and faults seen, and the last fault.
func (m *Monitor) Counters() (samples, faults uint64, lastFault error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.samples, m.faults, m.lastFault
}

// Select chooses the graphed channel and clears the graph.
func (m *Monitor) Select(ch int) error {
	return m.trace.Select(ch)
}

// Channel returns the graphed channel.
func (m *Monitor) Channel() int {
	return m.trace.Channel()
}

// Meters renders one bar per channel of the latest sample.
func (m *Monitor) Meters() string {
	s, ok := m.Latest()
	if !ok {
		return "no samples"
	}
	var sb strings.Builder
	for ch, v := range s.Values {
		if ch > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "Pot %d: [%s] %d", ch+1, Bar(v, MeterWidth), v)
	}
	return sb.String()
}

// Graph renders the trace of the graphed channel as a sparkline of at most
// width values, most recent last.
func (m *Monitor) Graph(width int) string {
	values := m.trace.Values()
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	return fmt.Sprintf("Pot %d: %s", m.trace.Channel()+1, Sparkline(values))
}

// StartLog starts CSV logging into LogDir. A running log is kept.
func (m *Monitor) StartLog() (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.log != nil {
		return m.log.Name(), nil
	}
	w, err := csvlog.Create(m.LogDir, m.now())
	if err != nil {
		return "", err
	}
	m.log = w
	return w.Name(), nil
}

// StopLog stops CSV logging.
func (m *Monitor) StopLog() (name string, rows int, err error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.log == nil {
		return "", 0, ErrNotLogging
	}
	name, rows = m.log.Name(), m.log.Rows()
	err = m.log.Close()
	m.log = nil
	return
}

// Logging returns the current log file name, empty if not logging.
func (m *Monitor) Logging() string {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.log == nil {
		return ""
	}
	return m.log.Name()
}

func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Bar renders v scaled to frame.MaxValue over width cells.
func Bar(v uint16, width int) string {
	n := int(v) * width / frame.MaxValue
	if n > width {
		n = width
	}
	return strings.Repeat("#", n) + strings.Repeat(" ", width-n)
}

// Sparkline renders values scaled to frame.MaxValue.
func Sparkline(values []uint16) string {
	out := make([]rune, len(values))
	for i, v := range values {
		n := int(v) * len(sparks) / (frame.MaxValue + 1)
		if n >= len(sparks) {
			n = len(sparks) - 1
		}
		out[i] = sparks[n]
	}
	return string(out)
}
