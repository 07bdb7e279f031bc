package history

import (
	"fmt"
	"sync"

	"github.com/robotalks/adclink/pkg/frame"
)

// Trace keeps the recent values of one selected channel.
type Trace struct {
	lock    sync.RWMutex
	channel int
	ring    ring[uint16]
}

// NewTrace creates a Trace of channel 0 keeping up to size values.
func NewTrace(size int) *Trace {
	return &Trace{ring: newRing[uint16](size)}
}

// Channel returns the selected channel.
func (t *Trace) Channel() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.channel
}

// Select switches the channel and clears the history.
func (t *Trace) Select(ch int) error {
	if !frame.ValidChannel(ch) {
		return fmt.Errorf("invalid channel %d", ch)
	}
	t.lock.Lock()
	t.channel = ch
	t.ring.reset()
	t.lock.Unlock()
	return nil
}

// Append pushes the selected channel's value of s.
func (t *Trace) Append(s frame.Sample) {
	t.lock.Lock()
	t.ring.push(s.Value(t.channel))
	t.lock.Unlock()
}

// Values returns the values, oldest first.
func (t *Trace) Values() []uint16 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.ring.slice()
}

// Len returns the number of values held.
func (t *Trace) Len() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.ring.size
}
