package frame

import (
	"fmt"
	"time"
)

const (
	// Channels is the number of ADC channels in a sample.
	Channels = 4
	// MaxValue is the largest 12-bit reading.
	MaxValue = 4095
)

// Sample is one decoded telemetry line.
type Sample struct {
	Values [Channels]uint16
	// At is the arrival time, assigned by the reader when decoded.
	At time.Time
}

// NewSample creates an unstamped Sample.
func NewSample(v1, v2, v3, v4 uint16) Sample {
	return Sample{Values: [Channels]uint16{v1, v2, v3, v4}}
}

// Stamped returns a copy of the sample with arrival time t.
func (s Sample) Stamped(t time.Time) Sample {
	s.At = t
	return s
}

// Value returns the reading of channel ch (0-based).
func (s Sample) Value(ch int) uint16 {
	return s.Values[ch]
}

// String implements fmt.Stringer.
func (s Sample) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", s.Values[0], s.Values[1], s.Values[2], s.Values[3])
}

// ValidChannel reports whether ch is a valid 0-based channel index.
func ValidChannel(ch int) bool {
	return ch >= 0 && ch < Channels
}
