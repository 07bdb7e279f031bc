package sim

import (
	"time"

	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
)

// Driver opens a new simulated Board for every port name.
type Driver struct {
	Checksum frame.ChecksumMode
	Wave     Wave
}

// Open implements link.Driver.
func (d Driver) Open(name string, baud int, readTimeout time.Duration) (link.Port, error) {
	b := NewBoard(readTimeout)
	b.Checksum = d.Checksum
	if d.Wave != nil {
		b.Wave = d.Wave
	}
	return b, nil
}
