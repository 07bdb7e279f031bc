// Package command sends actuator commands to the ADC board.
package command

import (
	"errors"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
)

// Sink is the write side of a link.Link.
type Sink interface {
	IsOpen() bool
	Write([]byte) error
}

// Sender sends commands.
type Sender interface {
	Send(frame.Command) error
}

// Channel encodes commands and writes them to the link.
type Channel struct {
	Sink Sink
}

// NewChannel creates a Channel.
func NewChannel(sink Sink) *Channel {
	return &Channel{Sink: sink}
}

// Send implements Sender. Sending to a closed link is a no-op.
func (c *Channel) Send(cmd frame.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if !c.Sink.IsOpen() {
		glog.V(2).Infof("command %s skipped: link closed", cmd)
		return nil
	}
	err := c.Sink.Write(frame.Encode(cmd))
	if errors.Is(err, link.ErrNotOpen) {
		// closed after the check.
		return nil
	}
	if err == nil {
		glog.V(2).Infof("command %s sent", cmd)
	}
	return err
}

// Controls holds the actuator state selected by a user and sends one
// command per change.
type Controls struct {
	Sender Sender

	lock sync.Mutex
	cmd  frame.Command
}

// NewControls creates Controls with mask 0 and rate 1.
func NewControls(sender Sender) *Controls {
	return &Controls{Sender: sender, cmd: frame.Command{Rate: frame.MinRate}}
}

// Current returns the last selected command.
func (c *Controls) Current() frame.Command {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.cmd
}

// Toggle flips actuator bits.
func (c *Controls) Toggle(bits frame.ActuatorMask) error {
	return c.update(func(cmd *frame.Command) { cmd.Mask ^= bits })
}

// SetMask replaces the actuator mask.
func (c *Controls) SetMask(mask frame.ActuatorMask) error {
	return c.update(func(cmd *frame.Command) { cmd.Mask = mask })
}

// SetRate changes the rate. Rates outside [MinRate, MaxRate] are rejected
// without sending.
func (c *Controls) SetRate(hz uint8) error {
	if err := (frame.Command{Rate: hz}).Validate(); err != nil {
		return err
	}
	return c.update(func(cmd *frame.Command) { cmd.Rate = hz })
}

// Preset selects the solid indicator at the given rate.
func (c *Controls) Preset(hz uint8) error {
	if err := (frame.Command{Rate: hz}).Validate(); err != nil {
		return err
	}
	return c.update(func(cmd *frame.Command) {
		cmd.Mask, cmd.Rate = frame.IndicatorSolid, hz
	})
}

// Resend sends the current command again.
func (c *Controls) Resend() error {
	return c.update(func(*frame.Command) {})
}

func (c *Controls) update(fn func(*frame.Command)) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	fn(&c.cmd)
	return c.Sender.Send(c.cmd)
}
