package frame

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ActuatorMask is the bitmask carried by a SET command.
// Mutually exclusive bits are not enforced here.
type ActuatorMask uint8

// Actuator bits.
const (
	SecondaryOff ActuatorMask = 1 << iota
	SecondaryOn
	PrimaryOff
	PrimaryOn
	IndicatorSolid
	IndicatorBlink
)

// Rate limits of the device send rate in Hz.
const (
	MinRate = 1
	MaxRate = 20
)

var actuatorNames = []struct {
	bit  ActuatorMask
	name string
}{
	{SecondaryOff, "secondary-off"},
	{SecondaryOn, "secondary-on"},
	{PrimaryOff, "primary-off"},
	{PrimaryOn, "primary-on"},
	{IndicatorSolid, "indicator-solid"},
	{IndicatorBlink, "indicator-blink"},
}

// ActuatorNames lists known actuator bit names in bit order.
func ActuatorNames() []string {
	names := make([]string, len(actuatorNames))
	for n, a := range actuatorNames {
		names[n] = a.name
	}
	return names
}

// ParseActuator maps an actuator name to its bit.
func ParseActuator(name string) (ActuatorMask, error) {
	name = strings.ToLower(name)
	for _, a := range actuatorNames {
		if a.name == name {
			return a.bit, nil
		}
	}
	return 0, fmt.Errorf("unknown actuator %q", name)
}

// Has reports whether all bits in b are set.
func (m ActuatorMask) Has(b ActuatorMask) bool {
	return m&b == b
}

// String lists the names of set bits, e.g. "primary-on|indicator-solid".
func (m ActuatorMask) String() string {
	var names []string
	for _, a := range actuatorNames {
		if m.Has(a.bit) {
			names = append(names, a.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Command is one SET request to the device.
type Command struct {
	Mask ActuatorMask
	Rate uint8
}

// Validate checks the rate range.
func (c Command) Validate() error {
	if c.Rate < MinRate || c.Rate > MaxRate {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrRate, c.Rate, MinRate, MaxRate)
	}
	return nil
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return fmt.Sprintf("SET mask=%d(%s) rate=%dHz", c.Mask, c.Mask, c.Rate)
}

var commandPrefix = []byte("SET")

// Encode renders cmd as a newline terminated SET line.
func Encode(cmd Command) []byte {
	return []byte(fmt.Sprintf("SET,%d,%d\n", cmd.Mask, cmd.Rate))
}

// DecodeCommand parses a SET line. The rate is not range checked.
func DecodeCommand(line []byte) (cmd Command, err error) {
	line = bytes.TrimSpace(line)
	fields := bytes.Split(line, fieldSep)
	if !bytes.Equal(bytes.ToUpper(fields[0]), commandPrefix) {
		return cmd, decodeErr(line, ErrPrefix)
	}
	if len(fields) != 3 {
		return cmd, decodeErr(line, ErrFieldCount)
	}
	mask, err := strconv.ParseUint(string(bytes.TrimSpace(fields[1])), 10, 8)
	if err != nil {
		return cmd, decodeErr(line, ErrNotNumeric)
	}
	rate, err := strconv.ParseUint(string(bytes.TrimSpace(fields[2])), 10, 8)
	if err != nil {
		return cmd, decodeErr(line, ErrNotNumeric)
	}
	return Command{Mask: ActuatorMask(mask), Rate: uint8(rate)}, nil
}
