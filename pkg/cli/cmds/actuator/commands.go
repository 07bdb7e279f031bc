package actuator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/adclink/pkg/cli/sh"
	"github.com/robotalks/adclink/pkg/frame"
)

// ParseRate parses a rate in Hz.
func ParseRate(arg string) (uint8, error) {
	n, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q", arg)
	}
	rate := uint8(n)
	return rate, frame.Command{Rate: rate}.Validate()
}

// ParseMask parses a decimal mask or actuator names joined with |.
func ParseMask(arg string) (frame.ActuatorMask, error) {
	if n, err := strconv.ParseUint(arg, 0, 8); err == nil {
		return frame.ActuatorMask(n), nil
	}
	var mask frame.ActuatorMask
	for _, name := range strings.Split(arg, "|") {
		bit, err := frame.ParseActuator(name)
		if err != nil {
			return 0, err
		}
		mask |= bit
	}
	return mask, nil
}

var (
	// LedCmd toggles actuators.
	LedCmd = ishell.Cmd{
		Name:     "led",
		Help:     "NAME... (" + strings.Join(frame.ActuatorNames(), ", ") + ")",
		LongHelp: "Toggles the named actuators and sends the command.",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("NAME required"))
				return
			}
			var bits frame.ActuatorMask
			for _, arg := range c.Args {
				bit, err := frame.ParseActuator(arg)
				if err != nil {
					c.Err(err)
					return
				}
				bits |= bit
			}
			sh.SendControl(c, func(s *sh.Shell) error { return s.Controls.Toggle(bits) })
		},
		Completer: func([]string) []string {
			return frame.ActuatorNames()
		},
	}

	// MaskCmd sets the actuator mask.
	MaskCmd = ishell.Cmd{
		Name: "mask",
		Help: "MASK (number or names joined with |)",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("MASK required"))
				return
			}
			mask, err := ParseMask(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.SendControl(c, func(s *sh.Shell) error { return s.Controls.SetMask(mask) })
		},
	}

	// RateCmd sets the rate.
	RateCmd = ishell.Cmd{
		Name: "rate",
		Help: fmt.Sprintf("HZ(%d-%d)", frame.MinRate, frame.MaxRate),
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("HZ required"))
				return
			}
			rate, err := ParseRate(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.SendControl(c, func(s *sh.Shell) error { return s.Controls.SetRate(rate) })
		},
	}

	// PresetCmd selects the solid indicator at a rate, 1 or 10 Hz usually.
	PresetCmd = ishell.Cmd{
		Name: "preset",
		Help: "HZ",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("HZ required"))
				return
			}
			rate, err := ParseRate(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.SendControl(c, func(s *sh.Shell) error { return s.Controls.Preset(rate) })
		},
	}

	// SendCmd sends a raw SET command without changing the controls.
	SendCmd = ishell.Cmd{
		Name: "send",
		Help: "SET,MASK,RATE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			cmd, err := frame.DecodeCommand([]byte(strings.Join(c.Args, "")))
			if err != nil {
				c.Err(err)
				return
			}
			if err := sh.ShellFrom(c).Device.SendCommand(cmd); err != nil {
				c.Err(err)
				return
			}
			c.Println(cmd.String())
		}),
	}
)

func init() {
	sh.AddCmds(
		&LedCmd,
		&MaskCmd,
		&RateCmd,
		&PresetCmd,
		&SendCmd,
	)
}
