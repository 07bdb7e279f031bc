package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/adclink/pkg/cli/sh"
	"github.com/robotalks/adclink/pkg/frame"
)

// ParseChannel parses a 1-based channel number.
func ParseChannel(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || !frame.ValidChannel(n-1) {
		return 0, fmt.Errorf("invalid channel %q, expect 1-%d", arg, frame.Channels)
	}
	return n - 1, nil
}

var (
	// MeterCmd prints the bar meters of the latest sample.
	MeterCmd = ishell.Cmd{
		Name:    "meter",
		Aliases: []string{"m"},
		Help:    "",
		Func: func(c *ishell.Context) {
			m := sh.ShellFrom(c).Monitor
			latest, _ := m.Latest()
			sh.Print(c, latest, m.Meters())
		},
	}

	// GraphCmd prints the trace of a channel, selecting another one clears it.
	GraphCmd = ishell.Cmd{
		Name:    "graph",
		Aliases: []string{"g"},
		Help:    "[CHANNEL(1-4)]",
		Func: func(c *ishell.Context) {
			m := sh.ShellFrom(c).Monitor
			if len(c.Args) > 0 {
				ch, err := ParseChannel(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				if ch != m.Channel() {
					m.Select(ch)
				}
			}
			c.Println(m.Graph(60))
		},
	}

	// WatchCmd prints samples as they arrive.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[COUNT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			n := 10
			if len(c.Args) > 0 {
				var err error
				if n, err = strconv.Atoi(c.Args[0]); err != nil || n <= 0 {
					c.Err(fmt.Errorf("invalid COUNT %q", c.Args[0]))
					return
				}
			}
			s := sh.ShellFrom(c)
			got := s.Watch(n, time.Second, func(sample frame.Sample) {
				sh.Print(c, sample, sample.At.Format("15:04:05.000")+" "+sample.String())
			})
			if got < n {
				c.Err(fmt.Errorf("no samples in %v", time.Second))
			}
		}),
	}

	// LogCmd starts or stops CSV logging.
	LogCmd = ishell.Cmd{
		Name: "log",
		Help: "start|stop",
		Func: func(c *ishell.Context) {
			m := sh.ShellFrom(c).Monitor
			if len(c.Args) != 1 {
				if name := m.Logging(); name != "" {
					c.Println("logging to " + name)
				} else {
					c.Println("not logging")
				}
				return
			}
			switch c.Args[0] {
			case "start":
				name, err := m.StartLog()
				if err != nil {
					c.Err(err)
					return
				}
				c.Println("logging to " + name)
			case "stop":
				name, rows, err := m.StopLog()
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("%s: %d rows\n", name, rows)
			default:
				c.Err(fmt.Errorf("unknown action %q", c.Args[0]))
			}
		},
	}
)

func init() {
	sh.AddCmds(
		&MeterCmd,
		&GraphCmd,
		&WatchCmd,
		&LogCmd,
	)
}
