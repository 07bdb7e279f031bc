// Package sh provides the interactive shell of adclink.
package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/adclink/pkg/command"
	"github.com/robotalks/adclink/pkg/config"
	"github.com/robotalks/adclink/pkg/device"
	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
	"github.com/robotalks/adclink/pkg/monitor"
	"github.com/robotalks/adclink/pkg/reader"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell    *ishell.Shell
	Config   *config.Config
	Device   *device.Device
	Controls *command.Controls
	Monitor  *monitor.Monitor

	// ListPorts enumerates serial ports.
	ListPorts func() ([]link.PortInfo, error)
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	commands []*ishell.Cmd

	// ErrNotConnected is reported by commands requiring an open port.
	ErrNotConnected = errors.New("not connected")
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell presenting the device.
func New(conf *config.Config, dev *device.Device) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:     ishell.New(),
		Config:    conf,
		Device:    dev,
		Controls:  command.NewControls(dev),
		Monitor:   monitor.New(conf.History),
		ListPorts: link.ListPorts,
	}
	s.Monitor.LogDir = conf.LogDir
	dev.Subscribe(s.Monitor)
	dev.Subscribe(reader.HandleEventFunc(s.handleFault))
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requiring an open port.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if !ShellFrom(c).Device.State().Open {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// Print prints v as JSON when OutputJSON is set, otherwise as text.
func Print(c *ishell.Context, v interface{}, text string) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// handleFault runs in the drain: a faulted port is closed, unless it has
// been reopened since the fault was read.
func (s *Shell) handleFault(_ context.Context, ev reader.Event) {
	if ev.Kind != reader.EventFault {
		return
	}
	glog.Errorf("%v", ev.Err)
	if st := s.Device.State(); !st.Open || st.Generation != ev.Generation {
		glog.V(2).Infof("stale fault of generation %d ignored", ev.Generation)
		return
	}
	s.Shell.Printf("link fault: %v, disconnecting\n", ev.Err)
	s.Disconnect()
}

// Ports enumerates serial ports.
func (s *Shell) Ports() ([]link.PortInfo, error) {
	return s.ListPorts()
}

// SelectPort picks the port to connect when none is given: the configured
// one, the only one present, or a choice in interactive mode.
func (s *Shell) SelectPort() (string, error) {
	if s.Config.Port != "" {
		return s.Config.Port, nil
	}
	ports, err := s.Ports()
	if err != nil {
		return "", err
	}
	switch {
	case len(ports) == 0:
		return "", fmt.Errorf("no serial ports found")
	case len(ports) == 1:
		return ports[0].Name, nil
	case !s.Interactive:
		return "", fmt.Errorf("%d serial ports found, specify one", len(ports))
	}
	items := make([]string, len(ports))
	for n, p := range ports {
		items[n] = p.String()
	}
	return ports[s.Shell.MultiChoice(items, "Which port to connect?")].Name, nil
}

// Connect opens the port.
func (s *Shell) Connect(port string) error {
	if err := s.Device.Connect(port); err != nil {
		s.Shell.SetPrompt(unconnectedPrompt)
		return err
	}
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", port))
	return nil
}

// Disconnect closes the port.
func (s *Shell) Disconnect() error {
	s.Shell.SetPrompt(unconnectedPrompt)
	return s.Device.Disconnect()
}

// StatusInfo is printed by the status command.
type StatusInfo struct {
	Open     bool   `json:"open"`
	Port     string `json:"port,omitempty"`
	Lines    uint64 `json:"lines"`
	Samples  uint64 `json:"samples"`
	Dropped  uint64 `json:"dropped"`
	Faults   uint64 `json:"faults"`
	Mask     uint8  `json:"mask"`
	Rate     uint8  `json:"rate"`
	Channel  int    `json:"graph_channel"`
	Logging  string `json:"logging,omitempty"`
	Latest   []int  `json:"latest,omitempty"`
	LastSeen string `json:"last_seen,omitempty"`
}

// Status collects the current state.
func (s *Shell) Status() StatusInfo {
	st, stats, cmd := s.Device.State(), s.Device.Stats(), s.Controls.Current()
	info := StatusInfo{
		Open:    st.Open,
		Port:    st.Port,
		Lines:   stats.Lines,
		Samples: stats.Samples,
		Dropped: stats.Dropped,
		Faults:  stats.Faults,
		Mask:    uint8(cmd.Mask),
		Rate:    cmd.Rate,
		Channel: s.Monitor.Channel() + 1,
		Logging: s.Monitor.Logging(),
	}
	if latest, ok := s.Monitor.Latest(); ok {
		for _, v := range latest.Values {
			info.Latest = append(info.Latest, int(v))
		}
		info.LastSeen = latest.At.Format(time.RFC3339)
	}
	return info
}

// String implements fmt.Stringer.
func (i StatusInfo) String() string {
	var sb strings.Builder
	if i.Open {
		fmt.Fprintf(&sb, "connected %s at %d baud\n", i.Port, link.BaudRate)
	} else {
		sb.WriteString("disconnected\n")
	}
	fmt.Fprintf(&sb, "lines %d, samples %d, dropped %d, faults %d\n", i.Lines, i.Samples, i.Dropped, i.Faults)
	fmt.Fprintf(&sb, "command mask=%d(%s) rate=%dHz, graph Pot %d", i.Mask, frame.ActuatorMask(i.Mask), i.Rate, i.Channel)
	if i.Logging != "" {
		fmt.Fprintf(&sb, "\nlogging to %s", i.Logging)
	}
	if len(i.Latest) > 0 {
		fmt.Fprintf(&sb, "\nlatest %v at %s", i.Latest, i.LastSeen)
	}
	return sb.String()
}

// Watch waits for up to n samples, calling fn for each, until timeout
// passes without a sample.
func (s *Shell) Watch(n int, timeout time.Duration, fn func(frame.Sample)) int {
	ch := make(chan frame.Sample, n)
	sub := s.Device.OnSample(func(sample frame.Sample) {
		select {
		case ch <- sample:
		default:
		}
	})
	defer sub.Close()
	for count := 0; count < n; count++ {
		select {
		case sample := <-ch:
			fn(sample)
		case <-time.After(timeout):
			return count
		}
	}
	return n
}

// Run connects the configured port if any, then evaluates args or runs the
// interactive shell. A failed connect is only returned in evaluation mode,
// otherwise the shell starts disconnected. The drain runs until ctx is done.
func (s *Shell) Run(ctx context.Context, args ...string) error {
	if s.Config.Port != "" {
		if err := s.Connect(s.Config.Port); err != nil {
			if !s.Interactive {
				return err
			}
			glog.Warningf("connect %s: %v", s.Config.Port, err)
			s.Shell.Printf("%v\n", err)
		}
	}
	defer s.Device.Disconnect()
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	go func() {
		<-ctx.Done()
		s.Shell.Close()
	}()
	s.Shell.Run()
	return nil
}

// SendControl applies a controls change and reports the command.
func SendControl(c *ishell.Context, fn func(*Shell) error) {
	s := ShellFrom(c)
	if err := fn(s); err != nil {
		c.Err(err)
		return
	}
	cmd := s.Controls.Current()
	if !s.Device.State().Open {
		c.Println(cmd.String() + " (not connected, not sent)")
		return
	}
	c.Println(cmd.String())
}
