package sh

import (
	"strings"

	"github.com/abiosoft/ishell"
)

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "list serial ports",
		Func: func(c *ishell.Context) {
			ports, err := ShellFrom(c).Ports()
			if err != nil {
				c.Err(err)
				return
			}
			names := make([]string, len(ports))
			for n, p := range ports {
				names[n] = p.String()
			}
			if len(names) == 0 {
				Print(c, names, "No serial ports found")
				return
			}
			Print(c, ports, strings.Join(names, "\n"))
		},
	}

	// ConnectCmd opens a port.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var port string
			if len(c.Args) > 0 {
				port = c.Args[0]
			} else {
				var err error
				if port, err = s.SelectPort(); err != nil {
					c.Err(err)
					return
				}
			}
			if err := s.Connect(port); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes the port.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Disconnect(); err != nil {
				c.Err(err)
			}
		},
	}

	// StatusCmd prints link, reader and command state.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: func(c *ishell.Context) {
			info := ShellFrom(c).Status()
			Print(c, info, info.String())
		},
	}
)

func init() {
	AddCmds(
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
	)
}
