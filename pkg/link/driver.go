package link

import (
	"fmt"
	"strings"
	"time"
)

// Driver opens serial ports.
type Driver interface {
	Open(name string, baud int, readTimeout time.Duration) (Port, error)
}

// DriverFunc is the func form of Driver.
type DriverFunc func(name string, baud int, readTimeout time.Duration) (Port, error)

// Open implements Driver.
func (f DriverFunc) Open(name string, baud int, readTimeout time.Duration) (Port, error) {
	return f(name, baud, readTimeout)
}

// DefaultDriver is used when Link.Driver is nil.
var DefaultDriver Driver = BugstDriver{}

// DriverByName returns a driver by its configuration name.
func DriverByName(name string) (Driver, error) {
	switch strings.ToLower(name) {
	case "", "bugst":
		return BugstDriver{}, nil
	case "tarm":
		return TarmDriver{}, nil
	}
	return nil, fmt.Errorf("unknown serial driver %q", name)
}
