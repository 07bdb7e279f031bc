package link

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

var (
	// ErrNotOpen indicates the link has no open port.
	ErrNotOpen = errors.New("link not open")
	// ErrNotFound indicates the port doesn't exist.
	ErrNotFound = errors.New("port not found")
	// ErrBusy indicates the port is used by another process.
	ErrBusy = errors.New("port busy")
	// ErrPermission indicates access to the port is denied.
	ErrPermission = errors.New("permission denied")
)

// Error is a LinkError: open failures, writes while closed and read faults.
type Error struct {
	Op   string
	Port string
	Err  error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("link %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("link %s %s: %v", e.Op, e.Port, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps OS level open failures to the sentinel errors,
// keeping the original error in the message.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBusy), errors.Is(err, ErrPermission):
		return err
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	case errors.Is(err, syscall.EBUSY):
		return fmt.Errorf("%w: %v", ErrBusy, err)
	}
	return err
}
