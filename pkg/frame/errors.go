package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrPrefix indicates the line is not a telemetry line.
	ErrPrefix = errors.New("unexpected prefix")
	// ErrFieldCount indicates the wrong number of fields.
	ErrFieldCount = errors.New("wrong field count")
	// ErrNotNumeric indicates a field is not an unsigned decimal integer.
	ErrNotNumeric = errors.New("field not numeric")
	// ErrOutOfRange indicates a reading above MaxValue.
	ErrOutOfRange = errors.New("value out of range")
	// ErrChecksumMissing indicates a verifying decoder got no checksum.
	ErrChecksumMissing = errors.New("checksum missing")
	// ErrChecksumMismatch indicates the checksum doesn't match the content.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrRate indicates a command rate outside [MinRate, MaxRate].
	ErrRate = errors.New("rate out of range")
)

// DecodeError is returned for any line which can't be decoded.
type DecodeError struct {
	Line string
	Err  error
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Line, e.Err)
}

// Unwrap returns the reason.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(line []byte, err error) error {
	return &DecodeError{Line: string(line), Err: err}
}
