package frame

import (
	"bytes"
	"strconv"
)

// Decoder decodes telemetry lines.
type Decoder struct {
	Checksum ChecksumMode
}

var (
	telemetryPrefix = []byte("A")
	fieldSep        = []byte(",")
)

// DefaultDecoder tolerates checksums without verifying them.
var DefaultDecoder = &Decoder{Checksum: ChecksumIgnore}

// Decode decodes a line using DefaultDecoder.
func Decode(line []byte) (Sample, error) {
	return DefaultDecoder.Decode(line)
}

// Decode decodes one line into a Sample. The returned Sample is not stamped.
// On error, the returned error is always a *DecodeError.
func (d *Decoder) Decode(line []byte) (s Sample, err error) {
	line = bytes.TrimSpace(line)
	content, suffix, present := cutByte(line, checksumSep)
	fields := bytes.Split(content, fieldSep)
	if !bytes.Equal(fields[0], telemetryPrefix) {
		return s, decodeErr(line, ErrPrefix)
	}
	if len(fields) != Channels+1 {
		return s, decodeErr(line, ErrFieldCount)
	}
	for n, field := range fields[1:] {
		v, err := parseReading(field)
		if err != nil {
			return Sample{}, decodeErr(line, err)
		}
		s.Values[n] = v
	}
	if err = d.Checksum.verify(content, suffix, present); err != nil {
		return Sample{}, decodeErr(line, err)
	}
	return s, nil
}

func parseReading(field []byte) (uint16, error) {
	if len(field) == 0 || field[0] < '0' || field[0] > '9' {
		return 0, ErrNotNumeric
	}
	v, err := strconv.ParseUint(string(field), 10, 32)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, ErrOutOfRange
		}
		return 0, ErrNotNumeric
	}
	if v > MaxValue {
		return 0, ErrOutOfRange
	}
	return uint16(v), nil
}

func cutByte(s []byte, sep byte) (before, after []byte, found bool) {
	if i := bytes.IndexByte(s, sep); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, nil, false
}
