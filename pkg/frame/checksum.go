package frame

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sigurn/crc16"
)

// ChecksumMode selects how the *<checksum> suffix of a telemetry line is treated.
type ChecksumMode int

// Checksum modes.
const (
	// ChecksumIgnore tolerates the suffix without verifying it.
	ChecksumIgnore ChecksumMode = iota
	// ChecksumXOR expects two hex digits: XOR of all bytes before '*'.
	ChecksumXOR
	// ChecksumCRC16 expects four hex digits: CRC-16/MODBUS of all bytes before '*'.
	ChecksumCRC16
)

const checksumSep = '*'

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// ParseChecksumMode parses the name of a mode.
func ParseChecksumMode(name string) (ChecksumMode, error) {
	switch strings.ToLower(name) {
	case "", "ignore", "none":
		return ChecksumIgnore, nil
	case "xor":
		return ChecksumXOR, nil
	case "crc16":
		return ChecksumCRC16, nil
	}
	return ChecksumIgnore, fmt.Errorf("unknown checksum mode %q", name)
}

// String implements fmt.Stringer.
func (m ChecksumMode) String() string {
	switch m {
	case ChecksumIgnore:
		return "ignore"
	case ChecksumXOR:
		return "xor"
	case ChecksumCRC16:
		return "crc16"
	}
	return "ChecksumMode(" + strconv.Itoa(int(m)) + ")"
}

// digits is the number of hex digits carried on the wire.
func (m ChecksumMode) digits() int {
	switch m {
	case ChecksumXOR:
		return 2
	case ChecksumCRC16:
		return 4
	}
	return 0
}

func (m ChecksumMode) sum(content []byte) uint16 {
	switch m {
	case ChecksumXOR:
		var x byte
		for _, b := range content {
			x ^= b
		}
		return uint16(x)
	case ChecksumCRC16:
		return crc16.Checksum(content, crcTable)
	}
	return 0
}

// verify checks suffix (the bytes after '*') against content.
func (m ChecksumMode) verify(content, suffix []byte, present bool) error {
	if m == ChecksumIgnore {
		return nil
	}
	n := m.digits()
	if !present || len(suffix) < n {
		return ErrChecksumMissing
	}
	got, err := strconv.ParseUint(string(suffix[:n]), 16, 16)
	if err != nil {
		return ErrChecksumMissing
	}
	if uint16(got) != m.sum(content) {
		return ErrChecksumMismatch
	}
	return nil
}

// AppendChecksum appends *<checksum> to a telemetry line without newline.
// ChecksumIgnore returns the line unchanged.
func AppendChecksum(line []byte, mode ChecksumMode) []byte {
	n := mode.digits()
	if n == 0 {
		return line
	}
	return append(line, fmt.Sprintf("%c%0*X", checksumSep, n, mode.sum(line))...)
}
