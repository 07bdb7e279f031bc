package frame

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksumSums(t *testing.T) {
	require.Equal(t, uint16(0x5c), ChecksumXOR.sum([]byte("A,1")))
	require.Equal(t, uint16(0x4b37), ChecksumCRC16.sum([]byte("123456789")))
	require.Equal(t, uint16(0), ChecksumIgnore.sum([]byte("123456789")))
}

func TestAppendChecksum(t *testing.T) {
	require.Equal(t, "A,1*5C", string(AppendChecksum([]byte("A,1"), ChecksumXOR)))
	require.Equal(t, "123456789*4B37", string(AppendChecksum([]byte("123456789"), ChecksumCRC16)))
	require.Equal(t, "A,1", string(AppendChecksum([]byte("A,1"), ChecksumIgnore)))
}

func TestDecodeWithChecksum(t *testing.T) {
	for _, mode := range []ChecksumMode{ChecksumXOR, ChecksumCRC16} {
		t.Run(mode.String(), func(t *testing.T) {
			d := &Decoder{Checksum: mode}
			line := AppendChecksum([]byte("A,100,200,300,400"), mode)

			s, err := d.Decode(line)
			require.NoError(t, err)
			require.Equal(t, NewSample(100, 200, 300, 400), s)

			s, err = d.Decode(append(append([]byte{}, line...), " trailing\r\n"...))
			require.NoError(t, err)
			require.Equal(t, NewSample(100, 200, 300, 400), s)

			_, err = d.Decode([]byte("A,100,200,300,400"))
			require.True(t, errors.Is(err, ErrChecksumMissing), "got %v", err)

			_, err = d.Decode([]byte("A,100,200,300,400*"))
			require.True(t, errors.Is(err, ErrChecksumMissing), "got %v", err)

			_, err = d.Decode([]byte("A,100,200,300,400*zzzz"))
			require.True(t, errors.Is(err, ErrChecksumMissing), "got %v", err)

			corrupted := AppendChecksum([]byte("A,100,200,300,401"), mode)
			copy(corrupted, "A,100,200,300,400")
			_, err = d.Decode(corrupted)
			require.True(t, errors.Is(err, ErrChecksumMismatch), "got %v", err)
		})
	}
}

func TestChecksumLowercaseHex(t *testing.T) {
	d := &Decoder{Checksum: ChecksumXOR}
	line := AppendChecksum([]byte("A,10,20,30,40"), ChecksumXOR)
	hex := len(line) - 2
	s, err := d.Decode([]byte(string(line[:hex]) + strings.ToLower(string(line[hex:]))))
	require.NoError(t, err)
	require.Equal(t, NewSample(10, 20, 30, 40), s)
}

func TestParseChecksumMode(t *testing.T) {
	testCases := []struct {
		in     string
		expect ChecksumMode
	}{
		{"", ChecksumIgnore},
		{"ignore", ChecksumIgnore},
		{"none", ChecksumIgnore},
		{"XOR", ChecksumXOR},
		{"crc16", ChecksumCRC16},
	}
	for _, tc := range testCases {
		m, err := ParseChecksumMode(tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.expect, m)
	}
	_, err := ParseChecksumMode("md5")
	require.Error(t, err)
}
