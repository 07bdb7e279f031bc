package view

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	ch, err := ParseChannel("1")
	require.NoError(t, err)
	require.Zero(t, ch)
	ch, err = ParseChannel("4")
	require.NoError(t, err)
	require.Equal(t, 3, ch)
	for _, arg := range []string{"0", "5", "x", ""} {
		_, err = ParseChannel(arg)
		require.Error(t, err, arg)
	}
}
