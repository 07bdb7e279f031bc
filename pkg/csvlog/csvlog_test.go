package csvlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/adclink/pkg/frame"
)

func TestWriterRows(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	at := time.Date(2024, 1, 2, 13, 4, 5, 0, time.Local)
	require.NoError(t, w.Append(frame.NewSample(0, 1, 2048, 4095).Stamped(at)))
	require.NoError(t, w.Append(frame.NewSample(5, 6, 7, 8).Stamped(at.Add(time.Second))))
	require.NoError(t, w.Close())
	require.Equal(t, 2, w.Rows())
	require.Equal(t, "Time,P1,P2,P3,P4\n13:04:05,0,1,2048,4095\n13:04:06,5,6,7,8\n", buf.String())
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	now := time.Unix(1700000000, 0)
	w, err := Create(dir, now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "log_1700000000.csv"), w.Name())
	require.NoError(t, w.Append(frame.NewSample(1, 2, 3, 4).Stamped(now)))
	require.NoError(t, w.Close())

	content, err := os.ReadFile(w.Name())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Time,P1,P2,P3,P4", lines[0])
	require.True(t, strings.HasSuffix(lines[1], ",1,2,3,4"))
}

func TestCreateMissingDir(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing"), time.Now())
	require.Error(t, err)
}

func TestCreateKeepsEarlierLogOfSameSecond(t *testing.T) {
	dir := t.TempDir()
	now := time.Unix(1700000000, 0)
	first, err := Create(dir, now)
	require.NoError(t, err)
	require.NoError(t, first.Append(frame.NewSample(1, 2, 3, 4).Stamped(now)))
	require.NoError(t, first.Close())

	second, err := Create(dir, now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "log_1700000000_1.csv"), second.Name())
	require.NoError(t, second.Close())

	content, err := os.ReadFile(first.Name())
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(content)), "\n"), 2)
}
