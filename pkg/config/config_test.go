package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
	"github.com/robotalks/adclink/pkg/sim"
)

const testYAML = `
port: /dev/ttyUSB0
driver: tarm
checksum: xor
read_timeout: 50ms
history: 200
mqtt:
  url: mqtt://broker:1883/adc/
  codec: proto
websocket:
  addr: ":8080"
`

func writeConfig(t *testing.T, content string) string {
	name := filepath.Join(t.TempDir(), "adclink.yaml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
	return name
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	opts, err := cfg.DeviceOptions()
	require.NoError(t, err)
	require.Equal(t, frame.ChecksumIgnore, opts.Checksum)
	require.Equal(t, link.DefaultReadTimeout, opts.ReadTimeout)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB0", cfg.Port)
	require.Equal(t, "tarm", cfg.Driver)
	require.Equal(t, 50*time.Millisecond, cfg.ReadTimeout)
	require.Equal(t, 200, cfg.History)
	require.Equal(t, "proto", cfg.MQTT.Codec)
	require.Equal(t, ":8080", cfg.WebSocket.Addr)
	require.Equal(t, "json", cfg.WebSocket.Codec)
	require.NoError(t, cfg.Validate())

	opts, err := cfg.DeviceOptions()
	require.NoError(t, err)
	require.Equal(t, frame.ChecksumXOR, opts.Checksum)
	require.IsType(t, link.TarmDriver{}, opts.Driver)

	_, err = Load(writeConfig(t, "history: [1"))
	require.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSimDriver(t *testing.T) {
	cfg := Default()
	cfg.Driver, cfg.Checksum = "sim", "crc16"
	opts, err := cfg.DeviceOptions()
	require.NoError(t, err)
	require.Equal(t, sim.Driver{Checksum: frame.ChecksumCRC16}, opts.Driver)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{EnvPort: "COM3", EnvChecksum: "crc16"}
	cfg.ApplyEnv(func(name string) string { return env[name] })
	require.Equal(t, "COM3", cfg.Port)
	require.Equal(t, "crc16", cfg.Checksum)
	require.Equal(t, "bugst", cfg.Driver)
}

func TestValidate(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Driver = "usb" },
		func(c *Config) { c.Checksum = "md5" },
		func(c *Config) { c.ReadTimeout = 0 },
		func(c *Config) { c.Interval = -1 },
		func(c *Config) { c.QueueSize = 0 },
		func(c *Config) { c.History = 0 },
		func(c *Config) { c.MQTT.Codec = "xml" },
		func(c *Config) { c.WebSocket.Codec = "xml" },
	}
	for n, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		require.Error(t, cfg.Validate(), "case %d", n)
	}
}

func TestFlagsOverride(t *testing.T) {
	for _, name := range []string{EnvPort, EnvDriver, EnvChecksum, EnvMQTTURL, EnvLogDir} {
		t.Setenv(name, "")
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := SetupFlags(fs)
	file := writeConfig(t, testYAML)
	require.NoError(t, fs.Parse([]string{"-config", file, "-port", "/dev/ttyACM0", "-history", "50"}))
	cfg, err := flags.Resolve()
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM0", cfg.Port)
	require.Equal(t, 50, cfg.History)
	// from file, not overridden by flag defaults
	require.Equal(t, "tarm", cfg.Driver)
	require.Equal(t, "xor", cfg.Checksum)

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	flags = SetupFlags(fs)
	require.NoError(t, fs.Parse([]string{"-checksum", "sha"}))
	_, err = flags.Resolve()
	require.Error(t, err)
}
