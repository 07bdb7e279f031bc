// Package config resolves the settings of adclink from built-in defaults,
// an optional YAML file, the environment and command line flags, in that
// order.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/adclink/pkg/bridge/payload"
	"github.com/robotalks/adclink/pkg/device"
	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
	"github.com/robotalks/adclink/pkg/reader"
	"github.com/robotalks/adclink/pkg/sim"
)

// Config is the complete configuration.
type Config struct {
	// Port is connected on start when set.
	Port        string        `yaml:"port"`
	Driver      string        `yaml:"driver"`
	Checksum    string        `yaml:"checksum"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	Interval    time.Duration `yaml:"interval"`
	QueueSize   int           `yaml:"queue_size"`
	History     int           `yaml:"history"`
	LogDir      string        `yaml:"log_dir"`

	MQTT      MQTTConfig      `yaml:"mqtt"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// MQTTConfig configures the MQTT bridge. Disabled when URL is empty.
type MQTTConfig struct {
	// URL is mqtt://host:port/topic-prefix/
	URL   string `yaml:"url"`
	ID    string `yaml:"id"`
	Codec string `yaml:"codec"`
}

// WebSocketConfig configures the WebSocket feed. Disabled when Addr is empty.
type WebSocketConfig struct {
	Addr  string `yaml:"addr"`
	Codec string `yaml:"codec"`
}

// Environment variables.
const (
	EnvPort     = "ADCLINK_PORT"
	EnvDriver   = "ADCLINK_DRIVER"
	EnvChecksum = "ADCLINK_CHECKSUM"
	EnvMQTTURL  = "ADCLINK_MQTT_URL"
	EnvLogDir   = "ADCLINK_LOG_DIR"
)

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Driver:      "bugst",
		Checksum:    frame.ChecksumIgnore.String(),
		ReadTimeout: link.DefaultReadTimeout,
		Interval:    reader.DefaultInterval,
		QueueSize:   reader.DefaultQueueSize,
		History:     100,
		LogDir:      ".",
		MQTT:        MQTTConfig{Codec: "json"},
		WebSocket:   WebSocketConfig{Codec: "json"},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML file over the current values.
func (c *Config) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies the environment variables which are set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	for name, dst := range map[string]*string{
		EnvPort:     &c.Port,
		EnvDriver:   &c.Driver,
		EnvChecksum: &c.Checksum,
		EnvMQTTURL:  &c.MQTT.URL,
		EnvLogDir:   &c.LogDir,
	} {
		if val := getenv(name); val != "" {
			*dst = val
		}
	}
}

// Validate checks the values.
func (c *Config) Validate() error {
	if _, err := c.DeviceOptions(); err != nil {
		return err
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive: %v", c.ReadTimeout)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive: %v", c.Interval)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive: %d", c.QueueSize)
	}
	if c.History <= 0 {
		return fmt.Errorf("history must be positive: %d", c.History)
	}
	if _, err := payload.CodecByName(c.MQTT.Codec); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if _, err := payload.CodecByName(c.WebSocket.Codec); err != nil {
		return fmt.Errorf("websocket: %w", err)
	}
	return nil
}

// DriverSim selects the simulated board.
const DriverSim = "sim"

// DeviceOptions converts the link and reader settings.
func (c *Config) DeviceOptions() (opts device.Options, err error) {
	if opts.Checksum, err = frame.ParseChecksumMode(c.Checksum); err != nil {
		return
	}
	if strings.EqualFold(c.Driver, DriverSim) {
		opts.Driver = sim.Driver{Checksum: opts.Checksum}
	} else if opts.Driver, err = link.DriverByName(c.Driver); err != nil {
		return
	}
	opts.ReadTimeout = c.ReadTimeout
	opts.Interval = c.Interval
	opts.QueueSize = c.QueueSize
	return
}

// Flags binds command line flags. Resolve applies only the flags which
// are explicitly set.
type Flags struct {
	File string

	values Config
	fs     *flag.FlagSet
}

// SetupFlags registers flags on fs, flag.CommandLine when nil.
func SetupFlags(fs *flag.FlagSet) *Flags {
	if fs == nil {
		fs = flag.CommandLine
	}
	f := &Flags{fs: fs, values: *Default()}
	v := &f.values
	fs.StringVar(&f.File, "config", "", "YAML config file.")
	fs.StringVar(&v.Port, "port", v.Port, "Serial port to connect on start.")
	fs.StringVar(&v.Driver, "driver", v.Driver, "Serial driver: bugst, tarm or sim.")
	fs.StringVar(&v.Checksum, "checksum", v.Checksum, "Telemetry checksum: ignore, xor or crc16.")
	fs.DurationVar(&v.ReadTimeout, "read-timeout", v.ReadTimeout, "Serial read timeout.")
	fs.DurationVar(&v.Interval, "interval", v.Interval, "Reader poll interval.")
	fs.IntVar(&v.QueueSize, "queue", v.QueueSize, "Sample queue capacity.")
	fs.IntVar(&v.History, "history", v.History, "Samples kept for graphs.")
	fs.StringVar(&v.LogDir, "log-dir", v.LogDir, "Directory of CSV logs.")
	fs.StringVar(&v.MQTT.URL, "mqtt", v.MQTT.URL, "MQTT broker URL, e.g. mqtt://localhost:1883/adc/.")
	fs.StringVar(&v.MQTT.ID, "mqtt-id", v.MQTT.ID, "Device ID in MQTT topics, machine ID by default.")
	fs.StringVar(&v.MQTT.Codec, "mqtt-codec", v.MQTT.Codec, "MQTT payload codec: json or proto.")
	fs.StringVar(&v.WebSocket.Addr, "ws", v.WebSocket.Addr, "WebSocket feed listen address, e.g. :8080.")
	fs.StringVar(&v.WebSocket.Codec, "ws-codec", v.WebSocket.Codec, "WebSocket payload codec: json or proto.")
	return f
}

// Resolve builds the Config after the flags are parsed.
func (f *Flags) Resolve() (*Config, error) {
	cfg := Default()
	if f.File != "" {
		if err := cfg.LoadFile(f.File); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(nil)
	v := &f.values
	setters := map[string]func(){
		"port":         func() { cfg.Port = v.Port },
		"driver":       func() { cfg.Driver = v.Driver },
		"checksum":     func() { cfg.Checksum = v.Checksum },
		"read-timeout": func() { cfg.ReadTimeout = v.ReadTimeout },
		"interval":     func() { cfg.Interval = v.Interval },
		"queue":        func() { cfg.QueueSize = v.QueueSize },
		"history":      func() { cfg.History = v.History },
		"log-dir":      func() { cfg.LogDir = v.LogDir },
		"mqtt":         func() { cfg.MQTT.URL = v.MQTT.URL },
		"mqtt-id":      func() { cfg.MQTT.ID = v.MQTT.ID },
		"mqtt-codec":   func() { cfg.MQTT.Codec = v.MQTT.Codec },
		"ws":           func() { cfg.WebSocket.Addr = v.WebSocket.Addr },
		"ws-codec":     func() { cfg.WebSocket.Codec = v.WebSocket.Codec },
	}
	f.fs.Visit(func(fl *flag.Flag) {
		if set, ok := setters[fl.Name]; ok {
			set()
		}
	})
	return cfg, cfg.Validate()
}
