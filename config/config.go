// File: config/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Startup configuration: defaults, optional YAML file, environment overrides.

package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/momentics/ncrelay/api"
	"github.com/momentics/ncrelay/completion"
	"github.com/momentics/ncrelay/pool"
)

// Config is the complete relay configuration.
type Config struct {
	Listen     ListenConfig      `yaml:"listen"`
	BufferSize int               `yaml:"buffer_size"`
	MaxEvents  int               `yaml:"max_events"`
	CPU        int               `yaml:"cpu"`
	Console    bool              `yaml:"console"`
	Completion completion.Config `yaml:"completion"`
	Params     api.Params        `yaml:"params"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// ListenConfig describes the listening socket.
type ListenConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Backlog int    `yaml:"backlog"`
}

// LoggingConfig selects the zap configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{
			Host:    "0.0.0.0",
			Port:    8888,
			Backlog: 20,
		},
		BufferSize: pool.DefaultBufferSize,
		MaxEvents:  20,
		CPU:        -1,
		Console:    true,
		Completion: completion.DefaultConfig(),
		Params:     api.DefaultParams(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds a configuration from defaults, the YAML file at path (if any)
// and environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("NCRELAY_HOST"); host != "" {
		cfg.Listen.Host = host
	}
	if port := os.Getenv("NCRELAY_PORT"); port != "" {
		if v, err := strconv.Atoi(port); err == nil {
			cfg.Listen.Port = v
		}
	}
	if level := os.Getenv("NCRELAY_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if model := os.Getenv("NCRELAY_MODEL"); model != "" {
		cfg.Completion.Model = model
	}
	if url := os.Getenv("NCRELAY_BASE_URL"); url != "" {
		cfg.Completion.BaseURL = url
	}
}

// Validate checks every field the relay depends on at startup.
func (c *Config) Validate() error {
	if _, err := ParseHost(c.Listen.Host); err != nil {
		return err
	}
	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		return fmt.Errorf("listen port %d out of range: %w", c.Listen.Port, api.ErrInvalidArgument)
	}
	if c.Listen.Backlog < 1 {
		return fmt.Errorf("listen backlog must be at least 1: %w", api.ErrInvalidArgument)
	}
	if c.BufferSize < 4 {
		return fmt.Errorf("buffer size %d too small: %w", c.BufferSize, api.ErrInvalidArgument)
	}
	if c.MaxEvents < 1 {
		return fmt.Errorf("max events must be at least 1: %w", api.ErrInvalidArgument)
	}
	if c.CPU < -1 {
		return fmt.Errorf("cpu %d: use -1 to disable pinning: %w", c.CPU, api.ErrInvalidArgument)
	}
	if c.Params.MaxTokens < 0 {
		return fmt.Errorf("max tokens must not be negative: %w", api.ErrInvalidArgument)
	}
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, api.ErrInvalidArgument)
	}
	return nil
}

// BindAddr returns the validated listen address.
func (c *Config) BindAddr() (netip.AddrPort, error) {
	ip, err := ParseHost(c.Listen.Host)
	if err != nil {
		return netip.AddrPort{}, err
	}
	return netip.AddrPortFrom(ip, uint16(c.Listen.Port)), nil
}

// ParseHost accepts an IPv4 dotted-quad or an IPv6 literal. Zoned IPv6
// addresses and host names are rejected.
func ParseHost(host string) (netip.Addr, error) {
	ip, err := netip.ParseAddr(strings.TrimSpace(host))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("incorrect IP address %q: %w", host, api.ErrInvalidArgument)
	}
	if ip.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("zoned IP address %q not supported: %w", host, api.ErrInvalidArgument)
	}
	return ip, nil
}

func isValidLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// String returns a one-line summary for logging.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Listen: %s:%d, Buffer: %d, Console: %v, Model: %s, LogLevel: %s}",
		c.Listen.Host, c.Listen.Port, c.BufferSize, c.Console, c.Completion.Model, c.Logging.Level)
}
