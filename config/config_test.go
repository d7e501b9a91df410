package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/ncrelay/api"
	"github.com/momentics/ncrelay/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	addr, err := cfg.BindAddr()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8888", addr.String())
	assert.Equal(t, api.DefaultParams(), cfg.Params)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ncrelay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen:
  host: "::1"
  port: 9000
buffer_size: 1024
console: false
completion:
  model: my-model
  timeout: 5s
params:
  max_tokens: 256
  temperature: 0.2
logging:
  level: debug
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "::1", cfg.Listen.Host)
	assert.Equal(t, 9000, cfg.Listen.Port)
	assert.Equal(t, 20, cfg.Listen.Backlog, "unset fields keep defaults")
	assert.Equal(t, 1024, cfg.BufferSize)
	assert.False(t, cfg.Console)
	assert.Equal(t, "my-model", cfg.Completion.Model)
	assert.Equal(t, 5*time.Second, cfg.Completion.Timeout)
	assert.Equal(t, 256, cfg.Params.MaxTokens)
	assert.Equal(t, 0.2, cfg.Params.Temperature)
	assert.Equal(t, 1.0, cfg.Params.TopP)

	addr, err := cfg.BindAddr()
	require.NoError(t, err)
	assert.Equal(t, "[::1]:9000", addr.String())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NCRELAY_HOST", "127.0.0.1")
	t.Setenv("NCRELAY_PORT", "7000")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Listen.Host)
	assert.Equal(t, 7000, cfg.Listen.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseHost(t *testing.T) {
	for _, ok := range []string{"0.0.0.0", "192.168.1.20", "::", "fe80::1", "2001:db8::ff00:42:8329"} {
		_, err := config.ParseHost(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "localhost", "256.1.1.1", "01.2.3.4", "1.2.3", "1.2.3.4.5", "fe80::1%eth0", "12345::"} {
		_, err := config.ParseHost(bad)
		assert.ErrorIs(t, err, api.ErrInvalidArgument, bad)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*config.Config){
		"host":      func(c *config.Config) { c.Listen.Host = "example.com" },
		"port":      func(c *config.Config) { c.Listen.Port = 70000 },
		"backlog":   func(c *config.Config) { c.Listen.Backlog = 0 },
		"buffer":    func(c *config.Config) { c.BufferSize = 2 },
		"events":    func(c *config.Config) { c.MaxEvents = 0 },
		"cpu":       func(c *config.Config) { c.CPU = -2 },
		"tokens":    func(c *config.Config) { c.Params.MaxTokens = -1 },
		"log level": func(c *config.Config) { c.Logging.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), api.ErrInvalidArgument)
		})
	}
}

func TestLoggingBuild(t *testing.T) {
	l, err := config.LoggingConfig{Level: "debug", Development: true}.Build()
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = config.LoggingConfig{Level: "loud"}.Build()
	assert.Error(t, err)
}
