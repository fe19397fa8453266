package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Simulate)
	assert.Equal(t, 5*time.Second, cfg.Configuration.RetryInterval)
	assert.Equal(t, 3, cfg.Configuration.MaxRetries)
	assert.Len(t, cfg.Simulation.Devices, 2)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
state_file: /tmp/network.json
configuration:
  retry_interval: 2s
  max_retries: 5
  group: 0xC001
simulation:
  devices:
    - identifier: CC-33
      name: Bulb
      models: [onoff, color]
      address: 0x0010
      drop_composition_replies: 2
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Configuration.RetryInterval)
	assert.Equal(t, uint16(0xC001), cfg.Configuration.Group)
	// Unset fields keep their defaults.
	assert.True(t, cfg.Interactive)
	assert.NotEmpty(t, cfg.Configuration.GroupName)

	require.Len(t, cfg.Simulation.Devices, 1)
	d := cfg.Simulation.Devices[0]
	assert.Equal(t, uint16(0x0010), d.Address)

	svc := cfg.ServiceConfig()
	assert.Equal(t, 5, svc.Configuration.MaxRetries)
	assert.Equal(t, mesh.Address(0xC001), svc.Configuration.Group)
	require.NoError(t, svc.Validate())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "log_level: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"zero retry interval", func(c *Config) { c.Configuration.RetryInterval = 0 }},
		{"negative retries", func(c *Config) { c.Configuration.MaxRetries = -1 }},
		{"unicast group", func(c *Config) { c.Configuration.Group = 0x0005 }},
		{"empty identifier", func(c *Config) { c.Simulation.Devices[0].Identifier = "" }},
		{"duplicate identifier", func(c *Config) { c.Simulation.Devices[1].Identifier = "AA-11" }},
		{"unknown model", func(c *Config) { c.Simulation.Devices[0].Models = []string{"toaster"} }},
		{"group device address", func(c *Config) { c.Simulation.Devices[0].Address = 0xC000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDeviceUUIDIsStable(t *testing.T) {
	dc := DeviceConfig{Identifier: "AA-11", Models: []string{"onoff"}}
	a, err := dc.Device()
	require.NoError(t, err)
	b, err := dc.Device()
	require.NoError(t, err)
	assert.Equal(t, a.UUID, b.UUID)

	other, err := DeviceConfig{Identifier: "BB-22"}.Device()
	require.NoError(t, err)
	assert.NotEqual(t, a.UUID, other.UUID)
}

func TestFormatEvent(t *testing.T) {
	ev := events.New("provisioning", events.StatusComplete, "Provisioning complete!").
		With(events.FieldUnicastAddress, uint16(0x0002)).
		With(events.FieldNodeUUID, "abc")
	assert.Equal(t,
		"[provisioning] complete: Provisioning complete! nodeUuid=abc unicastAddress=0x0002",
		formatEvent(ev))

	ev = events.New("configuration", events.StatusError, "Failed").With(events.FieldStatusCode, uint8(2))
	assert.Equal(t, "[configuration] error: Failed statusCode=0x02", formatEvent(ev))
}
