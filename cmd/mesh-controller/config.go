package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mesh-lifecycle/mesh-go/internal/sim"
	"github.com/mesh-lifecycle/mesh-go/pkg/configuration"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/service"
)

// Config holds the controller configuration.
type Config struct {
	LogLevel       string              `yaml:"log_level"`
	TraceFile      string              `yaml:"trace_file"`
	StateFile      string              `yaml:"state_file"`
	Simulate       bool                `yaml:"simulate"`
	Interactive    bool                `yaml:"interactive"`
	AttentionTimer uint8               `yaml:"attention_timer"`
	Configuration  ConfigurationConfig `yaml:"configuration"`
	Simulation     SimulationConfig    `yaml:"simulation"`
}

// ConfigurationConfig holds node configuration settings.
type ConfigurationConfig struct {
	RetryInterval time.Duration `yaml:"retry_interval"`
	MaxRetries    int           `yaml:"max_retries"`
	Group         uint16        `yaml:"group"`
	GroupName     string        `yaml:"group_name"`
	AppKeyName    string        `yaml:"app_key_name"`
	Publish       PublishConfig `yaml:"publish"`
}

// PublishConfig holds the publication parameters set on nodes.
type PublishConfig struct {
	TTL                     uint8 `yaml:"ttl"`
	PeriodSteps             uint8 `yaml:"period_steps"`
	PeriodResolution        uint8 `yaml:"period_resolution"`
	RetransmitCount         uint8 `yaml:"retransmit_count"`
	RetransmitIntervalSteps uint8 `yaml:"retransmit_interval_steps"`
}

// SimulationConfig lists the devices of the simulated mesh.
type SimulationConfig struct {
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig describes a simulated device.
type DeviceConfig struct {
	Identifier string   `yaml:"identifier"`
	Name       string   `yaml:"name"`
	Models     []string `yaml:"models"` // onoff, color, vendor

	// Address places the device in the network as already provisioned.
	Address uint16 `yaml:"address"`

	DropCompositionReplies int           `yaml:"drop_composition_replies"`
	RequireInputOOB        bool          `yaml:"require_input_oob"`
	Latency                time.Duration `yaml:"latency"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	settings := configuration.DefaultSettings()
	return &Config{
		LogLevel:       "info",
		Simulate:       true,
		Interactive:    true,
		AttentionTimer: 5,
		Configuration: ConfigurationConfig{
			RetryInterval: settings.RetryInterval,
			MaxRetries:    settings.MaxRetries,
			Group:         uint16(settings.Group),
			GroupName:     settings.GroupName,
			AppKeyName:    settings.AppKeyName,
			Publish: PublishConfig{
				TTL:                     settings.Publish.TTL,
				PeriodSteps:             settings.Publish.PeriodSteps,
				PeriodResolution:        settings.Publish.PeriodResolution,
				RetransmitCount:         settings.Publish.RetransmitCount,
				RetransmitIntervalSteps: settings.Publish.RetransmitIntervalSteps,
			},
		},
		Simulation: SimulationConfig{
			Devices: []DeviceConfig{
				{Identifier: "AA-11", Name: "Desk Lamp", Models: []string{"onoff"}, Latency: 20 * time.Millisecond},
				{Identifier: "BB-22", Name: "LED Strip", Models: []string{"color"}, Latency: 20 * time.Millisecond},
			},
		},
	}
}

// LoadConfig reads and parses a YAML config file. Missing fields keep
// their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	if c.Configuration.RetryInterval <= 0 {
		return fmt.Errorf("configuration.retry_interval must be > 0")
	}
	if c.Configuration.MaxRetries < 0 {
		return fmt.Errorf("configuration.max_retries must be >= 0")
	}
	if !mesh.Address(c.Configuration.Group).IsGroup() {
		return fmt.Errorf("configuration.group %s is not a group address", mesh.Address(c.Configuration.Group))
	}

	seen := make(map[string]bool)
	for i, d := range c.Simulation.Devices {
		if d.Identifier == "" {
			return fmt.Errorf("simulation.devices[%d].identifier must not be empty", i)
		}
		if seen[d.Identifier] {
			return fmt.Errorf("simulation.devices[%d]: duplicate identifier %q", i, d.Identifier)
		}
		seen[d.Identifier] = true
		if _, err := d.modelIDs(); err != nil {
			return fmt.Errorf("simulation.devices[%d]: %w", i, err)
		}
		if d.Address != 0 && !mesh.Address(d.Address).IsUnicast() {
			return fmt.Errorf("simulation.devices[%d].address %s is not a unicast address", i, mesh.Address(d.Address))
		}
	}
	return nil
}

// ServiceConfig converts the settings to a service configuration.
func (c *Config) ServiceConfig() service.Config {
	cfg := service.DefaultConfig()
	if c.AttentionTimer != 0 {
		cfg.AttentionTimer = c.AttentionTimer
	}
	p := c.Configuration.Publish
	cfg.Configuration = configuration.Settings{
		RetryInterval: c.Configuration.RetryInterval,
		MaxRetries:    c.Configuration.MaxRetries,
		Group:         mesh.Address(c.Configuration.Group),
		GroupName:     c.Configuration.GroupName,
		AppKeyName:    c.Configuration.AppKeyName,
		Publish: mesh.Publish{
			TTL:                     p.TTL,
			PeriodSteps:             p.PeriodSteps,
			PeriodResolution:        p.PeriodResolution,
			RetransmitCount:         p.RetransmitCount,
			RetransmitIntervalSteps: p.RetransmitIntervalSteps,
		},
	}
	return cfg
}

// simulationNamespace derives stable device UUIDs from identifiers, so a
// persisted network recognizes simulated devices across runs.
var simulationNamespace = uuid.MustParse("6b0e4d8a-3f1c-4c55-9b8e-2d7a1f0c9e31")

// Device builds the simulated device.
func (d DeviceConfig) Device() (sim.Device, error) {
	models, err := d.modelIDs()
	if err != nil {
		return sim.Device{}, err
	}
	dev := sim.NewDevice(d.Identifier, d.Name, models...)
	dev.UUID = uuid.NewSHA1(simulationNamespace, []byte(d.Identifier))
	dev.DropCompositionReplies = d.DropCompositionReplies
	dev.RequireInputOOB = d.RequireInputOOB
	dev.Latency = d.Latency
	return dev, nil
}

func (d DeviceConfig) modelIDs() ([]mesh.ModelID, error) {
	out := make([]mesh.ModelID, 0, len(d.Models))
	for _, m := range d.Models {
		switch strings.ToLower(m) {
		case "onoff":
			out = append(out, mesh.GenericOnOffServer)
		case "color":
			out = append(out, mesh.GenericColorServer)
		case "vendor":
			out = append(out, mesh.CustomVendorServer)
		default:
			return nil, fmt.Errorf("unknown model %q (use onoff, color, vendor)", m)
		}
	}
	return out, nil
}
