package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mesh-lifecycle/mesh-go/pkg/configuration"
	meshlog "github.com/mesh-lifecycle/mesh-go/pkg/log"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/provisioning"
	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
)

// Service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyStarted = errors.New("service already started")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNodeNotFound   = errors.New("node not found")
	ErrNoServerModel  = errors.New("server model not found on the node")
	ErrNoClientModel  = errors.New("client model not found on the provisioner")
	ErrNoAppKey       = errors.New("no application key available")
	ErrNoGroup        = errors.New("group not found")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateRunning - service is running normally.
	StateRunning

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Service.
type Config struct {
	// AttentionTimer is the identify duration in seconds sent when a
	// provisioning session starts.
	AttentionTimer uint8

	// Configuration holds the retry policy, group and publication settings.
	Configuration configuration.Settings

	// ScanServices is the advertisement allow-list.
	ScanServices []uint16

	// Clock drives the composition data retry. Nil uses the system clock.
	Clock configuration.Clock

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger

	// Trace receives protocol trace events. Nil disables tracing.
	Trace meshlog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		AttentionTimer: provisioning.DefaultAttentionTimer,
		Configuration:  configuration.DefaultSettings(),
		ScanServices:   scanner.DefaultServices,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	s := c.Configuration
	if s.RetryInterval <= 0 {
		return fmt.Errorf("%w: retry interval must be positive", ErrInvalidConfig)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must not be negative", ErrInvalidConfig)
	}
	if !s.Group.IsGroup() || s.Group == mesh.AllNodes {
		return fmt.Errorf("%w: %s is not a usable group address", ErrInvalidConfig, s.Group)
	}
	return nil
}

// UnknownNodeName is reported for nodes without a name.
const UnknownNodeName = "unknown device"

// NodeInfo summarizes a provisioned node.
type NodeInfo struct {
	Name                  string       `json:"name" yaml:"name"`
	UUID                  uuid.UUID    `json:"uuid" yaml:"uuid"`
	PrimaryUnicastAddress mesh.Address `json:"primaryUnicastAddress" yaml:"primaryUnicastAddress"`
	Configured            bool         `json:"configured" yaml:"configured"`
}

// ColorCode maps a color index to the code published to the group.
// Unknown indices select the default code.
func ColorCode(index int) uint16 {
	switch index {
	case 1:
		return 2222
	case 2:
		return 3333
	case 3:
		return 4444
	default:
		return 1111
	}
}
