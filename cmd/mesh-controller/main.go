// Command mesh-controller scans for, provisions and configures Bluetooth
// mesh nodes.
//
// By default it runs against a simulated mesh so the whole lifecycle can be
// exercised without hardware. With -simulate=false it drives the host BLE
// adapter for scanning and GATT connections.
//
// Usage:
//
//	mesh-controller [flags]
//
// Flags:
//
//	-config string      YAML configuration file
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-trace string       Write a protocol trace to this file
//	-state string       Persist the mesh network to this JSON file
//	-reset              Clear the persisted network before starting
//	-simulate           Use the simulated mesh (default true)
//	-interactive        Enable the interactive shell (default true)
//
// Examples:
//
//	# Explore the lifecycle against the simulated devices
//	mesh-controller
//
//	# Keep the network across runs and record a trace
//	mesh-controller -state ~/.mesh/network.json -trace mesh.mlog
//
//	# Scan with the real adapter
//	mesh-controller -simulate=false
//
// Interactive Commands:
//
//	scan [stop]              - Start or stop scanning
//	devices                  - List discovered devices
//	provision <device-id>    - Provision a discovered device
//	configure <address>      - Configure a provisioned node
//	subscribe <address>      - Subscribe the node to the group
//	publish <address>        - Make the node publish to the group
//	reset <address>          - Reset a node
//	nodes                    - List provisioned nodes
//	onoff <address> <on|off> - Set a node's OnOff state
//	color <address> <color>  - Set a node's color
//	publish-color <index>    - Publish a color to the group
//	status                   - Show controller status
//	quit                     - Exit the controller
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tinygo.org/x/bluetooth"

	"github.com/mesh-lifecycle/mesh-go/cmd/mesh-controller/interactive"
	"github.com/mesh-lifecycle/mesh-go/internal/sim"
	"github.com/mesh-lifecycle/mesh-go/pkg/bearer"
	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	meshlog "github.com/mesh-lifecycle/mesh-go/pkg/log"
	"github.com/mesh-lifecycle/mesh-go/pkg/persistence"
	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
	"github.com/mesh-lifecycle/mesh-go/pkg/service"
)

type flags struct {
	configFile  string
	logLevel    string
	traceFile   string
	stateFile   string
	reset       bool
	simulate    bool
	interactive bool
}

func main() {
	var f flags
	flag.StringVar(&f.configFile, "config", "", "YAML configuration file")
	flag.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&f.traceFile, "trace", "", "Write a protocol trace to this file")
	flag.StringVar(&f.stateFile, "state", "", "Persist the mesh network to this JSON file")
	flag.BoolVar(&f.reset, "reset", false, "Clear the persisted network before starting")
	flag.BoolVar(&f.simulate, "simulate", true, "Use the simulated mesh")
	flag.BoolVar(&f.interactive, "interactive", true, "Enable the interactive shell")
	flag.Parse()

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, f.reset); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func loadConfig(f flags) (*Config, error) {
	cfg := DefaultConfig()
	if f.configFile != "" {
		loaded, err := LoadConfig(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "trace":
			cfg.TraceFile = f.traceFile
		case "state":
			cfg.StateFile = f.stateFile
		case "simulate":
			cfg.Simulate = f.simulate
		case "interactive":
			cfg.Interactive = f.interactive
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(cfg *Config, reset bool) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	var tracers []meshlog.Logger
	if cfg.TraceFile != "" {
		fl, err := meshlog.NewFileLogger(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("opening trace file: %w", err)
		}
		defer fl.Close()
		tracers = append(tracers, fl)
		logger.Info("Protocol trace enabled", "file", cfg.TraceFile)
	}
	if cfg.LogLevel == "debug" {
		tracers = append(tracers, meshlog.NewSlogAdapter(logger))
	}
	var trace meshlog.Logger
	switch len(tracers) {
	case 0:
	case 1:
		trace = tracers[0]
	default:
		trace = meshlog.NewMultiLogger(tracers...)
	}

	network, store, err := openNetwork(cfg.StateFile, reset, logger)
	if err != nil {
		return err
	}

	var (
		stack   service.Stack
		radio   scanner.Radio
		bearers bearer.Factory
	)
	if cfg.Simulate {
		s, err := newSimulation(cfg.Simulation, network, store, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		stack, radio, bearers = s, s.Radio(), s.Bearers()
		logger.Info("Running against the simulated mesh", "devices", len(cfg.Simulation.Devices))
	} else {
		tr := scanner.NewTinyGoRadio(bluetooth.DefaultAdapter, logger)
		if err := tr.Start(); err != nil {
			return fmt.Errorf("starting radio: %w", err)
		}
		defer tr.Close()
		central := bearer.NewCentral(tr.Adapter(), logger, trace)
		stack, radio, bearers = newRadioOnlyStack(network, store), tr, central.Factory()
		logger.Warn("No mesh protocol stack attached: scanning and connections only")
	}

	svcConfig := cfg.ServiceConfig()
	svcConfig.Logger = logger
	svcConfig.Trace = trace
	svc, err := service.New(stack, radio, bearers, svcConfig)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting service: %w", err)
	}

	out := os.Stdout
	var shell *interactive.Shell
	if cfg.Interactive {
		shell, err = interactive.New(svc)
		if err != nil {
			return err
		}
		// Keep logs and events from corrupting the prompt.
		logger = slog.New(slog.NewTextHandler(shell.Stderr(), &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
		slog.SetDefault(logger)
		go shell.Run(ctx, cancel)
	}

	evs, unsubscribe := svc.Events(64)
	defer unsubscribe()
	go printEvents(evs, func(line string) {
		if shell != nil {
			fmt.Fprintln(shell.Stdout(), line)
			return
		}
		fmt.Fprintln(out, line)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received signal", "signal", sig)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	if err := svc.Stop(); err != nil {
		logger.Warn("Error stopping service", "error", err)
	}
	if err := stack.Save(); err != nil {
		logger.Warn("Failed to save network", "error", err)
	}
	return nil
}

// openNetwork loads the persisted network, or creates a new one.
func openNetwork(path string, reset bool, logger *slog.Logger) (*persistence.Network, *persistence.NetworkStore, error) {
	if path == "" {
		return persistence.NewNetwork("Mesh Network"), nil, nil
	}
	store := persistence.NewNetworkStore(path)
	if reset {
		logger.Info("Resetting persisted network", "file", path)
		if err := store.Clear(); err != nil {
			return nil, nil, fmt.Errorf("clearing state: %w", err)
		}
	}
	state, err := store.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading state: %w", err)
	}
	if state == nil {
		logger.Info("Creating new mesh network", "file", path)
		return persistence.NewNetwork("Mesh Network"), store, nil
	}
	logger.Info("Loaded mesh network", "file", path, "nodes", len(state.Nodes))
	return persistence.FromState(state), store, nil
}

// newSimulation builds the simulated stack and its devices.
func newSimulation(cfg SimulationConfig, network *persistence.Network, store *persistence.NetworkStore, logger *slog.Logger) (*sim.Stack, error) {
	s := sim.NewStack(sim.Config{Network: network, Store: store, Logger: logger})
	for _, dc := range cfg.Devices {
		d, err := dc.Device()
		if err != nil {
			s.Close()
			return nil, err
		}
		if _, known := network.NodeForDevice(d.UUID); dc.Address == 0 || known {
			s.AddDevice(d)
			continue
		}
		if err := s.AddProvisionedDevice(d, mesh.Address(dc.Address)); err != nil {
			logger.Warn("Simulated device not added", "device", dc.Identifier, "error", err)
		}
	}
	return s, nil
}

func printEvents(evs <-chan events.Event, println func(string)) {
	for ev := range evs {
		println(formatEvent(ev))
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
