// Package interactive provides the interactive command-line interface
// for the mesh controller.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mesh-lifecycle/mesh-go/pkg/configuration"
	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/provisioning"
	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
	"github.com/mesh-lifecycle/mesh-go/pkg/service"
)

// Controller is the part of the service the shell drives.
type Controller interface {
	State() service.ServiceState
	StartScanning()
	StopScanning()
	Devices() []scanner.DiscoveredDevice
	Provision(identifier string) events.Response
	CancelProvisioning()
	ProvisioningSession() (provisioning.SessionInfo, bool)
	ConfigureNode(addr mesh.Address) events.Response
	SetSubscription(addr mesh.Address) events.Response
	SetPublication(addr mesh.Address) events.Response
	ResetNode(addr mesh.Address) events.Response
	ConfigurationSessions() []configuration.Session
	CompositionRetry() configuration.RetryState
	Nodes() []service.NodeInfo
	GenericOnOffSet(addr mesh.Address, on bool) events.Response
	GenericColorSet(addr mesh.Address, color uint16) events.Response
	PublishColor(index int) events.Response
}

var _ Controller = (*service.Service)(nil)

// Shell handles interactive mode for mesh-controller.
type Shell struct {
	svc Controller
	rl  *readline.Instance
	out io.Writer
}

// New creates a new interactive shell.
func New(svc Controller) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mesh> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{svc: svc, rl: rl, out: rl.Stdout()}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for event output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if s.execute(line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// execute runs one command line. It reports whether the shell should exit.
func (s *Shell) execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "scan":
		s.cmdScan(args)
	case "stop":
		s.svc.StopScanning()
		fmt.Fprintln(s.out, "Scanning stopped")
	case "devices", "d":
		s.cmdDevices()
	case "provision", "p":
		s.cmdProvision(args)
	case "cancel":
		s.svc.CancelProvisioning()
		fmt.Fprintln(s.out, "Provisioning cancelled")
	case "configure", "c":
		s.withAddress(args, "configure <address>", s.svc.ConfigureNode)
	case "subscribe":
		s.withAddress(args, "subscribe <address>", s.svc.SetSubscription)
	case "publish":
		s.withAddress(args, "publish <address>", s.svc.SetPublication)
	case "reset":
		s.withAddress(args, "reset <address>", s.svc.ResetNode)
	case "nodes", "n":
		s.cmdNodes()
	case "onoff":
		s.cmdOnOff(args)
	case "color":
		s.cmdColor(args)
	case "publish-color":
		s.cmdPublishColor(args)
	case "status", "s":
		s.cmdStatus()
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Mesh Controller Commands:
  Scanning & Provisioning:
    scan [stop]                 - Start or stop scanning
    stop                        - Stop scanning
    devices                     - List discovered devices
    provision <device-id>       - Provision a discovered device
    cancel                      - Cancel provisioning

  Configuration:
    configure <address>         - Configure a provisioned node
    subscribe <address>         - Subscribe the node to the group
    publish <address>           - Make the node publish to the group
    reset <address>             - Reset a node
    nodes                       - List provisioned nodes

  Control:
    onoff <address> <on|off>    - Set a node's OnOff state
    color <address> <color>     - Set a node's color
    publish-color <index>       - Publish color 1-3 to the group

  General:
    status                      - Show controller status
    help                        - Show this help
    quit                        - Exit controller

  Addresses are hex (0x0002) or decimal.`)
}

func (s *Shell) cmdScan(args []string) {
	if len(args) > 0 && strings.EqualFold(args[0], "stop") {
		s.svc.StopScanning()
		fmt.Fprintln(s.out, "Scanning stopped")
		return
	}
	s.svc.StartScanning()
	fmt.Fprintln(s.out, "Scanning for mesh devices...")
}

func (s *Shell) cmdDevices() {
	devices := s.svc.Devices()
	if len(devices) == 0 {
		fmt.Fprintln(s.out, "No devices discovered")
		return
	}

	fmt.Fprintf(s.out, "\nDiscovered Devices (%d):\n", len(devices))
	fmt.Fprintln(s.out, "-------------------------------------------")
	for _, d := range devices {
		state := "unprovisioned"
		if d.IsProvisioned {
			state = "provisioned"
		}
		name := d.Name
		if name == "" {
			name = service.UnknownNodeName
		}
		fmt.Fprintf(s.out, "  ID: %s\n", d.Identifier)
		fmt.Fprintf(s.out, "      Name: %s\n", name)
		fmt.Fprintf(s.out, "      RSSI: %d dBm\n", d.RSSI)
		fmt.Fprintf(s.out, "      State: %s\n", state)
		fmt.Fprintf(s.out, "      Last seen: %s\n", d.LastSeen.Format("15:04:05"))
		fmt.Fprintln(s.out)
	}
}

func (s *Shell) cmdProvision(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: provision <device-id>")
		return
	}
	id := s.resolveDeviceID(args[0])
	if id == "" {
		fmt.Fprintf(s.out, "Device not found: %s\n", args[0])
		return
	}
	s.printResponse(s.svc.Provision(id))
}

func (s *Shell) cmdNodes() {
	nodes := s.svc.Nodes()
	if len(nodes) == 0 {
		fmt.Fprintln(s.out, "No provisioned nodes")
		return
	}

	fmt.Fprintf(s.out, "\nNodes (%d):\n", len(nodes))
	fmt.Fprintln(s.out, "-------------------------------------------")
	for _, n := range nodes {
		configured := "no"
		if n.Configured {
			configured = "yes"
		}
		fmt.Fprintf(s.out, "  %s  %-20s  configured: %s\n", n.PrimaryUnicastAddress, n.Name, configured)
		fmt.Fprintf(s.out, "          UUID: %s\n", n.UUID)
	}
	fmt.Fprintln(s.out)
}

func (s *Shell) cmdOnOff(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: onoff <address> <on|off>")
		return
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid address: %v\n", err)
		return
	}
	on, err := parseOnOff(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid state: %v\n", err)
		return
	}
	s.printResponse(s.svc.GenericOnOffSet(addr, on))
}

func (s *Shell) cmdColor(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: color <address> <color>")
		return
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid address: %v\n", err)
		return
	}
	color, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid color: %s\n", args[1])
		return
	}
	s.printResponse(s.svc.GenericColorSet(addr, uint16(color)))
}

func (s *Shell) cmdPublishColor(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: publish-color <index>")
		return
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid index: %s\n", args[0])
		return
	}
	s.printResponse(s.svc.PublishColor(index))
}

func (s *Shell) cmdStatus() {
	fmt.Fprintln(s.out, "\nController Status")
	fmt.Fprintln(s.out, "-------------------------------------------")
	fmt.Fprintf(s.out, "  Service State:     %s\n", s.svc.State())
	fmt.Fprintf(s.out, "  Discovered:        %d\n", len(s.svc.Devices()))
	fmt.Fprintf(s.out, "  Nodes:             %d\n", len(s.svc.Nodes()))
	if info, ok := s.svc.ProvisioningSession(); ok {
		fmt.Fprintf(s.out, "  Provisioning:      %s (%s)\n", info.Device.Identifier, info.State)
	} else {
		fmt.Fprintln(s.out, "  Provisioning:      idle")
	}
	for _, sess := range s.svc.ConfigurationSessions() {
		fmt.Fprintf(s.out, "  Configuring:       %s (%s)\n", sess.Node, sess.Step)
	}
	retry := s.svc.CompositionRetry()
	if retry.Phase == configuration.RetryArmed {
		fmt.Fprintf(s.out, "  Composition retry: %s attempt %d\n", retry.Target, retry.Attempt)
	}
	fmt.Fprintln(s.out)
}

func (s *Shell) withAddress(args []string, usage string, op func(mesh.Address) events.Response) {
	if len(args) < 1 {
		fmt.Fprintf(s.out, "Usage: %s\n", usage)
		return
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid address: %v\n", err)
		return
	}
	s.printResponse(op(addr))
}

func (s *Shell) printResponse(resp events.Response) {
	if resp.IsSuccess {
		fmt.Fprintln(s.out, resp.Message)
		return
	}
	fmt.Fprintf(s.out, "Error: %s\n", resp.Message)
}

// resolveDeviceID resolves a partial identifier to a discovered device.
func (s *Shell) resolveDeviceID(partial string) string {
	devices := s.svc.Devices()
	for _, d := range devices {
		if d.Identifier == partial {
			return d.Identifier
		}
	}
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Identifier), strings.ToLower(partial)) {
			return d.Identifier
		}
	}
	return ""
}

// parseAddress parses a unicast address in hex (0x0002) or decimal.
func parseAddress(s string) (mesh.Address, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%q is not a 16-bit number", s)
	}
	addr := mesh.Address(v)
	if !addr.IsUnicast() {
		return 0, fmt.Errorf("%s is not a unicast address", addr)
	}
	return addr, nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("%q is not on or off", s)
}
