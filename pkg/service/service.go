package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-lifecycle/mesh-go/pkg/bearer"
	"github.com/mesh-lifecycle/mesh-go/pkg/configuration"
	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	meshlog "github.com/mesh-lifecycle/mesh-go/pkg/log"
	"github.com/mesh-lifecycle/mesh-go/pkg/loop"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/provisioning"
	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// EventSource is the Source of events emitted by the service itself.
const EventSource = "service"

// Service orchestrates scanning, provisioning and configuration.
type Service struct {
	mu    sync.RWMutex
	state ServiceState

	config Config
	stack  Stack
	logger *slog.Logger
	trace  meshlog.Logger

	loop    *loop.Loop
	emitter *events.Emitter
	scanner *scanner.Scanner
	prov    *provisioning.Controller
	conf    *configuration.Controller

	// tid is the transaction identifier of the next model set message.
	// Only touched on the loop.
	tid uint8
}

// New creates a service over the stack, radio and bearer factory.
func New(stack Stack, radio scanner.Radio, bearers bearer.Factory, config Config) (*Service, error) {
	if stack == nil || radio == nil || bearers == nil {
		return nil, fmt.Errorf("%w: stack, radio and bearer factory are required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Service{
		state:   StateIdle,
		config:  config,
		stack:   stack,
		logger:  config.Logger,
		trace:   meshlog.OrNoop(config.Trace),
		loop:    loop.New(),
		emitter: events.NewEmitter(),
	}
	s.scanner = scanner.New(radio, scanner.Config{
		Services: config.ScanServices,
		Logger:   config.Logger,
		Trace:    config.Trace,
	})
	s.prov = provisioning.NewController(provisioning.Config{
		Devices:        s.scanner,
		Registry:       stack,
		Bearers:        bearers,
		Events:         s.emitter,
		Post:           s.loop.Post,
		AttentionTimer: config.AttentionTimer,
		Logger:         config.Logger,
		Trace:          config.Trace,
	})
	s.conf = configuration.NewController(configuration.Config{
		Registry: stack,
		Events:   s.emitter,
		Settings: config.Configuration,
		Clock:    config.Clock,
		Post:     s.loop.Post,
		Logger:   config.Logger,
		Trace:    config.Trace,
	})
	return s, nil
}

// State returns the current service state.
func (s *Service) State() ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start starts the loop and begins receiving messages from the stack.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateRunning
	s.mu.Unlock()

	s.loop.Start(ctx)
	s.stack.SetMessageHandler(s.receive)
	s.traceState(StateIdle, StateRunning)
	s.logger.Info("[SVC] started", "local", s.stack.Network().LocalAddress(), "nodes", len(s.stack.Network().Nodes()))
	return nil
}

// Stop tears down the provisioning session, stops scanning and the loop,
// and closes the event stream.
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.state = StateStopped
	s.mu.Unlock()

	s.stack.SetMessageHandler(nil)
	s.scanner.StopScan()
	_ = s.loop.Call(context.Background(), s.prov.Cancel)
	s.loop.Stop()
	s.conf.Close()
	s.traceState(StateRunning, StateStopped)
	s.emitter.Close()
	s.logger.Info("[SVC] stopped")
	return nil
}

// Events returns a channel of every event emitted after the call and a
// function that ends the subscription.
func (s *Service) Events(buffer int) (<-chan events.Event, func()) {
	return s.emitter.Subscribe(buffer)
}

// StartScanning starts device discovery. It is idempotent.
func (s *Service) StartScanning() {
	s.scanner.StartScan()
}

// StopScanning stops device discovery. Discovered devices are kept.
func (s *Service) StopScanning() {
	s.scanner.StopScan()
}

// Devices returns the discovered devices.
func (s *Service) Devices() []scanner.DiscoveredDevice {
	return s.scanner.Devices()
}

// Discoveries streams discovered devices. See scanner.Scanner.Subscribe.
func (s *Service) Discoveries(buffer int) (<-chan scanner.DiscoveredDevice, func()) {
	return s.scanner.Subscribe(buffer)
}

// Provision starts provisioning a discovered device. The response only
// acknowledges the start.
func (s *Service) Provision(identifier string) events.Response {
	return s.do(func() events.Response { return s.prov.Begin(identifier) })
}

// CancelProvisioning tears down the active provisioning session.
func (s *Service) CancelProvisioning() {
	_ = s.loop.Call(context.Background(), s.prov.Cancel)
}

// ProvisioningSession returns a snapshot of the active provisioning session.
func (s *Service) ProvisioningSession() (provisioning.SessionInfo, bool) {
	return s.prov.Session()
}

// ConfigureNode starts configuring a provisioned node.
func (s *Service) ConfigureNode(addr mesh.Address) events.Response {
	return s.do(func() events.Response { return s.conf.ConfigureNode(addr) })
}

// SetSubscription subscribes the node's server model to the group.
func (s *Service) SetSubscription(addr mesh.Address) events.Response {
	return s.do(func() events.Response { return s.conf.SetSubscription(addr) })
}

// SetPublication makes the node's server model publish to the group.
func (s *Service) SetPublication(addr mesh.Address) events.Response {
	return s.do(func() events.Response { return s.conf.SetPublication(addr) })
}

// ResetNode removes the node from the network.
func (s *Service) ResetNode(addr mesh.Address) events.Response {
	return s.do(func() events.Response { return s.conf.ResetNode(addr) })
}

// ConfigurationSessions returns the configuration sessions in progress.
func (s *Service) ConfigurationSessions() []configuration.Session {
	return s.conf.Sessions()
}

// CompositionRetry returns the composition data retry state.
func (s *Service) CompositionRetry() configuration.RetryState {
	return s.conf.Retry()
}

// Nodes lists the provisioned nodes.
func (s *Service) Nodes() []NodeInfo {
	nodes := s.stack.Network().Nodes()
	out := make([]NodeInfo, 0, len(nodes))
	for _, n := range nodes {
		name := n.Name
		if name == "" {
			name = UnknownNodeName
		}
		out = append(out, NodeInfo{
			Name:                  name,
			UUID:                  n.UUID,
			PrimaryUnicastAddress: n.UnicastAddress,
			Configured:            n.Configured,
		})
	}
	return out
}

// do runs op on the loop and returns its response.
func (s *Service) do(op func() events.Response) events.Response {
	var resp events.Response
	if err := s.loop.Call(context.Background(), func() { resp = op() }); err != nil {
		return events.Fail(ErrNotStarted)
	}
	return resp
}

// receive is the stack's message handler. It may run on any goroutine.
func (s *Service) receive(msg wire.Message, src mesh.Address) {
	s.loop.Post(func() { s.dispatch(msg, src) })
}

func (s *Service) dispatch(msg wire.Message, src mesh.Address) {
	switch m := msg.(type) {
	case wire.GenericOnOffStatus:
		s.emit(events.StatusSuccess, fmt.Sprintf("OnOff state is %s", onOff(m.On)), src)
	case wire.GenericColorStatus:
		s.emit(events.StatusSuccess, fmt.Sprintf("Color state is %d", m.Color), src)
	case wire.SwitchColorStatus:
		s.emit(events.StatusSuccess, fmt.Sprintf("Color state is %d", m.ColorNum), src)
	default:
		s.conf.Handle(msg, src)
	}
}

func (s *Service) emit(status events.Status, msg string, addr mesh.Address) {
	s.emitter.Emit(events.New(EventSource, status, msg).With(events.FieldAddress, uint16(addr)))
}

func (s *Service) traceState(from, to ServiceState) {
	s.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		Layer:     meshlog.LayerService,
		Category:  meshlog.CategoryState,
		StateChange: &meshlog.StateChangeEvent{
			Entity:   meshlog.StateEntityService,
			OldState: from.String(),
			NewState: to.String(),
		},
	})
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
