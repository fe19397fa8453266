package provisioning

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-lifecycle/mesh-go/pkg/bearer"
	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	meshlog "github.com/mesh-lifecycle/mesh-go/pkg/log"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
)

// Provisioning errors.
var (
	ErrDeviceNotFound             = errors.New("device not found in scan results")
	ErrInvalidDeviceAdvertisement = errors.New("the device is not a valid unprovisioned device")
	ErrAuthenticationNotSupported = errors.New("authentication required but not supported")
	ErrCapabilitiesNotAvailable   = errors.New("capabilities not available")
)

// EventSource is the Source of events emitted by the controller.
const EventSource = "provisioning"

// DefaultAttentionTimer is the identify duration in seconds.
const DefaultAttentionTimer uint8 = 5

// DeviceLookup finds discovered devices. scanner.Scanner implements it.
type DeviceLookup interface {
	Lookup(identifier string) (scanner.DiscoveredDevice, bool)
}

// Config configures a Controller.
type Config struct {
	Devices  DeviceLookup
	Registry Registry
	Bearers  bearer.Factory
	Events   events.Sink

	// Post runs fn on the owner's executor. Nil runs callbacks inline.
	Post func(fn func())

	// AttentionTimer overrides DefaultAttentionTimer when non-zero.
	AttentionTimer uint8

	Logger *slog.Logger
	Trace  meshlog.Logger
}

// SessionInfo is a snapshot of the active session.
type SessionInfo struct {
	ID           string
	Device       scanner.DiscoveredDevice
	DeviceUUID   uuid.UUID
	State        State
	Capabilities *Capabilities
	NetworkKey   *mesh.NetworkKey
	StartedAt    time.Time
}

// session is one provisioning attempt. Fields other than torn are guarded
// by Controller.mu.
type session struct {
	id        string
	device    scanner.DiscoveredDevice
	unprov    mesh.UnprovisionedDevice
	bearer    bearer.Bearer
	protocol  ProtocolSession
	state     State
	caps      *Capabilities
	netKey    *mesh.NetworkKey
	startedAt time.Time

	torn        atomic.Bool
	closeBearer sync.Once
}

// Controller owns at most one provisioning session.
type Controller struct {
	devices   DeviceLookup
	registry  Registry
	bearers   bearer.Factory
	events    events.Sink
	post      func(func())
	attention uint8
	logger    *slog.Logger
	trace     meshlog.Logger

	mu      sync.Mutex
	current *session
	last    State
}

// NewController creates a provisioning controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		devices:   cfg.Devices,
		registry:  cfg.Registry,
		bearers:   cfg.Bearers,
		events:    cfg.Events,
		post:      cfg.Post,
		attention: cfg.AttentionTimer,
		logger:    cfg.Logger,
		trace:     meshlog.OrNoop(cfg.Trace),
	}
	if c.events == nil {
		c.events = events.Discard
	}
	if c.post == nil {
		c.post = func(fn func()) { fn() }
	}
	if c.attention == 0 {
		c.attention = DefaultAttentionTimer
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// State returns the state of the active session, or the final state of the
// last one.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return c.current.state
	}
	return c.last
}

// Session returns a snapshot of the active session.
func (c *Controller) Session() (SessionInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.current
	if s == nil {
		return SessionInfo{}, false
	}
	info := SessionInfo{
		ID:         s.id,
		Device:     s.device,
		DeviceUUID: s.unprov.UUID,
		State:      s.state,
		StartedAt:  s.startedAt,
	}
	if s.caps != nil {
		caps := *s.caps
		info.Capabilities = &caps
	}
	if s.netKey != nil {
		k := *s.netKey
		info.NetworkKey = &k
	}
	return info, true
}

// Begin starts provisioning the discovered device. Any active session is
// torn down first. The result only acknowledges the start; progress and the
// outcome arrive as events.
func (c *Controller) Begin(identifier string) events.Response {
	if prev := c.detach(); prev != nil {
		c.logger.Info("[PROV] cancelling previous session", "session", prev.id, "device", prev.device.Identifier)
		c.teardown(prev, StateIdle, true)
	}

	device, ok := c.devices.Lookup(identifier)
	if !ok {
		c.logger.Warn("[PROV] device not found", "device", identifier)
		return events.Fail(fmt.Errorf("%w: %s", ErrDeviceNotFound, identifier))
	}

	unprov, err := mesh.ParseUnprovisionedDevice(device.Name, device.AdvertisementPayload)
	if err != nil || device.IsProvisioned {
		c.logger.Warn("[PROV] invalid advertisement", "device", identifier, "error", err)
		return events.Fail(ErrInvalidDeviceAdvertisement)
	}

	b, err := c.bearers(device)
	if err != nil {
		return events.Fail(fmt.Errorf("failed to create bearer: %w", err))
	}

	s := &session{
		id:        uuid.NewString(),
		device:    device,
		unprov:    unprov,
		bearer:    b,
		state:     StateConnecting,
		startedAt: time.Now(),
	}
	b.SetDelegate(&bearerCallbacks{c: c, s: s})
	if dd, ok := c.registry.(bearer.DataDelegate); ok {
		b.SetDataDelegate(dd)
	}

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
	c.traceState(s, StateIdle, StateConnecting, "")

	if err := b.Open(); err != nil {
		c.detachIf(s)
		c.teardown(s, StateFailed, false)
		return events.Fail(fmt.Errorf("failed to open bearer: %w", err))
	}

	c.logger.Info("[PROV] connecting", "session", s.id, "device", identifier, "uuid", unprov.UUID)
	c.emit(s, events.StatusConnecting, fmt.Sprintf("Connecting to %s...", unprov.Name))
	return events.OK("Provisioning process initiated.")
}

// Cancel tears down the active session, closing its bearer.
func (c *Controller) Cancel() {
	if s := c.detach(); s != nil {
		c.logger.Info("[PROV] session cancelled", "session", s.id)
		c.teardown(s, StateIdle, true)
	}
}

// bearerConnected handles the bearer's connected signal.
func (c *Controller) bearerConnected(s *session) {
	if !c.transition(s, StateDiscovering) {
		return
	}
	c.emit(s, events.StatusConnecting, "Discovering services...")
}

func (c *Controller) bearerDiscoveredServices(s *session) {
	if !c.isCurrent(s) {
		return
	}
	c.emit(s, events.StatusConnecting, "Initializing...")
}

func (c *Controller) bearerOpened(s *session) {
	if !c.transition(s, StateIdentifying) {
		return
	}
	c.emit(s, events.StatusIdentifying, "Identifying device...")

	protocol, err := c.registry.Provision(s.unprov, s.bearer)
	if err == nil {
		c.mu.Lock()
		s.protocol = protocol
		c.mu.Unlock()
		protocol.SetDelegate(&protocolCallbacks{c: c, s: s})
		err = protocol.Identify(c.attention)
	}
	if err != nil {
		c.fail(s, fmt.Sprintf("Provisioning setup failed: %v", err), err)
	}
}

// bearerClosed decides the outcome from the last protocol state.
func (c *Controller) bearerClosed(s *session, cause error) {
	if !c.detachIf(s) {
		return
	}

	c.mu.Lock()
	protocol := s.protocol
	c.mu.Unlock()

	if protocol == nil || protocol.State().Kind != ProtocolComplete {
		msg := "Device disconnected."
		if cause != nil {
			msg = fmt.Sprintf("Disconnected: %v", cause)
		}
		c.logger.Warn("[PROV] disconnected before completion", "session", s.id, "error", cause)
		c.emit(s, events.StatusError, msg)
		c.teardown(s, StateFailed, false)
		return
	}

	if err := c.registry.Save(); err != nil {
		c.logger.Error("[PROV] saving mesh network failed", "session", s.id, "error", err)
		c.emit(s, events.StatusError, "Failed to save mesh network configuration.")
		c.teardown(s, StateFailed, false)
		return
	}

	node, ok := c.registry.Network().NodeForDevice(s.unprov.UUID)
	if !ok {
		c.logger.Error("[PROV] provisioned node not found", "session", s.id, "uuid", s.unprov.UUID)
		c.emit(s, events.StatusError, "Provisioned node not found.")
		c.teardown(s, StateFailed, false)
		return
	}

	c.logger.Info("[PROV] provisioning complete", "session", s.id, "uuid", node.UUID, "address", node.UnicastAddress)
	c.events.Emit(events.New(EventSource, events.StatusComplete, "Provisioning complete!").
		With(events.FieldDeviceID, s.device.Identifier).
		With(events.FieldNodeUUID, node.UUID.String()).
		With(events.FieldUnicastAddress, uint16(node.UnicastAddress)))
	c.teardown(s, StateComplete, false)
}

func (c *Controller) protocolStateChanged(s *session, state ProtocolState) {
	if !c.isCurrent(s) {
		return
	}
	c.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Layer:     meshlog.LayerProvisioning,
		Category:  meshlog.CategoryState,
		DeviceID:  s.device.Identifier,
		NodeUUID:  s.unprov.UUID.String(),
		StateChange: &meshlog.StateChangeEvent{
			Entity:   meshlog.StateEntityProvisioning,
			NewState: state.String(),
		},
	})

	switch state.Kind {
	case ProtocolRequestingCapabilities:
		c.emit(s, events.StatusIdentifying, "Requesting capabilities...")

	case ProtocolCapabilitiesReceived:
		caps := state.Capabilities
		c.mu.Lock()
		s.caps = &caps
		c.mu.Unlock()
		if !c.transition(s, StateAwaitingCapabilities) {
			return
		}
		c.events.Emit(events.New(EventSource, events.StatusIdentifying, "Capabilities received!").
			With(events.FieldDeviceID, s.device.Identifier).
			With("numberOfElements", caps.NumberOfElements).
			With("algorithms", caps.Algorithms.String()).
			With("publicKeyType", caps.PublicKeyType.String()).
			With("oobType", caps.OOBType.String()))
		c.startProvisioning(s)

	case ProtocolComplete:
		if !c.transition(s, StateProvisioning) {
			return
		}
		c.emit(s, events.StatusProvisioning, "Finalizing...")

	case ProtocolFailed:
		c.fail(s, fmt.Sprintf("Provisioning failed: %v", state.Err), state.Err)
	}
}

// startProvisioning picks the network key and starts the no-OOB exchange.
func (c *Controller) startProvisioning(s *session) {
	c.mu.Lock()
	protocol := s.protocol
	c.mu.Unlock()
	if protocol == nil {
		c.fail(s, "Cannot start provisioning: capabilities not available.", ErrCapabilitiesNotAvailable)
		return
	}
	caps, ok := protocol.Capabilities()
	if !ok {
		c.fail(s, "Cannot start provisioning: capabilities not available.", ErrCapabilitiesNotAvailable)
		return
	}

	c.emit(s, events.StatusProvisioning, "Provisioning...")

	key, ok := protocol.NetworkKey()
	if !ok {
		network := c.registry.Network()
		if keys := network.NetworkKeys(); len(keys) > 0 {
			key = keys[0]
		} else {
			created, err := network.AddNetworkKey("Primary Network Key", mesh.RandomKey())
			if err != nil {
				c.fail(s, fmt.Sprintf("Failed to create network key: %v", err), err)
				return
			}
			key = created
		}
		protocol.SetNetworkKey(key)
	}
	c.mu.Lock()
	s.netKey = &key
	c.mu.Unlock()

	alg := caps.Algorithms.Strongest()
	c.logger.Debug("[PROV] starting key exchange", "session", s.id, "algorithm", alg, "netKey", key.Index)
	if err := protocol.Provision(alg, NoOOBPublicKey, NoOOB); err != nil {
		c.fail(s, fmt.Sprintf("Failed to start provisioning: %v", err), err)
	}
}

func (c *Controller) authenticationActionRequired(s *session, action AuthAction) {
	if !c.isCurrent(s) {
		return
	}
	c.logger.Warn("[PROV] authentication action not supported", "session", s.id, "action", action)
	c.fail(s, "Authentication required but not supported.", ErrAuthenticationNotSupported)
}

func (c *Controller) inputComplete(s *session) {
	if !c.isCurrent(s) {
		return
	}
	c.emit(s, events.StatusProvisioning, "Input complete. Provisioning...")
}

// fail reports an error and aborts the session, closing its bearer.
func (c *Controller) fail(s *session, msg string, err error) {
	if !c.detachIf(s) {
		return
	}
	c.logger.Warn("[PROV] session failed", "session", s.id, "error", err)
	c.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Layer:     meshlog.LayerProvisioning,
		Category:  meshlog.CategoryError,
		DeviceID:  s.device.Identifier,
		Error:     &meshlog.ErrorEventData{Message: msg},
	})
	c.emit(s, events.StatusError, msg)
	c.teardown(s, StateFailed, true)
}

// transition moves the current session to a new state.
func (c *Controller) transition(s *session, to State) bool {
	c.mu.Lock()
	if c.current != s || s.torn.Load() {
		c.mu.Unlock()
		return false
	}
	from := s.state
	s.state = to
	c.mu.Unlock()
	c.traceState(s, from, to, "")
	return true
}

func (c *Controller) isCurrent(s *session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current == s && !s.torn.Load()
}

// detach clears and returns the current session.
func (c *Controller) detach() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.current
	c.current = nil
	return s
}

// detachIf clears the current session if it is s.
func (c *Controller) detachIf(s *session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != s || s.torn.Load() {
		return false
	}
	c.current = nil
	return true
}

// teardown ends a detached session exactly once.
func (c *Controller) teardown(s *session, final State, closeBearer bool) {
	if !s.torn.CompareAndSwap(false, true) {
		return
	}
	c.mu.Lock()
	from := s.state
	s.state = final
	c.last = final
	c.mu.Unlock()
	c.traceState(s, from, final, "teardown")

	if closeBearer {
		s.closeBearer.Do(func() {
			if err := s.bearer.Close(); err != nil {
				c.logger.Debug("[PROV] bearer close failed", "session", s.id, "error", err)
			}
		})
	}
}

func (c *Controller) emit(s *session, status events.Status, msg string) {
	c.events.Emit(events.New(EventSource, status, msg).With(events.FieldDeviceID, s.device.Identifier))
}

func (c *Controller) traceState(s *session, from, to State, reason string) {
	if from == to {
		return
	}
	c.logger.Debug("[PROV] state", "session", s.id, "from", from, "to", to)
	c.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Layer:     meshlog.LayerService,
		Category:  meshlog.CategoryState,
		DeviceID:  s.device.Identifier,
		NodeUUID:  s.unprov.UUID.String(),
		StateChange: &meshlog.StateChangeEvent{
			Entity:   meshlog.StateEntityProvisioning,
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})
}

// bearerCallbacks binds bearer callbacks to one session.
type bearerCallbacks struct {
	c *Controller
	s *session
}

func (b *bearerCallbacks) BearerDidConnect(bearer.Bearer) {
	b.c.post(func() { b.c.bearerConnected(b.s) })
}

func (b *bearerCallbacks) BearerDidDiscoverServices(bearer.Bearer) {
	b.c.post(func() { b.c.bearerDiscoveredServices(b.s) })
}

func (b *bearerCallbacks) BearerDidOpen(bearer.Bearer) {
	b.c.post(func() { b.c.bearerOpened(b.s) })
}

func (b *bearerCallbacks) BearerDidClose(_ bearer.Bearer, err error) {
	b.c.post(func() { b.c.bearerClosed(b.s, err) })
}

// protocolCallbacks binds protocol callbacks to one session.
type protocolCallbacks struct {
	c *Controller
	s *session
}

func (p *protocolCallbacks) ProtocolStateChanged(state ProtocolState) {
	p.c.post(func() { p.c.protocolStateChanged(p.s, state) })
}

func (p *protocolCallbacks) AuthenticationActionRequired(action AuthAction) {
	p.c.post(func() { p.c.authenticationActionRequired(p.s, action) })
}

func (p *protocolCallbacks) InputComplete() {
	p.c.post(func() { p.c.inputComplete(p.s) })
}
