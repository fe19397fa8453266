package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-lifecycle/mesh-go/pkg/bearer"
	"github.com/mesh-lifecycle/mesh-go/pkg/loop"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/persistence"
	"github.com/mesh-lifecycle/mesh-go/pkg/provisioning"
	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// Stack errors.
var (
	ErrUnknownDevice      = errors.New("unknown device")
	ErrAlreadyProvisioned = errors.New("device already provisioned")
	ErrNoRoute            = errors.New("no node at destination")
	ErrUnsupportedLocal   = errors.New("message not supported by the local node")
	ErrNotSimulated       = errors.New("bearer does not belong to the simulation")
)

// Config configures a Stack.
type Config struct {
	// Network is the configuration database. Defaults to a new network.
	Network *persistence.Network

	// Store persists the network on Save and after configuration changes.
	// Nil keeps it in memory.
	Store *persistence.NetworkStore

	// Radio receives device advertisements. Defaults to a powered-on radio.
	Radio *Radio

	Logger *slog.Logger
}

// Stack is the simulated mesh stack. It implements the provisioning and
// configuration registries and the generic message path.
type Stack struct {
	network *persistence.Network
	store   *persistence.NetworkStore
	radio   *Radio
	logger  *slog.Logger
	exec    *loop.Loop

	mu      sync.Mutex
	nodes   map[string]*node
	bearers map[string]*Bearer
	handler func(msg wire.Message, src mesh.Address)
}

// NewStack creates and starts a stack.
func NewStack(cfg Config) *Stack {
	if cfg.Network == nil {
		cfg.Network = persistence.NewNetwork("Mesh Network")
	}
	if cfg.Radio == nil {
		cfg.Radio = NewRadio(scanner.RadioPoweredOn)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Stack{
		network: cfg.Network,
		store:   cfg.Store,
		radio:   cfg.Radio,
		logger:  cfg.Logger,
		exec:    loop.New(),
		nodes:   make(map[string]*node),
		bearers: make(map[string]*Bearer),
	}
	s.exec.Start(context.Background())
	return s
}

// Close stops delivering callbacks and replies.
func (s *Stack) Close() {
	s.exec.Stop()
}

// Radio returns the simulated radio.
func (s *Stack) Radio() *Radio { return s.radio }

// AddDevice powers on a simulated peripheral. It starts advertising as an
// unprovisioned device, or rejoins the network when the database already
// holds a node with its UUID.
func (s *Stack) AddDevice(d Device) {
	n := newNode(d)
	if node, ok := s.network.NodeForDevice(d.UUID); ok {
		n.restore(node, s.network.ApplicationKeys())
	}
	s.mu.Lock()
	s.nodes[d.Identifier] = n
	adv := n.advertisement()
	s.mu.Unlock()
	s.radio.Advertise(adv)
	s.logger.Debug("[SIM] device added", "device", d.Identifier, "uuid", d.UUID)
}

// Bearers returns a factory of bearers to the simulated devices.
func (s *Stack) Bearers() bearer.Factory {
	return func(d scanner.DiscoveredDevice) (bearer.Bearer, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		n, ok := s.nodes[d.Identifier]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, d.Identifier)
		}
		b := &Bearer{stack: s, device: n.device}
		s.bearers[d.Identifier] = b
		return b, nil
	}
}

// Bearer returns the live bearer to a device.
func (s *Stack) Bearer(identifier string) (*Bearer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bearers[identifier]
	return b, ok
}

func (s *Stack) bearerClosed(b *Bearer) {
	s.mu.Lock()
	if s.bearers[b.device.Identifier] == b {
		delete(s.bearers, b.device.Identifier)
	}
	s.mu.Unlock()
}

// Network implements provisioning.Registry and configuration.Registry.
func (s *Stack) Network() mesh.Network { return s.network }

// Database returns the concrete configuration database.
func (s *Stack) Database() *persistence.Network { return s.network }

// Provision implements provisioning.Registry.
func (s *Stack) Provision(dev mesh.UnprovisionedDevice, b bearer.Bearer) (provisioning.ProtocolSession, error) {
	sb, ok := b.(*Bearer)
	if !ok {
		return nil, ErrNotSimulated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.device.UUID != dev.UUID {
			continue
		}
		if n.provisioned() {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyProvisioned, dev.UUID)
		}
		return &protocolSession{stack: s, node: n, bearer: sb}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, dev.UUID)
}

// Save implements provisioning.Registry.
func (s *Stack) Save() error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(s.network.State())
}

// SetMessageHandler sets the receiver of messages from nodes.
func (s *Stack) SetMessageHandler(fn func(msg wire.Message, src mesh.Address)) {
	s.mu.Lock()
	s.handler = fn
	s.mu.Unlock()
}

// Send implements configuration.Registry. Configuration messages are
// secured with the device key, so no application key is involved.
func (s *Stack) Send(msg wire.Message, dst mesh.Address) error {
	if dst == s.network.LocalAddress() {
		return s.sendLocal(msg)
	}
	return s.dispatch(msg, dst, nil)
}

// SendAccess sends a model message secured with an application key.
func (s *Stack) SendAccess(msg wire.Message, dst mesh.Address, appKey mesh.KeyIndex) error {
	known := false
	for _, k := range s.network.ApplicationKeys() {
		if k.Index == appKey {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: application key %d", persistence.ErrUnknownKey, appKey)
	}
	return s.dispatch(msg, dst, &appKey)
}

// commission completes provisioning: the node gets an address block and
// joins the database.
func (s *Stack) commission(n *node, key mesh.NetworkKey) (mesh.Node, error) {
	count := n.device.elementCount()
	addr, err := s.network.NextUnicastAddress(count)
	if err != nil {
		return mesh.Node{}, err
	}
	elements := make([]mesh.Element, count)
	for i := range elements {
		elements[i].Index = uint8(i)
	}
	node := mesh.Node{
		UUID:           n.device.UUID,
		Name:           n.device.Name,
		UnicastAddress: addr,
		DeviceKey:      mesh.RandomKey(),
		NetKeys:        []mesh.KeyIndex{key.Index},
		Elements:       elements,
	}
	if err := s.network.AddNode(node); err != nil {
		return mesh.Node{}, err
	}

	s.mu.Lock()
	n.address = addr
	adv := n.advertisement()
	s.mu.Unlock()
	s.radio.Advertise(adv)
	s.logger.Info("[SIM] device provisioned", "device", n.device.Identifier, "address", addr)
	return node, nil
}

// AddProvisionedDevice adds a device that already belongs to the network
// at addr, as if provisioned in an earlier run. Its composition is not yet
// known to the database.
func (s *Stack) AddProvisionedDevice(d Device, addr mesh.Address) error {
	n := newNode(d)
	elements := make([]mesh.Element, d.elementCount())
	for i := range elements {
		elements[i].Index = uint8(i)
	}
	err := s.network.AddNode(mesh.Node{
		UUID:           d.UUID,
		Name:           d.Name,
		UnicastAddress: addr,
		DeviceKey:      mesh.RandomKey(),
		NetKeys:        []mesh.KeyIndex{s.network.NetworkKeys()[0].Index},
		Elements:       elements,
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	n.address = addr
	s.nodes[d.Identifier] = n
	adv := n.advertisement()
	s.mu.Unlock()
	s.radio.Advertise(adv)
	return nil
}

// dispatch routes an encoded message to every node owning dst.
func (s *Stack) dispatch(msg wire.Message, dst mesh.Address, appKey *mesh.KeyIndex) error {
	pdu := wire.EncodePDU(msg)
	targets := s.route(dst)
	if len(targets) == 0 {
		if dst.IsUnicast() {
			return fmt.Errorf("%w: %s", ErrNoRoute, dst)
		}
		s.logger.Debug("[SIM] no subscribers", "destination", dst, "opcode", msg.Opcode())
		return nil
	}
	for _, n := range targets {
		s.after(n.device.Latency, func() { s.deliver(n, pdu, dst, appKey) })
	}
	return nil
}

func (s *Stack) route(dst mesh.Address) []*node {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*node
	for _, n := range s.nodes {
		if !n.provisioned() {
			continue
		}
		switch {
		case dst == mesh.AllNodes:
			out = append(out, n)
		case dst.IsUnicast():
			if dst >= n.address && int(dst-n.address) < n.device.elementCount() {
				out = append(out, n)
			}
		case n.subscribedTo(dst):
			out = append(out, n)
		}
	}
	return out
}

// deliver runs on the executor: the node handles the PDU and its reply is
// received by the stack.
func (s *Stack) deliver(n *node, pdu []byte, dst mesh.Address, appKey *mesh.KeyIndex) {
	s.mu.Lock()
	if !n.provisioned() {
		s.mu.Unlock()
		return
	}
	if appKey != nil {
		if _, ok := n.appKeys[*appKey]; !ok {
			s.mu.Unlock()
			s.logger.Debug("[SIM] node cannot decrypt", "node", n, "appKey", *appKey)
			return
		}
	}
	msg, err := n.decode(pdu)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("[SIM] node dropped malformed pdu", "node", n, "error", err)
		return
	}
	reply, ok := n.receive(msg, dst)
	src := n.address
	_, reset := msg.(wire.NodeReset)
	var adv scanner.Advertisement
	if reset {
		n.reset()
		adv = n.advertisement()
	}
	s.mu.Unlock()

	if reset {
		s.radio.Advertise(adv)
	}
	if !ok {
		return
	}
	s.receive(n, wire.EncodePDU(reply), src)
}

// receive decodes a reply from a node, records what the reply confirms in
// the database and hands the message to the handler.
func (s *Stack) receive(n *node, pdu []byte, src mesh.Address) {
	msg, err := decodeFrom(n.device, pdu)
	if err != nil {
		s.logger.Warn("[SIM] malformed reply", "source", src, "error", err)
		return
	}
	if err := s.record(msg, src); err != nil {
		s.logger.Warn("[SIM] database update failed", "source", src, "opcode", msg.Opcode(), "error", err)
	}

	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()
	if handler != nil {
		handler(msg, src)
	}
}

func decodeFrom(d Device, pdu []byte) (wire.Message, error) {
	op, params, err := wire.ParseOpcode(pdu)
	if err != nil {
		return nil, err
	}
	if op == wire.OpGenericColorStatus && d.colorOnly() {
		return wire.DecodeGenericColorStatus(params)
	}
	return wire.DecodePDU(pdu)
}

// record applies the bookkeeping a mesh stack does when a status arrives.
func (s *Stack) record(msg wire.Message, src mesh.Address) error {
	var err error
	changed := true
	switch m := msg.(type) {
	case wire.AppKeyStatus:
		if changed = m.Status.IsSuccess(); changed {
			err = s.network.AddNodeAppKey(src, m.AppKeyIndex)
		}
	case wire.CompositionDataStatus:
		err = s.network.ApplyComposition(src, m.Composition)
	case wire.ModelAppStatus:
		if changed = m.Status.IsSuccess(); changed {
			err = s.network.BindModel(m.ElementAddress, m.ModelID, m.AppKeyIndex)
			if err == nil {
				err = s.network.SetConfigured(src, true)
			}
		}
	case wire.ModelSubscriptionStatus:
		if changed = m.Status.IsSuccess(); changed {
			err = s.network.AddSubscription(m.ElementAddress, m.ModelID, m.Address)
		}
	case wire.ModelPublicationStatus:
		if changed = m.Status.IsSuccess(); changed {
			err = s.network.SetPublication(m.ElementAddress, m.ModelID, m.Publish)
		}
	case wire.NodeResetStatus:
		_, changed = s.network.RemoveNode(src)
	default:
		changed = false
	}
	if err != nil || !changed {
		return err
	}
	return s.Save()
}

// sendLocal handles configuration of the provisioner's own models.
func (s *Stack) sendLocal(msg wire.Message) error {
	m, ok := msg.(wire.ModelAppBind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedLocal, msg.Opcode())
	}
	status := wire.StatusSuccess
	if err := s.network.BindModel(m.ElementAddress, m.ModelID, m.AppKeyIndex); err != nil {
		switch {
		case errors.Is(err, persistence.ErrUnknownKey):
			status = wire.StatusInvalidAppKeyIndex
		case errors.Is(err, persistence.ErrModelNotFound):
			status = wire.StatusInvalidModel
		default:
			status = wire.StatusInvalidAddress
		}
	}
	local := s.network.LocalAddress()
	reply := wire.ModelAppStatus{Status: status, ElementAddress: m.ElementAddress, AppKeyIndex: m.AppKeyIndex, ModelID: m.ModelID}
	s.after(0, func() {
		s.mu.Lock()
		handler := s.handler
		s.mu.Unlock()
		if handler != nil {
			handler(reply, local)
		}
	})
	return nil
}

// after runs fn on the executor once d has passed.
func (s *Stack) after(d time.Duration, fn func()) {
	if d <= 0 {
		s.exec.Post(fn)
		return
	}
	time.AfterFunc(d, func() { s.exec.Post(fn) })
}

// OnOff returns a provisioned device's Generic OnOff state.
func (s *Stack) OnOff(addr mesh.Address) (bool, bool) {
	n, ok := s.nodeAt(addr)
	if !ok {
		return false, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return n.on, true
}

// Color returns a provisioned device's current color.
func (s *Stack) Color(addr mesh.Address) (uint16, bool) {
	n, ok := s.nodeAt(addr)
	if !ok {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return n.color, true
}

// CompositionRequests returns how many composition data requests a device
// has received since it was provisioned.
func (s *Stack) CompositionRequests(identifier string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[identifier]; ok {
		return n.compositionGets
	}
	return 0
}

func (s *Stack) nodeAt(addr mesh.Address) (*node, bool) {
	targets := s.route(addr)
	if len(targets) == 0 {
		return nil, false
	}
	return targets[0], true
}
