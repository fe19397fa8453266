package configuration

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	meshlog "github.com/mesh-lifecycle/mesh-go/pkg/log"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// Configuration errors.
var (
	ErrNodeNotFound           = errors.New("node not found")
	ErrNoSupportedServerModel = errors.New("valid server model not found")
	ErrNoMatchingClientModel  = errors.New("client model not found on the provisioner")
	ErrNoApplicationKey       = errors.New("no application key bound to a network key the node knows")
	ErrNoGroup                = errors.New("group not available")
	ErrModelNotBound          = errors.New("model is not bound to an application key")
	ErrModelNotSubscribed     = errors.New("model is not subscribed to a group")
)

// EventSource is the Source of events emitted by the controller.
const EventSource = "configuration"

// Registry is the mesh network the controller configures nodes through.
type Registry interface {
	Network() mesh.Network

	// Send sends an access message to dst. Errors are synchronous; the
	// status reply arrives later through Controller.Handle.
	Send(msg wire.Message, dst mesh.Address) error
}

// Config configures a Controller.
type Config struct {
	Registry Registry
	Events   events.Sink
	Settings Settings
	Clock    Clock

	// Post runs fn on the owner's executor. Nil runs retry ticks inline
	// on the timer goroutine.
	Post func(fn func())

	Logger *slog.Logger
	Trace  meshlog.Logger
}

// Controller drives node configuration. Operations and Handle are expected
// to run on one executor; snapshot accessors may be called from anywhere.
type Controller struct {
	registry Registry
	events   events.Sink
	settings Settings
	clock    Clock
	post     func(func())
	logger   *slog.Logger
	trace    meshlog.Logger

	mu       sync.Mutex
	sessions map[mesh.Address]Session
	retry    RetryState
	timer    Timer
}

// NewController creates a configuration controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		registry: cfg.Registry,
		events:   cfg.Events,
		settings: cfg.Settings.withDefaults(),
		clock:    cfg.Clock,
		post:     cfg.Post,
		logger:   cfg.Logger,
		trace:    meshlog.OrNoop(cfg.Trace),
		sessions: make(map[mesh.Address]Session),
	}
	if c.events == nil {
		c.events = events.Discard
	}
	if c.clock == nil {
		c.clock = SystemClock{}
	}
	if c.post == nil {
		c.post = func(fn func()) { fn() }
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Settings returns the effective flow parameters.
func (c *Controller) Settings() Settings { return c.settings }

// Session returns the session of a node.
func (c *Controller) Session(addr mesh.Address) (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[addr]
	return s, ok
}

// Sessions returns all active sessions ordered by node address.
func (c *Controller) Sessions() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionList()
}

func (c *Controller) sessionList() []Session {
	out := make([]Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Node < out[j].Node })
	return out
}

// Retry returns the composition data retry token.
func (c *Controller) Retry() RetryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retry
}

// ConfigureNode starts configuration by adding an application key to the
// node. A key the node does not know yet is preferred; if there is none a
// new one is created.
func (c *Controller) ConfigureNode(addr mesh.Address) events.Response {
	network := c.registry.Network()
	node, ok := network.Node(addr)
	if !ok {
		return events.Fail(fmt.Errorf("%w: %s", ErrNodeNotFound, addr))
	}

	key, ok := unknownAppKey(network, node)
	if !ok {
		boundTo := mesh.KeyIndex(0)
		if len(node.NetKeys) > 0 {
			boundTo = node.NetKeys[0]
		}
		var err error
		key, err = network.AddApplicationKey(c.settings.AppKeyName, mesh.RandomKey(), boundTo)
		if err != nil {
			return events.Response{Message: fmt.Sprintf("Failed to configure the node: %v", err)}
		}
		c.logger.Info("[CONF] created application key", "index", key.Index, "boundTo", boundTo)
	}

	now := c.clock.Now()
	c.setSession(Session{
		Node:        node.UnicastAddress,
		Step:        AwaitingAppKeyStatus,
		AppKeyIndex: key.Index,
		StartedAt:   now,
	})
	if err := c.send(wire.NewAppKeyAdd(key), node.UnicastAddress, 0); err != nil {
		c.finish(node.UnicastAddress)
		msg := fmt.Sprintf("Failed to configure the node: %v", err)
		c.emit(emit(events.StatusError, msg, node.UnicastAddress))
		return events.Response{Message: msg}
	}
	c.logger.Info("[CONF] configuring node", "address", node.UnicastAddress, "appKey", key.Index)
	return events.OK("Configuring node...")
}

// SetSubscription subscribes the node's server model to the configured
// group, creating the group if needed.
func (c *Controller) SetSubscription(addr mesh.Address) events.Response {
	network := c.registry.Network()
	node, ok := network.Node(addr)
	if !ok {
		return events.Fail(fmt.Errorf("%w: %s", ErrNodeNotFound, addr))
	}
	server, elem, ok := selectServerModel(node)
	if !ok {
		return events.Fail(ErrNoSupportedServerModel)
	}
	group, err := c.group(network)
	if err != nil {
		return events.Fail(err)
	}

	c.setSession(Session{Node: node.UnicastAddress, Step: AwaitingSubscriptionStatus, ServerModel: server, ServerElement: elem})
	msg := wire.ModelSubscriptionAdd{ElementAddress: elem, Address: group.Address, ModelID: server}
	if err := c.send(msg, node.UnicastAddress, 0); err != nil {
		c.finish(node.UnicastAddress)
		text := fmt.Sprintf("Failed to subscribe model: %v", err)
		c.emit(emit(events.StatusError, text, node.UnicastAddress))
		return events.Response{Message: text}
	}
	return events.OK(fmt.Sprintf("Subscribing %s to %s...", server, group.Address))
}

// SetPublication makes the node's server model publish to the group it is
// subscribed to, using the application key it is bound to.
func (c *Controller) SetPublication(addr mesh.Address) events.Response {
	network := c.registry.Network()
	node, ok := network.Node(addr)
	if !ok {
		return events.Fail(fmt.Errorf("%w: %s", ErrNodeNotFound, addr))
	}
	server, elem, ok := selectServerModel(node)
	if !ok {
		return events.Fail(ErrNoSupportedServerModel)
	}
	_, model, _ := node.FindModel(server)
	if len(model.Bind) == 0 {
		return events.Fail(ErrModelNotBound)
	}
	dst := mesh.UnassignedAddress
	for _, sub := range model.Subscriptions {
		if sub.IsGroup() {
			dst = sub
			break
		}
	}
	if dst == mesh.UnassignedAddress {
		return events.Fail(ErrModelNotSubscribed)
	}

	pub := c.settings.Publish
	pub.Address = dst
	pub.AppKeyIndex = model.Bind[0]

	c.setSession(Session{Node: node.UnicastAddress, Step: AwaitingPublicationStatus, AppKeyIndex: pub.AppKeyIndex, ServerModel: server, ServerElement: elem})
	msg := wire.ModelPublicationSet{ElementAddress: elem, Publish: pub, ModelID: server}
	if err := c.send(msg, node.UnicastAddress, 0); err != nil {
		c.finish(node.UnicastAddress)
		text := fmt.Sprintf("Failed to publish model: %v", err)
		c.emit(emit(events.StatusError, text, node.UnicastAddress))
		return events.Response{Message: text}
	}
	return events.OK(fmt.Sprintf("Publishing %s to %s...", server, dst))
}

// ResetNode asks the node to leave the network.
func (c *Controller) ResetNode(addr mesh.Address) events.Response {
	network := c.registry.Network()
	node, ok := network.Node(addr)
	if !ok {
		return events.Fail(fmt.Errorf("%w: %s", ErrNodeNotFound, addr))
	}
	c.setSession(Session{Node: node.UnicastAddress, Step: AwaitingResetStatus})
	if err := c.send(wire.NodeReset{}, node.UnicastAddress, 0); err != nil {
		c.finish(node.UnicastAddress)
		text := fmt.Sprintf("Failed to reset the node: %v", err)
		c.emit(emit(events.StatusError, text, node.UnicastAddress))
		return events.Response{Message: text}
	}
	return events.OK("Successfully reset the node!")
}

// Handle processes a message received from src. Messages from unknown
// sources and opcodes without a handler are ignored.
func (c *Controller) Handle(msg wire.Message, src mesh.Address) {
	network := c.registry.Network()
	c.traceMessage(meshlog.DirectionIn, msg, src, network.LocalAddress(), 0)

	if src == network.LocalAddress() {
		m, ok := msg.(wire.ModelAppStatus)
		if !ok {
			return
		}
		c.mu.Lock()
		sessions := c.sessionList()
		c.mu.Unlock()
		c.run(handleLocalModelAppStatus(sessions, m))
		return
	}

	node, ok := network.Node(src)
	if !ok {
		// A reset node leaves the network before its status is handled.
		s, has := c.Session(src)
		if msg.Opcode() != wire.OpNodeResetStatus || !has || s.Step != AwaitingResetStatus {
			c.logger.Debug("[CONF] message from unknown node", "source", src, "opcode", msg.Opcode())
			return
		}
		node = mesh.Node{UnicastAddress: src}
	}
	h, ok := handlers[msg.Opcode()]
	if !ok {
		c.logger.Debug("[CONF] unhandled message", "source", src, "opcode", msg.Opcode())
		return
	}

	env := Env{Network: network, Settings: c.settings}
	env.Session, env.HasSession = c.Session(node.UnicastAddress)
	c.run(h(env, node, msg))
}

// Close stops the retry timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimer()
	c.retry = c.retry.Cancel()
}

// run executes handler actions in order.
func (c *Controller) run(actions []Action) {
	for _, a := range actions {
		switch a := a.(type) {
		case SendAction:
			if err := c.send(a.Message, a.Destination, a.Attempt); err != nil {
				c.logger.Warn("[CONF] send failed", "destination", a.Destination, "opcode", a.Message.Opcode(), "error", err)
				c.finishNode(a.Destination)
				c.emit(emit(events.StatusError, fmt.Sprintf("Failed to send %s: %v", a.Message.Opcode(), err), a.Destination))
				return
			}
		case ArmRetryAction:
			if err := c.armRetry(a.Target); err != nil {
				c.logger.Warn("[CONF] composition data request rejected", "address", a.Target, "error", err)
				c.finish(a.Target)
				c.emit(emit(events.StatusError, err.Error(), a.Target))
				return
			}
		case CancelRetryAction:
			c.cancelRetry(a.Target)
		case AdvanceAction:
			c.setSession(a.Session)
		case FinishAction:
			c.finish(a.Node)
		case EmitAction:
			c.emit(a)
		}
	}
}

// finishNode ends the session a destination belongs to. Sends to the
// local address belong to the session waiting on the client bind.
func (c *Controller) finishNode(dst mesh.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[dst]; ok {
		delete(c.sessions, dst)
		return
	}
	for addr, s := range c.sessions {
		if s.Step == AwaitingClientBindStatus {
			delete(c.sessions, addr)
		}
	}
}

func (c *Controller) armRetry(target mesh.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.retry.Arm(target, c.clock.Now().Add(c.settings.RetryInterval))
	if err != nil {
		return err
	}
	c.retry = next
	c.schedule(next.Generation)
	c.traceRetry(next, "armed")
	return nil
}

func (c *Controller) cancelRetry(target mesh.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retry.Phase != RetryArmed || c.retry.Target != target {
		return
	}
	c.stopTimer()
	c.traceRetry(c.retry, "reply received")
	c.retry = c.retry.Cancel()
}

// schedule starts the timer for one retry period. Caller holds mu.
func (c *Controller) schedule(generation uint64) {
	c.stopTimer()
	c.timer = c.clock.AfterFunc(c.settings.RetryInterval, func() {
		c.post(func() { c.retryTick(generation) })
	})
}

// stopTimer stops the pending timer. Caller holds mu.
func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) retryTick(generation uint64) {
	c.mu.Lock()
	if !c.retry.Current(generation) {
		c.mu.Unlock()
		c.logger.Debug("[CONF] stale retry tick", "generation", generation)
		return
	}
	target := c.retry.Target
	next, exhausted := c.retry.Tick(c.settings.MaxRetries, c.clock.Now().Add(c.settings.RetryInterval))
	c.retry = next
	c.timer = nil
	if !exhausted {
		c.schedule(generation)
	}
	c.mu.Unlock()

	if exhausted {
		c.traceRetry(next, "exhausted")
		c.logger.Warn(fmt.Sprintf("[CONF] Failed to get Composition Data after %d retries", c.settings.MaxRetries), "address", target)
		c.emit(EmitAction{
			Status:  events.StatusTimeout,
			Message: fmt.Sprintf("Failed to get Composition Data after %d retries", c.settings.MaxRetries),
			Fields: map[string]any{
				events.FieldAddress: uint16(target),
				events.FieldAttempt: c.settings.MaxRetries + 1,
			},
		})
		return
	}

	c.logger.Info("[CONF] retrying composition data request", "address", target, "retry", next.Attempt)
	if err := c.send(wire.CompositionDataGet{Page: 0}, target, next.Attempt+1); err != nil {
		c.logger.Warn("[CONF] composition data resend failed", "address", target, "error", err)
	}
}

func (c *Controller) send(msg wire.Message, dst mesh.Address, attempt int) error {
	c.traceMessage(meshlog.DirectionOut, msg, c.registry.Network().LocalAddress(), dst, attempt)
	return c.registry.Send(msg, dst)
}

func (c *Controller) setSession(s Session) {
	now := c.clock.Now()
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	s.UpdatedAt = now

	c.mu.Lock()
	prev, had := c.sessions[s.Node]
	c.sessions[s.Node] = s
	c.mu.Unlock()

	from := StepIdle
	if had {
		from = prev.Step
	}
	c.traceStep(s.Node, from, s.Step)
}

func (c *Controller) finish(addr mesh.Address) {
	c.mu.Lock()
	prev, had := c.sessions[addr]
	delete(c.sessions, addr)
	c.mu.Unlock()
	if had {
		c.traceStep(addr, prev.Step, StepIdle)
	}
}

func (c *Controller) emit(a EmitAction) {
	ev := events.New(EventSource, a.Status, a.Message)
	for k, v := range a.Fields {
		ev = ev.With(k, v)
	}
	c.events.Emit(ev)
}

// group returns the configured group, adding it to the network if needed.
func (c *Controller) group(network mesh.Network) (mesh.Group, error) {
	if g, ok := network.Group(c.settings.Group); ok {
		return g, nil
	}
	g, err := network.AddGroup(c.settings.GroupName, c.settings.Group)
	if err != nil {
		return mesh.Group{}, fmt.Errorf("%w: %v", ErrNoGroup, err)
	}
	return g, nil
}

// unknownAppKey returns the first application key the node does not know
// yet whose network key it does know.
func unknownAppKey(n mesh.Network, node mesh.Node) (mesh.ApplicationKey, bool) {
	for _, k := range n.ApplicationKeys() {
		if !node.KnowsApplicationKey(k.Index) && node.KnowsNetworkKey(k.BoundNetworkKey) {
			return k, true
		}
	}
	return mesh.ApplicationKey{}, false
}

func (c *Controller) traceMessage(dir meshlog.Direction, msg wire.Message, src, dst mesh.Address, attempt int) {
	ev := &meshlog.MessageEvent{
		Opcode:      uint32(msg.Opcode()),
		Name:        msg.Opcode().String(),
		Source:      uint16(src),
		Destination: uint16(dst),
		Parameters:  msg.Parameters(),
		Attempt:     attempt,
	}
	if code, ok := statusCode(msg); ok {
		v := uint8(code)
		ev.Status = &v
	}
	addr := dst
	if dir == meshlog.DirectionIn {
		addr = src
	}
	c.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		Direction: dir,
		Layer:     meshlog.LayerAccess,
		Category:  meshlog.CategoryMessage,
		Address:   uint16(addr),
		Message:   ev,
	})
}

func (c *Controller) traceStep(addr mesh.Address, from, to Step) {
	if from == to {
		return
	}
	c.logger.Debug("[CONF] step", "address", addr, "from", from, "to", to)
	c.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		Layer:     meshlog.LayerService,
		Category:  meshlog.CategoryState,
		Address:   uint16(addr),
		StateChange: &meshlog.StateChangeEvent{
			Entity:   meshlog.StateEntityConfiguration,
			OldState: from.String(),
			NewState: to.String(),
		},
	})
}

func (c *Controller) traceRetry(r RetryState, reason string) {
	c.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		Layer:     meshlog.LayerService,
		Category:  meshlog.CategoryState,
		Address:   uint16(r.Target),
		StateChange: &meshlog.StateChangeEvent{
			Entity:   meshlog.StateEntityRetry,
			NewState: r.String(),
			Reason:   reason,
		},
	})
}

func statusCode(msg wire.Message) (wire.StatusCode, bool) {
	switch m := msg.(type) {
	case wire.AppKeyStatus:
		return m.Status, true
	case wire.ModelAppStatus:
		return m.Status, true
	case wire.ModelSubscriptionStatus:
		return m.Status, true
	case wire.ModelPublicationStatus:
		return m.Status, true
	}
	return 0, false
}
