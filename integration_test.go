package mesh_test

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-lifecycle/mesh-go/internal/sim"
	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	meshlog "github.com/mesh-lifecycle/mesh-go/pkg/log"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/persistence"
	"github.com/mesh-lifecycle/mesh-go/pkg/service"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// memoryTrace keeps trace events in memory.
type memoryTrace struct {
	mu     sync.Mutex
	events []meshlog.Event
}

func (m *memoryTrace) Log(ev meshlog.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// outgoing returns the access messages sent with the given opcode.
func (m *memoryTrace) outgoing(op wire.Opcode) []meshlog.MessageEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []meshlog.MessageEvent
	for _, ev := range m.events {
		if ev.Direction == meshlog.DirectionOut && ev.Layer == meshlog.LayerAccess &&
			ev.Message != nil && ev.Message.Opcode == uint32(op) {
			out = append(out, *ev.Message)
		}
	}
	return out
}

func (m *memoryTrace) sentTo(dst mesh.Address) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Direction == meshlog.DirectionOut && ev.Message != nil && ev.Message.Destination == uint16(dst) {
			n++
		}
	}
	return n
}

type controller struct {
	stack  *sim.Stack
	svc    *service.Service
	trace  *memoryTrace
	events <-chan events.Event
}

func startController(t *testing.T, network *persistence.Network, store *persistence.NetworkStore, tracers ...meshlog.Logger) *controller {
	t.Helper()
	stack := sim.NewStack(sim.Config{Network: network, Store: store})
	t.Cleanup(stack.Close)

	trace := &memoryTrace{}
	cfg := service.DefaultConfig()
	cfg.Configuration.RetryInterval = 30 * time.Millisecond
	cfg.Trace = meshlog.NewMultiLogger(append([]meshlog.Logger{trace}, tracers...)...)

	svc, err := service.New(stack, stack.Radio(), stack.Bearers(), cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Stop() })

	ch, cancel := svc.Events(128)
	t.Cleanup(cancel)
	return &controller{stack: stack, svc: svc, trace: trace, events: ch}
}

func (c *controller) waitFor(t *testing.T, status events.Status, prefix string) events.Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-c.events:
			require.True(t, ok, "event stream closed")
			if ev.Status == status && strings.HasPrefix(ev.Message, prefix) {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s event %q", status, prefix)
			return events.Event{}
		}
	}
}

// provision scans for and provisions the device, returning its address.
func (c *controller) provision(t *testing.T, identifier string) mesh.Address {
	t.Helper()
	c.svc.StartScanning()
	require.Eventually(t, func() bool {
		for _, d := range c.svc.Devices() {
			if d.Identifier == identifier && !d.IsProvisioned {
				return true
			}
		}
		return false
	}, 3*time.Second, 5*time.Millisecond)

	resp := c.svc.Provision(identifier)
	require.True(t, resp.IsSuccess, resp.Message)
	done := c.waitFor(t, events.StatusComplete, "Provisioning complete!")
	raw, ok := done.Field(events.FieldUnicastAddress)
	require.True(t, ok)
	return mesh.Address(raw.(uint16))
}

// TestE2E_Lifecycle takes a device from advertisement to a configured node
// that publishes to and is subscribed to the group, with the network and
// the trace persisted to disk.
func TestE2E_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	store := persistence.NewNetworkStore(filepath.Join(dir, "network.json"))
	tracePath := filepath.Join(dir, "mesh.mlog")
	fileTrace, err := meshlog.NewFileLogger(tracePath)
	require.NoError(t, err)

	c := startController(t, persistence.NewNetwork("integration"), store, fileTrace)
	c.stack.AddDevice(sim.NewDevice("AA-11", "lamp", mesh.GenericOnOffServer))

	addr := c.provision(t, "AA-11")
	assert.Equal(t, mesh.Address(0x0002), addr)

	require.True(t, c.svc.ConfigureNode(addr).IsSuccess)
	c.waitFor(t, events.StatusComplete, "Node configured.")
	require.True(t, c.svc.SetSubscription(addr).IsSuccess)
	c.waitFor(t, events.StatusSuccess, "Successfully subscribe model")
	require.True(t, c.svc.SetPublication(addr).IsSuccess)
	c.waitFor(t, events.StatusSuccess, "Successfully publish model")

	// One composition request, answered first time.
	gets := c.trace.outgoing(wire.OpCompositionDataGet)
	require.Len(t, gets, 1)
	assert.Equal(t, 1, gets[0].Attempt)

	require.NoError(t, c.svc.Stop())
	require.NoError(t, fileTrace.Close())

	state, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	network := persistence.FromState(state)
	node, ok := network.Node(addr)
	require.True(t, ok)
	assert.True(t, node.Configured)
	assert.Equal(t, "lamp", node.Name)
	_, model, ok := node.FindModel(mesh.GenericOnOffServer)
	require.True(t, ok)
	assert.NotEmpty(t, model.Bind)
	assert.Contains(t, model.Subscriptions, mesh.WellKnownGroup)
	require.NotNil(t, model.Publish)
	assert.Equal(t, mesh.WellKnownGroup, model.Publish.Address)

	reader, err := meshlog.NewReader(tracePath)
	require.NoError(t, err)
	defer reader.Close()
	var provisioningStates, accessOut int
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if ev.StateChange != nil && ev.StateChange.Entity == meshlog.StateEntityProvisioning {
			provisioningStates++
		}
		if ev.Layer == meshlog.LayerAccess && ev.Direction == meshlog.DirectionOut {
			accessOut++
		}
	}
	assert.NotZero(t, provisioningStates)
	assert.NotZero(t, accessOut)
}

// TestE2E_NoServerModel configures a node that hosts no usable server
// model. Configuration ends after composition data with an error and
// nothing more is sent to the node.
func TestE2E_NoServerModel(t *testing.T) {
	c := startController(t, nil, nil)
	require.NoError(t, c.stack.AddProvisionedDevice(sim.NewDevice("BB-01", "relay"), 0x0010))

	require.True(t, c.svc.ConfigureNode(0x0010).IsSuccess)
	ev := c.waitFor(t, events.StatusError, "Valid server model not found")
	raw, _ := ev.Field(events.FieldAddress)
	assert.Equal(t, uint16(0x0010), raw)

	sent := c.trace.sentTo(0x0010)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, sent, c.trace.sentTo(0x0010))
	assert.Empty(t, c.trace.outgoing(wire.OpModelAppBind))
	assert.Equal(t, 1, c.stack.CompositionRequests("BB-01"))
	assert.Empty(t, c.svc.ConfigurationSessions())
}

// TestE2E_CompositionRetry drops the first two composition requests; the
// third attempt is answered and configuration completes.
func TestE2E_CompositionRetry(t *testing.T) {
	c := startController(t, nil, nil)
	d := sim.NewDevice("CC-01", "slow lamp", mesh.GenericOnOffServer)
	d.DropCompositionReplies = 2
	c.stack.AddDevice(d)

	addr := c.provision(t, "CC-01")
	require.True(t, c.svc.ConfigureNode(addr).IsSuccess)
	c.waitFor(t, events.StatusComplete, "Node configured.")

	gets := c.trace.outgoing(wire.OpCompositionDataGet)
	require.Len(t, gets, 3)
	for i, g := range gets {
		assert.Equal(t, i+1, g.Attempt)
	}
	assert.Equal(t, 3, c.stack.CompositionRequests("CC-01"))
}

// TestE2E_Rejoin restarts the controller over the persisted network. The
// node is known and controllable without provisioning it again.
func TestE2E_Rejoin(t *testing.T) {
	store := persistence.NewNetworkStore(filepath.Join(t.TempDir(), "network.json"))
	device := sim.NewDevice("DD-01", "plug", mesh.GenericOnOffServer)

	first := startController(t, persistence.NewNetwork("rejoin"), store)
	first.stack.AddDevice(device)
	addr := first.provision(t, "DD-01")
	require.True(t, first.svc.ConfigureNode(addr).IsSuccess)
	first.waitFor(t, events.StatusComplete, "Node configured.")
	require.NoError(t, first.svc.Stop())
	first.stack.Close()

	state, err := store.Load()
	require.NoError(t, err)
	second := startController(t, persistence.FromState(state), store)
	second.stack.AddDevice(device)

	nodes := second.svc.Nodes()
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].Configured)

	resp := second.svc.GenericOnOffSet(addr, true)
	require.True(t, resp.IsSuccess, resp.Message)
	second.waitFor(t, events.StatusSuccess, "OnOff state is on")
	on, _ := second.stack.OnOff(addr)
	assert.True(t, on)
}
