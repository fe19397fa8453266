package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

func lampNode(addr mesh.Address, elements int) mesh.Node {
	node := mesh.Node{UUID: uuid.New(), Name: "lamp", UnicastAddress: addr, NetKeys: []mesh.KeyIndex{0}}
	for i := range elements {
		node.Elements = append(node.Elements, mesh.Element{
			Index:  uint8(i),
			Models: []mesh.Model{{ID: mesh.ConfigurationServer}, {ID: mesh.GenericOnOffServer}},
		})
	}
	return node
}

func TestNewNetworkDefaults(t *testing.T) {
	n := NewNetwork("home")

	assert.Equal(t, mesh.Address(0x0001), n.LocalAddress())
	require.Len(t, n.NetworkKeys(), 1)
	assert.Equal(t, mesh.KeyIndex(0), n.NetworkKeys()[0].Index)
	assert.Empty(t, n.ApplicationKeys())
	assert.Empty(t, n.Nodes())

	addr, ok := mesh.LocalModel(n, mesh.GenericOnOffClient)
	assert.True(t, ok)
	assert.Equal(t, mesh.Address(0x0001), addr)
}

func TestNextUnicastAddress(t *testing.T) {
	n := NewNetwork("home")

	addr, err := n.NextUnicastAddress(1)
	require.NoError(t, err)
	assert.Equal(t, mesh.Address(0x0002), addr, "provisioner occupies 0x0001")

	require.NoError(t, n.AddNode(lampNode(0x0002, 3)))
	addr, err = n.NextUnicastAddress(2)
	require.NoError(t, err)
	assert.Equal(t, mesh.Address(0x0005), addr)

	// A gap too small for the request is skipped.
	require.NoError(t, n.AddNode(lampNode(0x0007, 1)))
	addr, err = n.NextUnicastAddress(3)
	require.NoError(t, err)
	assert.Equal(t, mesh.Address(0x0008), addr)

	addr, err = n.NextUnicastAddress(2)
	require.NoError(t, err)
	assert.Equal(t, mesh.Address(0x0005), addr)
}

func TestNextUnicastAddressExhausted(t *testing.T) {
	n := NewNetwork("home")
	_, err := n.NextUnicastAddress(int(DefaultUnicastRange.High))
	assert.ErrorIs(t, err, ErrAddressExhausted)
}

func TestAddNodeRejectsOverlap(t *testing.T) {
	n := NewNetwork("home")
	require.NoError(t, n.AddNode(lampNode(0x0010, 2)))

	assert.ErrorIs(t, n.AddNode(lampNode(0x0011, 1)), ErrAddressInUse)
	assert.ErrorIs(t, n.AddNode(lampNode(0x0001, 1)), ErrAddressInUse)
	assert.Error(t, n.AddNode(lampNode(0xC000, 1)))
}

func TestNodeLookupByElementAddress(t *testing.T) {
	n := NewNetwork("home")
	lamp := lampNode(0x0010, 2)
	require.NoError(t, n.AddNode(lamp))

	got, ok := n.Node(0x0011)
	require.True(t, ok)
	assert.Equal(t, lamp.UUID, got.UUID)

	got, ok = n.NodeForDevice(lamp.UUID)
	require.True(t, ok)
	assert.Equal(t, mesh.Address(0x0010), got.UnicastAddress)

	_, ok = n.Node(0x0012)
	assert.False(t, ok)
}

func TestReturnedNodesAreCopies(t *testing.T) {
	n := NewNetwork("home")
	require.NoError(t, n.AddNode(lampNode(0x0010, 1)))

	got, _ := n.Node(0x0010)
	got.Elements[0].Models[1].Bind = append(got.Elements[0].Models[1].Bind, 7)
	got.Name = "changed"

	again, _ := n.Node(0x0010)
	assert.Equal(t, "lamp", again.Name)
	assert.Empty(t, again.Elements[0].Models[1].Bind)
}

func TestKeysAndGroups(t *testing.T) {
	n := NewNetwork("home")

	app, err := n.AddApplicationKey("app", mesh.RandomKey(), 0)
	require.NoError(t, err)
	assert.Equal(t, mesh.KeyIndex(0), app.Index)

	app2, err := n.AddApplicationKey("app2", mesh.RandomKey(), 0)
	require.NoError(t, err)
	assert.Equal(t, mesh.KeyIndex(1), app2.Index)

	_, err = n.AddApplicationKey("bad", mesh.RandomKey(), 5)
	assert.ErrorIs(t, err, ErrUnknownKey)

	net, err := n.AddNetworkKey("second", mesh.RandomKey())
	require.NoError(t, err)
	assert.Equal(t, mesh.KeyIndex(1), net.Index)

	g, err := n.AddGroup("Mesh Group", mesh.WellKnownGroup)
	require.NoError(t, err)
	assert.Equal(t, mesh.WellKnownGroup, g.Address)

	_, err = n.AddGroup("dup", mesh.WellKnownGroup)
	assert.ErrorIs(t, err, ErrAddressInUse)
	_, err = n.AddGroup("unicast", 0x0005)
	assert.ErrorIs(t, err, ErrInvalidGroup)

	next, err := n.NextGroupAddress()
	require.NoError(t, err)
	assert.Equal(t, mesh.Address(0xC001), next)

	found, ok := n.Group(mesh.WellKnownGroup)
	assert.True(t, ok)
	assert.Equal(t, "Mesh Group", found.Name)
}

func TestConfigurationBookkeeping(t *testing.T) {
	n := NewNetwork("home")
	app, err := n.AddApplicationKey("app", mesh.RandomKey(), 0)
	require.NoError(t, err)
	require.NoError(t, n.AddNode(mesh.Node{UUID: uuid.New(), UnicastAddress: 0x0010, NetKeys: []mesh.KeyIndex{0}}))

	cd := wire.CompositionData{
		CompanyID: 0x0059,
		CRPL:      10,
		Elements: []mesh.Element{
			{Models: []mesh.Model{{ID: mesh.ConfigurationServer}}},
			{Models: []mesh.Model{{ID: mesh.GenericOnOffServer}}},
		},
	}
	require.NoError(t, n.ApplyComposition(0x0010, cd))
	require.NoError(t, n.AddNodeAppKey(0x0010, app.Index))
	require.NoError(t, n.BindModel(0x0011, mesh.GenericOnOffServer, app.Index))
	require.NoError(t, n.AddSubscription(0x0011, mesh.GenericOnOffServer, mesh.WellKnownGroup))
	require.NoError(t, n.SetPublication(0x0011, mesh.GenericOnOffServer, mesh.Publish{Address: mesh.WellKnownGroup, TTL: 5}))
	require.NoError(t, n.SetConfigured(0x0010, true))

	node, ok := n.Node(0x0010)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0059), node.CompanyID)
	assert.True(t, node.KnowsApplicationKey(app.Index))
	assert.True(t, node.Configured)

	elem, m, ok := node.FindModel(mesh.GenericOnOffServer)
	require.True(t, ok)
	assert.Equal(t, mesh.Address(0x0011), elem)
	assert.True(t, m.IsBoundTo(app.Index))
	assert.True(t, m.IsSubscribedTo(mesh.WellKnownGroup))
	require.NotNil(t, m.Publish)
	assert.Equal(t, uint8(5), m.Publish.TTL)

	// Binding twice does not duplicate.
	require.NoError(t, n.BindModel(0x0011, mesh.GenericOnOffServer, app.Index))
	node, _ = n.Node(0x0010)
	_, m, _ = node.FindModel(mesh.GenericOnOffServer)
	assert.Len(t, m.Bind, 1)

	assert.ErrorIs(t, n.BindModel(0x0010, mesh.GenericOnOffServer, app.Index), ErrModelNotFound)
	assert.ErrorIs(t, n.BindModel(0x0050, mesh.GenericOnOffServer, app.Index), ErrNodeNotFound)
	assert.ErrorIs(t, n.BindModel(0x0011, mesh.GenericOnOffServer, 9), ErrUnknownKey)
}

func TestBindLocalModel(t *testing.T) {
	n := NewNetwork("home")
	app, err := n.AddApplicationKey("app", mesh.RandomKey(), 0)
	require.NoError(t, err)

	require.NoError(t, n.BindModel(n.LocalAddress(), mesh.GenericOnOffClient, app.Index))

	m, ok := n.LocalElements()[0].Model(mesh.GenericOnOffClient)
	require.True(t, ok)
	assert.True(t, m.IsBoundTo(app.Index))
}

func TestRemoveNode(t *testing.T) {
	n := NewNetwork("home")
	require.NoError(t, n.AddNode(lampNode(0x0010, 2)))

	removed, ok := n.RemoveNode(0x0011)
	require.True(t, ok)
	assert.Equal(t, mesh.Address(0x0010), removed.UnicastAddress)
	assert.Empty(t, n.Nodes())

	_, ok = n.RemoveNode(0x0010)
	assert.False(t, ok)

	addr, err := n.NextUnicastAddress(2)
	require.NoError(t, err)
	assert.Equal(t, mesh.Address(0x0002), addr)
}

func TestStateRoundTrip(t *testing.T) {
	n := NewNetwork("home")
	_, err := n.AddApplicationKey("app", mesh.RandomKey(), 0)
	require.NoError(t, err)
	require.NoError(t, n.AddNode(lampNode(0x0010, 1)))

	restored := FromState(n.State())
	assert.Equal(t, n.Name(), restored.Name())
	assert.Equal(t, n.Nodes(), restored.Nodes())
	assert.Equal(t, n.ApplicationKeys(), restored.ApplicationKeys())
	assert.Equal(t, n.LocalElements(), restored.LocalElements())
}
