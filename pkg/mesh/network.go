package mesh

import "github.com/google/uuid"

// WellKnownGroup is the group address nodes are subscribed to and
// publish to by default.
const WellKnownGroup Address = 0xC000

// Network is the view of the mesh configuration database the controllers
// work through. Returned values are copies; changes go through the Add
// methods.
type Network interface {
	// Node returns the node owning addr, which may be any of its element
	// addresses.
	Node(addr Address) (Node, bool)

	// NodeForDevice returns the node provisioned from the given device UUID.
	NodeForDevice(id uuid.UUID) (Node, bool)

	// Nodes returns all provisioned nodes except the local provisioner.
	Nodes() []Node

	NetworkKeys() []NetworkKey
	ApplicationKeys() []ApplicationKey
	Groups() []Group
	Group(addr Address) (Group, bool)

	// AddNetworkKey adds a network key at the next free index.
	AddNetworkKey(name string, key Key) (NetworkKey, error)

	// AddApplicationKey adds an application key bound to a network key.
	AddApplicationKey(name string, key Key, boundTo KeyIndex) (ApplicationKey, error)

	// AddGroup adds a group.
	AddGroup(name string, addr Address) (Group, error)

	// LocalAddress returns the primary unicast address of the provisioner.
	LocalAddress() Address

	// LocalElements returns the elements hosted by the provisioner.
	LocalElements() []Element
}

// LocalModel finds a model among the provisioner's local elements and
// returns the address of the element hosting it.
func LocalModel(n Network, id ModelID) (Address, bool) {
	base := n.LocalAddress()
	for i, e := range n.LocalElements() {
		if _, ok := e.Model(id); ok {
			return base + Address(i), true
		}
	}
	return UnassignedAddress, false
}
