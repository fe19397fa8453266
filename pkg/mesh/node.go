package mesh

import (
	"slices"

	"github.com/google/uuid"
)

// Node is a provisioned device.
type Node struct {
	UUID           uuid.UUID  `json:"uuid"`
	Name           string     `json:"name"`
	UnicastAddress Address    `json:"unicastAddress"`
	DeviceKey      Key        `json:"deviceKey"`
	NetKeys        []KeyIndex `json:"netKeys"`
	AppKeys        []KeyIndex `json:"appKeys,omitempty"`
	Elements       []Element  `json:"elements"`

	// Composition page 0 header, zero until composition data is received.
	CompanyID  uint16 `json:"cid,omitempty"`
	ProductID  uint16 `json:"pid,omitempty"`
	VersionID  uint16 `json:"vid,omitempty"`
	CRPL       uint16 `json:"crpl,omitempty"`
	Features   uint16 `json:"features,omitempty"`
	Configured bool   `json:"configured,omitempty"`
}

// KnowsNetworkKey reports whether the node holds the network key.
func (n Node) KnowsNetworkKey(idx KeyIndex) bool {
	return slices.Contains(n.NetKeys, idx)
}

// KnowsApplicationKey reports whether the node holds the application key.
func (n Node) KnowsApplicationKey(idx KeyIndex) bool {
	return slices.Contains(n.AppKeys, idx)
}

// ElementCount returns the number of elements, at least one.
func (n Node) ElementCount() int {
	if len(n.Elements) == 0 {
		return 1
	}
	return len(n.Elements)
}

// LastAddress returns the address of the node's last element.
func (n Node) LastAddress() Address {
	return n.UnicastAddress + Address(n.ElementCount()-1)
}

// HasAddress reports whether addr belongs to one of the node's elements.
func (n Node) HasAddress(addr Address) bool {
	return addr >= n.UnicastAddress && addr <= n.LastAddress()
}

// ElementAddress returns the unicast address of the element at index i.
func (n Node) ElementAddress(i int) Address {
	return n.UnicastAddress + Address(i)
}

// FindModel returns the first model with the given identifier and the
// address of the element hosting it.
func (n Node) FindModel(id ModelID) (Address, Model, bool) {
	for i, e := range n.Elements {
		if m, ok := e.Model(id); ok {
			return n.ElementAddress(i), m, true
		}
	}
	return UnassignedAddress, Model{}, false
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	out.NetKeys = slices.Clone(n.NetKeys)
	out.AppKeys = slices.Clone(n.AppKeys)
	out.Elements = make([]Element, len(n.Elements))
	for i, e := range n.Elements {
		out.Elements[i] = e.Clone()
	}
	return out
}
