package sim

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/provisioning"
	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// DropAll makes a device ignore every composition data request.
const DropAll = -1

// Device describes a simulated peripheral.
type Device struct {
	Identifier string
	Name       string
	UUID       uuid.UUID
	RSSI       int

	// Composition is what the device reports as composition data page 0.
	Composition wire.CompositionData

	// Algorithms defaults to both supported algorithms.
	Algorithms provisioning.Algorithms

	// RequireInputOOB makes provisioning ask for an authentication action.
	RequireInputOOB bool

	// ConnectError fails the bearer after Open.
	ConnectError error

	// ProvisioningError fails the provisioning exchange.
	ProvisioningError error

	// DropCompositionReplies is the number of composition data requests
	// ignored before the device answers. DropAll ignores all of them.
	DropCompositionReplies int

	// Latency delays every reply.
	Latency time.Duration
}

// NewDevice returns a device hosting the given server models on its
// primary element, next to the configuration server.
func NewDevice(identifier, name string, models ...mesh.ModelID) Device {
	el := mesh.Element{Models: []mesh.Model{{ID: mesh.ConfigurationServer}}}
	for _, id := range models {
		el.Models = append(el.Models, mesh.Model{ID: id})
	}
	return Device{
		Identifier:  identifier,
		Name:        name,
		UUID:        uuid.New(),
		RSSI:        -60,
		Composition: wire.CompositionData{CompanyID: 0x0059, CRPL: 0x0028, Features: wire.FeatureProxy, Elements: []mesh.Element{el}},
	}
}

func (d Device) elementCount() int {
	if len(d.Composition.Elements) == 0 {
		return 1
	}
	return len(d.Composition.Elements)
}

func (d Device) hosts(id mesh.ModelID) bool {
	for _, el := range d.Composition.Elements {
		if _, ok := el.Model(id); ok {
			return true
		}
	}
	return false
}

// colorOnly reports whether the shared 0x82xx opcodes mean Generic Color
// on this device.
func (d Device) colorOnly() bool {
	return d.hosts(mesh.GenericColorServer) && !d.hosts(mesh.GenericOnOffServer)
}

// node is the device-side runtime state of a simulated peripheral.
type node struct {
	device  Device
	address mesh.Address // unassigned until provisioned

	appKeys       map[mesh.KeyIndex]mesh.Key
	bindings      map[modelKey][]mesh.KeyIndex
	subscriptions map[modelKey][]mesh.Address
	publications  map[modelKey]mesh.Publish

	compositionGets int

	on    bool
	color uint16
}

type modelKey struct {
	element mesh.Address
	model   mesh.ModelID
}

func newNode(d Device) *node {
	n := &node{device: d}
	n.reset()
	return n
}

func (n *node) reset() {
	n.address = mesh.UnassignedAddress
	n.appKeys = make(map[mesh.KeyIndex]mesh.Key)
	n.bindings = make(map[modelKey][]mesh.KeyIndex)
	n.subscriptions = make(map[modelKey][]mesh.Address)
	n.publications = make(map[modelKey]mesh.Publish)
	n.compositionGets = 0
}

// restore rebuilds the node state a device keeps across power cycles from
// its database entry.
func (n *node) restore(node mesh.Node, keys []mesh.ApplicationKey) {
	n.address = node.UnicastAddress
	for _, idx := range node.AppKeys {
		for _, k := range keys {
			if k.Index == idx {
				n.appKeys[idx] = k.Key
			}
		}
	}
	for i, e := range node.Elements {
		addr := node.UnicastAddress + mesh.Address(i)
		for _, m := range e.Models {
			k := modelKey{addr, m.ID}
			if len(m.Bind) > 0 {
				n.bindings[k] = slices.Clone(m.Bind)
			}
			if len(m.Subscriptions) > 0 {
				n.subscriptions[k] = slices.Clone(m.Subscriptions)
			}
			if m.Publish != nil {
				n.publications[k] = *m.Publish
			}
		}
	}
}

func (n *node) provisioned() bool { return n.address != mesh.UnassignedAddress }

// advertisement is provisioning service data before provisioning and proxy
// network ID service data after.
func (n *node) advertisement() scanner.Advertisement {
	adv := scanner.Advertisement{Identifier: n.device.Identifier, Name: n.device.Name, RSSI: n.device.RSSI}
	if !n.provisioned() {
		unprov := mesh.UnprovisionedDevice{UUID: n.device.UUID, Name: n.device.Name}
		adv.Services = []uint16{mesh.ProvisioningServiceUUID}
		adv.ServiceData = map[uint16][]byte{mesh.ProvisioningServiceUUID: unprov.ServiceData()}
		return adv
	}
	networkID := append([]byte{byte(mesh.ProxyNetworkID)}, n.device.UUID[:8]...)
	adv.Services = []uint16{mesh.ProxyServiceUUID}
	adv.ServiceData = map[uint16][]byte{mesh.ProxyServiceUUID: networkID}
	return adv
}

func (n *node) capabilities() provisioning.Capabilities {
	caps := provisioning.Capabilities{
		NumberOfElements: uint8(n.device.elementCount()),
		Algorithms:       n.device.Algorithms,
	}
	if caps.Algorithms == 0 {
		caps.Algorithms = provisioning.SupportsP256CMACAES128 | provisioning.SupportsP256HMACSHA256
	}
	if n.device.RequireInputOOB {
		caps.InputOOBSize = 4
		caps.InputOOBActions = 1
	}
	return caps
}

// decode decodes a PDU addressed to this device.
func (n *node) decode(pdu []byte) (wire.Message, error) {
	op, params, err := wire.ParseOpcode(pdu)
	if err != nil {
		return nil, err
	}
	if n.device.colorOnly() {
		switch op {
		case wire.OpGenericColorSet:
			return wire.DecodeGenericColorSet(params)
		case wire.OpGenericColorSetUnack:
			return wire.DecodeGenericColorSetUnacknowledged(params)
		}
	}
	return wire.DecodePDU(pdu)
}

// receive handles a request and returns the reply, if any.
func (n *node) receive(msg wire.Message, dst mesh.Address) (wire.Message, bool) {
	switch m := msg.(type) {
	case wire.AppKeyAdd:
		n.appKeys[m.AppKeyIndex] = m.Key
		return wire.AppKeyStatus{Status: wire.StatusSuccess, NetKeyIndex: m.NetKeyIndex, AppKeyIndex: m.AppKeyIndex}, true

	case wire.CompositionDataGet:
		n.compositionGets++
		drop := n.device.DropCompositionReplies
		if drop == DropAll || n.compositionGets <= drop {
			return nil, false
		}
		return wire.CompositionDataStatus{Page: 0, Composition: n.device.Composition}, true

	case wire.ModelAppBind:
		status := n.checkModel(m.ElementAddress, m.ModelID)
		if status == wire.StatusSuccess {
			if _, ok := n.appKeys[m.AppKeyIndex]; !ok {
				status = wire.StatusInvalidAppKeyIndex
			}
		}
		if status == wire.StatusSuccess {
			k := modelKey{m.ElementAddress, m.ModelID}
			if !slices.Contains(n.bindings[k], m.AppKeyIndex) {
				n.bindings[k] = append(n.bindings[k], m.AppKeyIndex)
			}
		}
		return wire.ModelAppStatus{Status: status, ElementAddress: m.ElementAddress, AppKeyIndex: m.AppKeyIndex, ModelID: m.ModelID}, true

	case wire.ModelSubscriptionAdd:
		status := n.checkModel(m.ElementAddress, m.ModelID)
		if status == wire.StatusSuccess && !m.Address.IsGroup() {
			status = wire.StatusInvalidAddress
		}
		if status == wire.StatusSuccess {
			k := modelKey{m.ElementAddress, m.ModelID}
			if !slices.Contains(n.subscriptions[k], m.Address) {
				n.subscriptions[k] = append(n.subscriptions[k], m.Address)
			}
		}
		return wire.ModelSubscriptionStatus{Status: status, ElementAddress: m.ElementAddress, Address: m.Address, ModelID: m.ModelID}, true

	case wire.ModelPublicationSet:
		status := n.checkModel(m.ElementAddress, m.ModelID)
		if status == wire.StatusSuccess {
			if _, ok := n.appKeys[m.Publish.AppKeyIndex]; !ok {
				status = wire.StatusInvalidAppKeyIndex
			}
		}
		if status == wire.StatusSuccess {
			n.publications[modelKey{m.ElementAddress, m.ModelID}] = m.Publish
		}
		return wire.ModelPublicationStatus{Status: status, ElementAddress: m.ElementAddress, Publish: m.Publish, ModelID: m.ModelID}, true

	case wire.NodeReset:
		return wire.NodeResetStatus{}, true

	case wire.GenericOnOffSet:
		n.on = m.On
		return wire.GenericOnOffStatus{On: n.on}, !dst.IsGroup()
	case wire.GenericOnOffSetUnacknowledged:
		n.on = m.On
		return nil, false

	case wire.GenericColorSet:
		n.color = m.Color
		return wire.GenericColorStatus{Color: uint8(n.color)}, !dst.IsGroup()
	case wire.GenericColorSetUnacknowledged:
		n.color = m.Color
		return nil, false

	case wire.SwitchColorSet:
		n.color = m.ColorNum
		return wire.SwitchColorStatus{ColorNum: uint8(n.color)}, !dst.IsGroup()
	}
	return nil, false
}

func (n *node) checkModel(elem mesh.Address, id mesh.ModelID) wire.StatusCode {
	i := int(elem) - int(n.address)
	if i < 0 || i >= len(n.device.Composition.Elements) {
		return wire.StatusInvalidAddress
	}
	if _, ok := n.device.Composition.Elements[i].Model(id); !ok {
		return wire.StatusInvalidModel
	}
	return wire.StatusSuccess
}

// subscribedTo reports whether any model on the node listens to group.
func (n *node) subscribedTo(group mesh.Address) bool {
	for _, subs := range n.subscriptions {
		if slices.Contains(subs, group) {
			return true
		}
	}
	return false
}

func (n *node) String() string {
	return fmt.Sprintf("%s(%s)", n.device.Identifier, n.address)
}
