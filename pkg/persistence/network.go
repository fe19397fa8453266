package persistence

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// Default allocation ranges of the provisioner.
var (
	DefaultUnicastRange = mesh.AddressRange{Low: 0x0001, High: 0x199A}
	DefaultGroupRange   = mesh.AddressRange{Low: 0xC000, High: 0xCC9A}
)

// Network errors.
var (
	ErrAddressExhausted = errors.New("no free address in range")
	ErrAddressInUse     = errors.New("address already in use")
	ErrNodeNotFound     = errors.New("node not found")
	ErrModelNotFound    = errors.New("model not found")
	ErrUnknownKey       = errors.New("unknown key index")
	ErrKeyExhausted     = errors.New("no free key index")
	ErrInvalidGroup     = errors.New("invalid group address")
)

// DefaultLocalElements are the models hosted by the provisioner: the
// configuration models plus a client for every recognized server model.
func DefaultLocalElements() []mesh.Element {
	return []mesh.Element{{
		Index: 0,
		Models: []mesh.Model{
			{ID: mesh.ConfigurationServer},
			{ID: mesh.ConfigurationClient},
			{ID: mesh.GenericOnOffClient},
			{ID: mesh.GenericColorClient},
			{ID: mesh.CustomVendorClient},
		},
	}}
}

// Network is an in-memory mesh configuration database. It is safe for
// concurrent use; all returned values are copies.
type Network struct {
	mu    sync.RWMutex
	state NetworkState
}

// NewNetwork creates a network with a fresh primary network key and a
// provisioner at the start of the default unicast range.
func NewNetwork(name string) *Network {
	return &Network{state: NetworkState{
		MeshUUID: uuid.New(),
		Name:     name,
		Provisioner: Provisioner{
			Name:         name + " provisioner",
			UUID:         uuid.New(),
			Address:      DefaultUnicastRange.Low,
			UnicastRange: DefaultUnicastRange,
			GroupRange:   DefaultGroupRange,
			Elements:     DefaultLocalElements(),
		},
		NetKeys: []mesh.NetworkKey{{Index: 0, Name: "Primary Network Key", Key: mesh.RandomKey()}},
	}}
}

// FromState restores a network from persisted state.
func FromState(s *NetworkState) *Network {
	n := &Network{state: cloneState(s)}
	if len(n.state.Provisioner.Elements) == 0 {
		n.state.Provisioner.Elements = DefaultLocalElements()
	}
	if n.state.Provisioner.UnicastRange == (mesh.AddressRange{}) {
		n.state.Provisioner.UnicastRange = DefaultUnicastRange
	}
	if n.state.Provisioner.GroupRange == (mesh.AddressRange{}) {
		n.state.Provisioner.GroupRange = DefaultGroupRange
	}
	return n
}

// State returns a snapshot suitable for NetworkStore.Save.
func (n *Network) State() *NetworkState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	s := cloneState(&n.state)
	return &s
}

// Name returns the network name.
func (n *Network) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state.Name
}

// Node implements mesh.Network.
func (n *Network) Node(addr mesh.Address) (mesh.Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i := n.nodeIndex(addr); i >= 0 {
		return n.state.Nodes[i].Clone(), true
	}
	return mesh.Node{}, false
}

// NodeForDevice implements mesh.Network.
func (n *Network) NodeForDevice(id uuid.UUID) (mesh.Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, node := range n.state.Nodes {
		if node.UUID == id {
			return node.Clone(), true
		}
	}
	return mesh.Node{}, false
}

// Nodes implements mesh.Network.
func (n *Network) Nodes() []mesh.Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]mesh.Node, len(n.state.Nodes))
	for i, node := range n.state.Nodes {
		out[i] = node.Clone()
	}
	return out
}

// NetworkKeys implements mesh.Network.
func (n *Network) NetworkKeys() []mesh.NetworkKey {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.state.NetKeys)
}

// ApplicationKeys implements mesh.Network.
func (n *Network) ApplicationKeys() []mesh.ApplicationKey {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.state.AppKeys)
}

// Groups implements mesh.Network.
func (n *Network) Groups() []mesh.Group {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.state.Groups)
}

// Group implements mesh.Network.
func (n *Network) Group(addr mesh.Address) (mesh.Group, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, g := range n.state.Groups {
		if g.Address == addr {
			return g, true
		}
	}
	return mesh.Group{}, false
}

// AddNetworkKey implements mesh.Network.
func (n *Network) AddNetworkKey(name string, key mesh.Key) (mesh.NetworkKey, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	idx, err := nextKeyIndex(n.state.NetKeys, func(k mesh.NetworkKey) mesh.KeyIndex { return k.Index })
	if err != nil {
		return mesh.NetworkKey{}, err
	}
	k := mesh.NetworkKey{Index: idx, Name: name, Key: key}
	n.state.NetKeys = append(n.state.NetKeys, k)
	return k, nil
}

// AddApplicationKey implements mesh.Network.
func (n *Network) AddApplicationKey(name string, key mesh.Key, boundTo mesh.KeyIndex) (mesh.ApplicationKey, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !slices.ContainsFunc(n.state.NetKeys, func(k mesh.NetworkKey) bool { return k.Index == boundTo }) {
		return mesh.ApplicationKey{}, fmt.Errorf("%w: network key %d", ErrUnknownKey, boundTo)
	}
	idx, err := nextKeyIndex(n.state.AppKeys, func(k mesh.ApplicationKey) mesh.KeyIndex { return k.Index })
	if err != nil {
		return mesh.ApplicationKey{}, err
	}
	k := mesh.ApplicationKey{Index: idx, Name: name, Key: key, BoundNetworkKey: boundTo}
	n.state.AppKeys = append(n.state.AppKeys, k)
	return k, nil
}

// AddGroup implements mesh.Network.
func (n *Network) AddGroup(name string, addr mesh.Address) (mesh.Group, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !addr.IsGroup() {
		return mesh.Group{}, fmt.Errorf("%w: %s", ErrInvalidGroup, addr)
	}
	for _, g := range n.state.Groups {
		if g.Address == addr {
			return mesh.Group{}, fmt.Errorf("%w: %s", ErrAddressInUse, addr)
		}
	}
	g := mesh.Group{Name: name, Address: addr}
	n.state.Groups = append(n.state.Groups, g)
	return g, nil
}

// LocalAddress implements mesh.Network.
func (n *Network) LocalAddress() mesh.Address {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state.Provisioner.Address
}

// LocalElements implements mesh.Network.
func (n *Network) LocalElements() []mesh.Element {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]mesh.Element, len(n.state.Provisioner.Elements))
	for i, e := range n.state.Provisioner.Elements {
		out[i] = e.Clone()
	}
	return out
}

// NextUnicastAddress returns the lowest address in the unicast range with
// room for the given number of consecutive elements.
func (n *Network) NextUnicastAddress(elements int) (mesh.Address, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.nextUnicast(elements)
}

func (n *Network) nextUnicast(elements int) (mesh.Address, error) {
	if elements < 1 {
		elements = 1
	}
	r := n.state.Provisioner.UnicastRange
	candidate := r.Low
	for {
		last := uint32(candidate) + uint32(elements) - 1
		if last > uint32(r.High) {
			return mesh.UnassignedAddress, ErrAddressExhausted
		}
		blocker, ok := n.overlapping(candidate, mesh.Address(last))
		if !ok {
			return candidate, nil
		}
		candidate = blocker + 1
	}
}

// overlapping returns the highest occupied address in [low, high], if any.
func (n *Network) overlapping(low, high mesh.Address) (mesh.Address, bool) {
	var top mesh.Address
	found := false
	check := func(first, last mesh.Address) {
		if first <= high && last >= low && (!found || last > top) {
			top, found = last, true
		}
	}
	p := n.state.Provisioner
	check(p.Address, p.Address+mesh.Address(max(len(p.Elements), 1)-1))
	for _, node := range n.state.Nodes {
		check(node.UnicastAddress, node.LastAddress())
	}
	return top, found
}

// NextGroupAddress returns the lowest unused address in the group range.
func (n *Network) NextGroupAddress() (mesh.Address, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	r := n.state.Provisioner.GroupRange
	for a := uint32(r.Low); a <= uint32(r.High); a++ {
		addr := mesh.Address(a)
		if !slices.ContainsFunc(n.state.Groups, func(g mesh.Group) bool { return g.Address == addr }) {
			return addr, nil
		}
	}
	return mesh.UnassignedAddress, ErrAddressExhausted
}

// AddNode adds a provisioned node. Its address block must be free.
func (n *Network) AddNode(node mesh.Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !node.UnicastAddress.IsUnicast() || !node.LastAddress().IsUnicast() {
		return fmt.Errorf("invalid unicast address %s", node.UnicastAddress)
	}
	if _, busy := n.overlapping(node.UnicastAddress, node.LastAddress()); busy {
		return fmt.Errorf("%w: %s", ErrAddressInUse, node.UnicastAddress)
	}
	n.state.Nodes = append(n.state.Nodes, node.Clone())
	return nil
}

// RemoveNode removes the node owning addr.
func (n *Network) RemoveNode(addr mesh.Address) (mesh.Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.nodeIndex(addr)
	if i < 0 {
		return mesh.Node{}, false
	}
	node := n.state.Nodes[i]
	n.state.Nodes = slices.Delete(n.state.Nodes, i, i+1)
	return node, true
}

// ApplyComposition records composition data page 0 for a node.
func (n *Network) ApplyComposition(addr mesh.Address, cd wire.CompositionData) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.nodeIndex(addr)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, addr)
	}
	node := &n.state.Nodes[i]
	node.CompanyID = cd.CompanyID
	node.ProductID = cd.ProductID
	node.VersionID = cd.VersionID
	node.CRPL = cd.CRPL
	node.Features = cd.Features
	node.Elements = make([]mesh.Element, len(cd.Elements))
	for j, e := range cd.Elements {
		node.Elements[j] = e.Clone()
		node.Elements[j].Index = uint8(j)
	}
	return nil
}

// AddNodeAppKey records that the node holds an application key.
func (n *Network) AddNodeAppKey(addr mesh.Address, idx mesh.KeyIndex) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.nodeIndex(addr)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, addr)
	}
	if !n.hasAppKey(idx) {
		return fmt.Errorf("%w: application key %d", ErrUnknownKey, idx)
	}
	node := &n.state.Nodes[i]
	if !node.KnowsApplicationKey(idx) {
		node.AppKeys = append(node.AppKeys, idx)
	}
	return nil
}

// SetConfigured marks the node as configured.
func (n *Network) SetConfigured(addr mesh.Address, configured bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.nodeIndex(addr)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, addr)
	}
	n.state.Nodes[i].Configured = configured
	return nil
}

// BindModel binds an application key to the model on the element at
// elementAddr. The element may belong to the provisioner.
func (n *Network) BindModel(elementAddr mesh.Address, id mesh.ModelID, idx mesh.KeyIndex) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.hasAppKey(idx) {
		return fmt.Errorf("%w: application key %d", ErrUnknownKey, idx)
	}
	m, err := n.model(elementAddr, id)
	if err != nil {
		return err
	}
	if !m.IsBoundTo(idx) {
		m.Bind = append(m.Bind, idx)
	}
	return nil
}

// AddSubscription subscribes the model to a group address.
func (n *Network) AddSubscription(elementAddr mesh.Address, id mesh.ModelID, group mesh.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !group.IsGroup() && !group.IsVirtual() {
		return fmt.Errorf("%w: %s", ErrInvalidGroup, group)
	}
	m, err := n.model(elementAddr, id)
	if err != nil {
		return err
	}
	if !m.IsSubscribedTo(group) {
		m.Subscriptions = append(m.Subscriptions, group)
	}
	return nil
}

// SetPublication sets the model publication.
func (n *Network) SetPublication(elementAddr mesh.Address, id mesh.ModelID, pub mesh.Publish) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	m, err := n.model(elementAddr, id)
	if err != nil {
		return err
	}
	p := pub
	m.Publish = &p
	return nil
}

func (n *Network) nodeIndex(addr mesh.Address) int {
	return slices.IndexFunc(n.state.Nodes, func(node mesh.Node) bool { return node.HasAddress(addr) })
}

func (n *Network) hasAppKey(idx mesh.KeyIndex) bool {
	return slices.ContainsFunc(n.state.AppKeys, func(k mesh.ApplicationKey) bool { return k.Index == idx })
}

// model returns a pointer into the state for the model on the element at
// addr. Callers must hold the write lock.
func (n *Network) model(addr mesh.Address, id mesh.ModelID) (*mesh.Model, error) {
	var elements []mesh.Element
	var base mesh.Address
	p := &n.state.Provisioner
	if addr >= p.Address && int(addr-p.Address) < len(p.Elements) {
		elements, base = p.Elements, p.Address
	} else if i := n.nodeIndex(addr); i >= 0 {
		elements, base = n.state.Nodes[i].Elements, n.state.Nodes[i].UnicastAddress
	} else {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, addr)
	}
	ei := int(addr - base)
	if ei >= len(elements) {
		return nil, fmt.Errorf("%w: %s on %s", ErrModelNotFound, id, addr)
	}
	models := elements[ei].Models
	for j := range models {
		if models[j].ID == id {
			return &models[j], nil
		}
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrModelNotFound, id, addr)
}

func nextKeyIndex[T any](keys []T, index func(T) mesh.KeyIndex) (mesh.KeyIndex, error) {
	for i := mesh.KeyIndex(0); i <= mesh.MaxKeyIndex; i++ {
		if !slices.ContainsFunc(keys, func(k T) bool { return index(k) == i }) {
			return i, nil
		}
	}
	return 0, ErrKeyExhausted
}

func cloneState(s *NetworkState) NetworkState {
	out := *s
	out.Provisioner.Elements = cloneElements(s.Provisioner.Elements)
	out.NetKeys = slices.Clone(s.NetKeys)
	out.AppKeys = slices.Clone(s.AppKeys)
	out.Groups = slices.Clone(s.Groups)
	out.Nodes = make([]mesh.Node, len(s.Nodes))
	for i, node := range s.Nodes {
		out.Nodes[i] = node.Clone()
	}
	return out
}

func cloneElements(in []mesh.Element) []mesh.Element {
	out := make([]mesh.Element, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

var _ mesh.Network = (*Network)(nil)
