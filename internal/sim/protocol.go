package sim

import (
	"fmt"
	"sync"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/provisioning"
)

// protocolSession simulates the provisioning exchange with one device.
// Delegate callbacks run on the stack's executor.
type protocolSession struct {
	stack  *Stack
	node   *node
	bearer *Bearer

	mu       sync.Mutex
	delegate provisioning.ProtocolDelegate
	state    provisioning.ProtocolState
	caps     *provisioning.Capabilities
	netKey   *mesh.NetworkKey
}

func (p *protocolSession) SetDelegate(d provisioning.ProtocolDelegate) {
	p.mu.Lock()
	p.delegate = d
	p.mu.Unlock()
}

func (p *protocolSession) Identify(attentionTimer uint8) error {
	if !p.bearer.IsOpen() {
		return fmt.Errorf("identify %s: bearer not open", p.node.device.Identifier)
	}
	p.stack.logger.Debug("[SIM] identify", "device", p.node.device.Identifier, "attention", attentionTimer)
	p.setState(provisioning.RequestingCapabilities())
	p.stack.after(p.node.device.Latency, func() {
		caps := p.node.capabilities()
		p.mu.Lock()
		p.caps = &caps
		p.mu.Unlock()
		p.setState(provisioning.CapabilitiesReceived(caps))
	})
	return nil
}

func (p *protocolSession) Capabilities() (provisioning.Capabilities, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.caps == nil {
		return provisioning.Capabilities{}, false
	}
	return *p.caps, true
}

func (p *protocolSession) NetworkKey() (mesh.NetworkKey, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.netKey == nil {
		return mesh.NetworkKey{}, false
	}
	return *p.netKey, true
}

func (p *protocolSession) SetNetworkKey(key mesh.NetworkKey) {
	p.mu.Lock()
	p.netKey = &key
	p.mu.Unlock()
}

func (p *protocolSession) Provision(alg provisioning.Algorithm, publicKey provisioning.PublicKeyMethod, auth provisioning.AuthenticationMethod) error {
	key, ok := p.NetworkKey()
	if !ok {
		return fmt.Errorf("provision %s: network key not set", p.node.device.Identifier)
	}
	if _, ok := p.Capabilities(); !ok {
		return fmt.Errorf("provision %s: %w", p.node.device.Identifier, provisioning.ErrCapabilitiesNotAvailable)
	}
	p.stack.logger.Debug("[SIM] provisioning", "device", p.node.device.Identifier, "algorithm", alg, "publicKey", publicKey, "auth", auth)
	p.setState(provisioning.ProtocolState{Kind: provisioning.ProtocolProvisioning})

	p.stack.after(p.node.device.Latency, func() {
		dev := p.node.device
		if dev.RequireInputOOB && auth == provisioning.NoOOB {
			p.mu.Lock()
			d := p.delegate
			p.mu.Unlock()
			if d != nil {
				d.AuthenticationActionRequired(provisioning.AuthProvideNumeric)
			}
			return
		}
		if dev.ProvisioningError != nil {
			p.setState(provisioning.Failed(dev.ProvisioningError))
			return
		}
		if _, err := p.stack.commission(p.node, key); err != nil {
			p.setState(provisioning.Failed(err))
			return
		}
		p.setState(provisioning.Complete())

		// The device drops the link and comes back as a proxy node.
		p.stack.after(dev.Latency, func() { p.bearer.PeerDisconnect(nil) })
	})
	return nil
}

func (p *protocolSession) State() provisioning.ProtocolState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *protocolSession) setState(s provisioning.ProtocolState) {
	p.mu.Lock()
	p.state = s
	d := p.delegate
	p.mu.Unlock()
	if d != nil {
		d.ProtocolStateChanged(s)
	}
}

var _ provisioning.ProtocolSession = (*protocolSession)(nil)
