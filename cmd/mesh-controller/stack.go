package main

import (
	"errors"

	"github.com/mesh-lifecycle/mesh-go/pkg/bearer"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/persistence"
	"github.com/mesh-lifecycle/mesh-go/pkg/provisioning"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// errNoMeshStack is returned by operations that need the mesh protocol
// stack when the controller only drives the radio.
var errNoMeshStack = errors.New("no mesh protocol stack attached (run with -simulate)")

// radioOnlyStack backs the service when running on real hardware without a
// mesh protocol stack. Scanning and bearer connections work; provisioning
// fails once the bearer is open and messages cannot be sent.
type radioOnlyStack struct {
	network *persistence.Network
	store   *persistence.NetworkStore
}

func newRadioOnlyStack(network *persistence.Network, store *persistence.NetworkStore) *radioOnlyStack {
	return &radioOnlyStack{network: network, store: store}
}

func (s *radioOnlyStack) Network() mesh.Network { return s.network }

func (s *radioOnlyStack) Provision(mesh.UnprovisionedDevice, bearer.Bearer) (provisioning.ProtocolSession, error) {
	return nil, errNoMeshStack
}

func (s *radioOnlyStack) Save() error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(s.network.State())
}

func (s *radioOnlyStack) Send(wire.Message, mesh.Address) error { return errNoMeshStack }

func (s *radioOnlyStack) SendAccess(wire.Message, mesh.Address, mesh.KeyIndex) error {
	return errNoMeshStack
}

// SetMessageHandler does nothing: without a stack no message arrives.
func (s *radioOnlyStack) SetMessageHandler(func(msg wire.Message, src mesh.Address)) {}
