package service

import (
	"github.com/mesh-lifecycle/mesh-go/pkg/configuration"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/provisioning"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// Stack is the mesh stack the service drives: it provisions devices,
// sends configuration messages secured with device keys, sends model
// messages secured with application keys and delivers received messages.
type Stack interface {
	provisioning.Registry

	// Send sends a configuration message to dst.
	Send(msg wire.Message, dst mesh.Address) error

	// SendAccess sends a model message to dst using the application key.
	SendAccess(msg wire.Message, dst mesh.Address, appKey mesh.KeyIndex) error

	// SetMessageHandler installs the receiver of messages from nodes.
	// It may be called from any goroutine.
	SetMessageHandler(fn func(msg wire.Message, src mesh.Address))
}

var _ configuration.Registry = Stack(nil)
