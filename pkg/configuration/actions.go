package configuration

import (
	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// Action is a follow-up effect returned by a status handler.
type Action interface {
	action()
}

// SendAction sends a message to a destination.
type SendAction struct {
	Message     wire.Message
	Destination mesh.Address

	// Attempt numbers retried requests from 1. Zero for everything else.
	Attempt int
}

// ArmRetryAction arms the composition data retry for a node. When arming
// fails the remaining actions are skipped.
type ArmRetryAction struct {
	Target mesh.Address
}

// CancelRetryAction cancels the composition data retry if it targets the node.
type CancelRetryAction struct {
	Target mesh.Address
}

// AdvanceAction stores the session's next step.
type AdvanceAction struct {
	Session Session
}

// FinishAction ends a node's session.
type FinishAction struct {
	Node mesh.Address
}

// EmitAction emits an event from the configuration source.
type EmitAction struct {
	Status  events.Status
	Message string
	Fields  map[string]any
}

func (SendAction) action()        {}
func (ArmRetryAction) action()    {}
func (CancelRetryAction) action() {}
func (AdvanceAction) action()     {}
func (FinishAction) action()      {}
func (EmitAction) action()        {}

func emit(status events.Status, msg string, addr mesh.Address) EmitAction {
	return EmitAction{Status: status, Message: msg, Fields: map[string]any{events.FieldAddress: uint16(addr)}}
}

func emitStatus(status events.Status, msg string, addr mesh.Address, code wire.StatusCode) EmitAction {
	a := emit(status, msg, addr)
	a.Fields[events.FieldStatusCode] = uint8(code)
	return a
}
