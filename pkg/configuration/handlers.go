package configuration

import (
	"fmt"

	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// Env is the read-only view a handler decides on.
type Env struct {
	Network  mesh.Network
	Settings Settings

	// Session is the node's session, if one is active.
	Session    Session
	HasSession bool
}

// Handler maps a status message from a node to follow-up actions. It must
// not mutate anything.
type Handler func(env Env, node mesh.Node, msg wire.Message) []Action

// handlers is keyed by response opcode.
var handlers = map[wire.Opcode]Handler{
	wire.OpAppKeyStatus:            handleAppKeyStatus,
	wire.OpCompositionDataStatus:   handleCompositionData,
	wire.OpModelAppStatus:          handleModelAppStatus,
	wire.OpModelSubscriptionStatus: handleSubscriptionStatus,
	wire.OpModelPublicationStatus:  handlePublicationStatus,
	wire.OpNodeResetStatus:         handleNodeResetStatus,
}

// HandlerFor returns the handler for a status opcode.
func HandlerFor(op wire.Opcode) (Handler, bool) {
	h, ok := handlers[op]
	return h, ok
}

func handleAppKeyStatus(env Env, node mesh.Node, msg wire.Message) []Action {
	m := msg.(wire.AppKeyStatus)
	addr := node.UnicastAddress
	if !m.Status.IsSuccess() {
		return []Action{
			FinishAction{Node: addr},
			emitStatus(events.StatusError, fmt.Sprintf("Failed to add AppKey: %s", m.Status), addr, m.Status),
		}
	}
	if !env.HasSession || env.Session.Step != AwaitingAppKeyStatus {
		// Duplicate status, or the key was not added by ConfigureNode.
		return nil
	}
	next := env.Session
	next.Step = AwaitingCompositionData
	next.AppKeyIndex = m.AppKeyIndex
	return []Action{
		ArmRetryAction{Target: addr},
		AdvanceAction{Session: next},
		SendAction{Message: wire.CompositionDataGet{Page: 0}, Destination: addr, Attempt: 1},
		emit(events.StatusProcessing, "AppKey added. Requesting composition data...", addr),
	}
}

func handleCompositionData(env Env, node mesh.Node, msg wire.Message) []Action {
	m := msg.(wire.CompositionDataStatus)
	addr := node.UnicastAddress
	if !env.HasSession || env.Session.Step != AwaitingCompositionData {
		// Duplicate reply to a resent request, or nobody asked.
		return []Action{CancelRetryAction{Target: addr}}
	}
	actions := []Action{CancelRetryAction{Target: addr}}

	if len(node.Elements) == 0 {
		node.Elements = m.Composition.Elements
	}
	server, elem, ok := selectServerModel(node)
	if !ok {
		return append(actions,
			FinishAction{Node: addr},
			emit(events.StatusError, "Valid server model not found", addr))
	}
	client, _ := mesh.ClientModelFor(server)
	clientElem, ok := mesh.LocalModel(env.Network, client)
	if !ok {
		return append(actions,
			FinishAction{Node: addr},
			emit(events.StatusError, fmt.Errorf("%w: %s", ErrNoMatchingClientModel, client).Error(), addr))
	}
	key, ok := selectBoundAppKey(env.Network, node, env.Session.AppKeyIndex)
	if !ok {
		return append(actions,
			FinishAction{Node: addr},
			emit(events.StatusError, ErrNoApplicationKey.Error(), addr))
	}

	next := env.Session
	next.Step = AwaitingModelBindStatus
	next.AppKeyIndex = key.Index
	next.ServerModel = server
	next.ServerElement = elem
	next.ClientModel = client
	next.ClientElement = clientElem
	return append(actions,
		AdvanceAction{Session: next},
		SendAction{
			Message:     wire.ModelAppBind{ElementAddress: elem, AppKeyIndex: key.Index, ModelID: server},
			Destination: addr,
		},
		emit(events.StatusProcessing, fmt.Sprintf("Composition data received. Binding %s...", server), addr),
	)
}

func handleModelAppStatus(env Env, node mesh.Node, msg wire.Message) []Action {
	m := msg.(wire.ModelAppStatus)
	addr := node.UnicastAddress
	if !m.Status.IsSuccess() {
		return []Action{
			FinishAction{Node: addr},
			emitStatus(events.StatusError, fmt.Sprintf("Model bind failed with status: %s", m.Status), addr, m.Status),
		}
	}
	done := emit(events.StatusSuccess, "Successfully bind AppKey to Model", addr)
	if !env.HasSession || env.Session.Step != AwaitingModelBindStatus {
		return []Action{done}
	}
	s := env.Session
	next := s
	next.Step = AwaitingClientBindStatus
	return []Action{
		AdvanceAction{Session: next},
		SendAction{
			Message:     wire.ModelAppBind{ElementAddress: s.ClientElement, AppKeyIndex: s.AppKeyIndex, ModelID: s.ClientModel},
			Destination: env.Network.LocalAddress(),
		},
		done,
	}
}

// handleLocalModelAppStatus handles the provisioner's answer to the client
// model bind. It is correlated with the session waiting on that model.
func handleLocalModelAppStatus(sessions []Session, m wire.ModelAppStatus) []Action {
	for _, s := range sessions {
		if s.Step != AwaitingClientBindStatus || s.ClientModel != m.ModelID {
			continue
		}
		if !m.Status.IsSuccess() {
			return []Action{
				FinishAction{Node: s.Node},
				emitStatus(events.StatusError, fmt.Sprintf("Client model bind failed with status: %s", m.Status), s.Node, m.Status),
			}
		}
		return []Action{
			FinishAction{Node: s.Node},
			emit(events.StatusComplete, "Node configured.", s.Node),
		}
	}
	return nil
}

func handleSubscriptionStatus(env Env, node mesh.Node, msg wire.Message) []Action {
	m := msg.(wire.ModelSubscriptionStatus)
	addr := node.UnicastAddress
	actions := finishIf(env, AwaitingSubscriptionStatus)
	if !m.Status.IsSuccess() {
		return append(actions,
			emitStatus(events.StatusError, fmt.Sprintf("Failed to subscribe model: %s", m.Status), addr, m.Status))
	}
	return append(actions, emit(events.StatusSuccess, "Successfully subscribe model", addr))
}

func handlePublicationStatus(env Env, node mesh.Node, msg wire.Message) []Action {
	m := msg.(wire.ModelPublicationStatus)
	addr := node.UnicastAddress
	actions := finishIf(env, AwaitingPublicationStatus)
	if !m.Status.IsSuccess() {
		return append(actions,
			emitStatus(events.StatusError, fmt.Sprintf("Failed to publish model: %s", m.Status), addr, m.Status))
	}
	return append(actions, emit(events.StatusSuccess, "Successfully publish model", addr))
}

func handleNodeResetStatus(env Env, node mesh.Node, _ wire.Message) []Action {
	addr := node.UnicastAddress
	return []Action{
		CancelRetryAction{Target: addr},
		FinishAction{Node: addr},
		emit(events.StatusSuccess, "Node reset.", addr),
	}
}

func finishIf(env Env, step Step) []Action {
	if env.HasSession && env.Session.Step == step {
		return []Action{FinishAction{Node: env.Session.Node}}
	}
	return nil
}

// selectServerModel returns the first server model in preference order.
func selectServerModel(node mesh.Node) (mesh.ModelID, mesh.Address, bool) {
	for _, id := range mesh.ServerModelPreference {
		if elem, _, ok := node.FindModel(id); ok {
			return id, elem, true
		}
	}
	return 0, mesh.UnassignedAddress, false
}

// selectBoundAppKey prefers the key the node just acknowledged, then any
// key whose bound network key the node knows.
func selectBoundAppKey(n mesh.Network, node mesh.Node, preferred mesh.KeyIndex) (mesh.ApplicationKey, bool) {
	keys := n.ApplicationKeys()
	for _, k := range keys {
		if k.Index == preferred && node.KnowsNetworkKey(k.BoundNetworkKey) {
			return k, true
		}
	}
	for _, k := range keys {
		if node.KnowsNetworkKey(k.BoundNetworkKey) {
			return k, true
		}
	}
	return mesh.ApplicationKey{}, false
}
