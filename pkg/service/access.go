package service

import (
	"fmt"
	"time"

	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	meshlog "github.com/mesh-lifecycle/mesh-go/pkg/log"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

// GenericOnOffSet sets a node's Generic OnOff state. The node's status
// reply arrives as an event.
func (s *Service) GenericOnOffSet(addr mesh.Address, on bool) events.Response {
	return s.do(func() events.Response {
		elem, key, err := s.accessTarget(addr, mesh.GenericOnOffServer)
		if err != nil {
			return events.Fail(err)
		}
		msg := wire.GenericOnOffSet{On: on, TID: s.nextTID()}
		if err := s.sendAccess(msg, elem, key); err != nil {
			return events.Response{Message: fmt.Sprintf("Failed to send OnOff message: %v", err)}
		}
		return events.OK(fmt.Sprintf("Turning %s %s...", onOff(on), elem))
	})
}

// GenericColorSet sets a node's color.
func (s *Service) GenericColorSet(addr mesh.Address, color uint16) events.Response {
	return s.do(func() events.Response {
		elem, key, err := s.accessTarget(addr, mesh.GenericColorServer)
		if err != nil {
			return events.Fail(err)
		}
		msg := wire.GenericColorSet{Color: color, TID: s.nextTID()}
		if err := s.sendAccess(msg, elem, key); err != nil {
			return events.Response{Message: fmt.Sprintf("Failed to send color message: %v", err)}
		}
		return events.OK(fmt.Sprintf("Setting %s to color %d...", elem, color))
	})
}

// PublishColor publishes the color selected by index to the configured
// group using the network's first application key.
func (s *Service) PublishColor(index int) events.Response {
	return s.do(func() events.Response {
		network := s.stack.Network()
		if _, ok := mesh.LocalModel(network, mesh.GenericColorClient); !ok {
			return events.Fail(fmt.Errorf("%w: %s", ErrNoClientModel, mesh.GenericColorClient))
		}
		group, ok := network.Group(s.config.Configuration.Group)
		if !ok {
			return events.Fail(fmt.Errorf("%w: %s", ErrNoGroup, s.config.Configuration.Group))
		}
		keys := network.ApplicationKeys()
		if len(keys) == 0 {
			return events.Fail(ErrNoAppKey)
		}

		code := ColorCode(index)
		msg := wire.GenericColorSetUnacknowledged{Color: code, Color2: code, Color3: code, TID: s.nextTID()}
		if err := s.sendAccess(msg, group.Address, keys[0].Index); err != nil {
			return events.Response{Message: fmt.Sprintf("Failed to publish message: %v", err)}
		}
		s.logger.Info("[SVC] color published", "group", group.Address, "code", code)
		return events.OK(fmt.Sprintf("Published color %d to %s.", code, group.Name))
	})
}

// accessTarget finds the element hosting the server model on the node and
// the application key bound to it. The provisioner must host the matching
// client model.
func (s *Service) accessTarget(addr mesh.Address, server mesh.ModelID) (mesh.Address, mesh.KeyIndex, error) {
	network := s.stack.Network()
	node, ok := network.Node(addr)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNodeNotFound, addr)
	}
	client, _ := mesh.ClientModelFor(server)
	if _, ok := mesh.LocalModel(network, client); !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoClientModel, client)
	}
	elem, model, ok := node.FindModel(server)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoServerModel, server)
	}
	if len(model.Bind) == 0 {
		return 0, 0, fmt.Errorf("%w: %s is not bound", ErrNoAppKey, server)
	}
	return elem, model.Bind[0], nil
}

func (s *Service) sendAccess(msg wire.Message, dst mesh.Address, key mesh.KeyIndex) error {
	s.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		Direction: meshlog.DirectionOut,
		Layer:     meshlog.LayerService,
		Category:  meshlog.CategoryMessage,
		Address:   uint16(dst),
		Message: &meshlog.MessageEvent{
			Opcode:      uint32(msg.Opcode()),
			Name:        msg.Opcode().String(),
			Source:      uint16(s.stack.Network().LocalAddress()),
			Destination: uint16(dst),
			Parameters:  msg.Parameters(),
		},
	})
	if err := s.stack.SendAccess(msg, dst, key); err != nil {
		s.logger.Warn("[SVC] send failed", "destination", dst, "opcode", msg.Opcode(), "error", err)
		return err
	}
	return nil
}

func (s *Service) nextTID() uint8 {
	tid := s.tid
	s.tid++
	return tid
}
