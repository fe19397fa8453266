// Package bearer defines the transport that carries provisioning and
// network PDUs to a single peripheral, and a GATT implementation of it.
package bearer

import (
	"errors"

	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
)

// Bearer errors.
var (
	ErrClosed      = errors.New("bearer closed")
	ErrAlreadyOpen = errors.New("bearer already open")
)

// PDUType is the proxy PDU message type.
type PDUType uint8

const (
	PDUNetwork            PDUType = 0x00
	PDUMeshBeacon         PDUType = 0x01
	PDUProxyConfiguration PDUType = 0x02
	PDUProvisioning       PDUType = 0x03
)

// String returns the PDU type name.
func (t PDUType) String() string {
	switch t {
	case PDUNetwork:
		return "NETWORK"
	case PDUMeshBeacon:
		return "MESH_BEACON"
	case PDUProxyConfiguration:
		return "PROXY_CONFIGURATION"
	case PDUProvisioning:
		return "PROVISIONING"
	default:
		return "UNKNOWN"
	}
}

// Delegate receives bearer lifecycle callbacks. Callbacks may arrive on any
// goroutine.
type Delegate interface {
	// BearerDidConnect is called when the link is established.
	BearerDidConnect(b Bearer)

	// BearerDidDiscoverServices is called when the mesh service and its
	// characteristics were found.
	BearerDidDiscoverServices(b Bearer)

	// BearerDidOpen is called when the bearer is ready for PDUs.
	BearerDidOpen(b Bearer)

	// BearerDidClose is called exactly once per Open, with the cause of
	// the close or nil when closed locally.
	BearerDidClose(b Bearer, err error)
}

// DataDelegate receives PDUs from the peer.
type DataDelegate interface {
	BearerDidDeliver(b Bearer, pduType PDUType, data []byte)
}

// Bearer is an opaque PDU transport to one peripheral.
type Bearer interface {
	// Identifier returns the peripheral identifier.
	Identifier() string

	// Open starts connecting. Progress is reported to the Delegate.
	Open() error

	// Close closes the bearer. Closing a closed bearer is a no-op.
	Close() error

	// IsOpen reports whether PDUs can be sent.
	IsOpen() bool

	// Send transmits a complete PDU.
	Send(pduType PDUType, data []byte) error

	SetDelegate(d Delegate)
	SetDataDelegate(d DataDelegate)
}

// Factory creates a bearer for a discovered device.
type Factory func(device scanner.DiscoveredDevice) (Bearer, error)
