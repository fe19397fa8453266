package log

import (
	"time"
)

// Event represents a mesh trace event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the provisioning or configuration session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// DeviceID is the BLE peripheral identifier, when known.
	DeviceID string `cbor:"6,keyasint,omitempty"`

	// NodeUUID is the mesh device UUID (populated once advertised or provisioned).
	NodeUUID string `cbor:"7,keyasint,omitempty"`

	// Address is the node's unicast address (populated after provisioning).
	Address uint16 `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	PDU         *PDUEvent         `cbor:"10,keyasint,omitempty"` // Bearer layer
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Access layer (decoded)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Session state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerBearer is the GATT bearer (raw proxy PDUs).
	LayerBearer Layer = 0
	// LayerProvisioning is the provisioning protocol.
	LayerProvisioning Layer = 1
	// LayerAccess is the access layer (decoded configuration messages).
	LayerAccess Layer = 2
	// LayerService is the controller service layer.
	LayerService Layer = 3
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerBearer:
		return "BEARER"
	case LayerProvisioning:
		return "PROVISIONING"
	case LayerAccess:
		return "ACCESS"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a PDU or access message.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PDUEvent captures raw proxy PDUs at the bearer layer.
type PDUEvent struct {
	// Type is the proxy PDU message type (network, provisioning, ...).
	Type uint8 `cbor:"1,keyasint"`

	// Size is the PDU size in bytes.
	Size int `cbor:"2,keyasint"`

	// Data is the raw PDU (may be truncated for large PDUs).
	Data []byte `cbor:"3,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// MessageEvent captures a decoded access message.
type MessageEvent struct {
	// Opcode of the message.
	Opcode uint32 `cbor:"1,keyasint"`

	// Name is the opcode name.
	Name string `cbor:"2,keyasint,omitempty"`

	// Source address.
	Source uint16 `cbor:"3,keyasint"`

	// Destination address.
	Destination uint16 `cbor:"4,keyasint"`

	// Status for configuration status messages.
	Status *uint8 `cbor:"5,keyasint,omitempty"`

	// Parameters are the raw message parameters.
	Parameters []byte `cbor:"6,keyasint,omitempty"`

	// Attempt is the send attempt for retried requests (1-based).
	Attempt int `cbor:"7,keyasint,omitempty"`
}

// StateChangeEvent captures session lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityScanner indicates a scanner state change.
	StateEntityScanner StateEntity = 0
	// StateEntityProvisioning indicates a provisioning session state change.
	StateEntityProvisioning StateEntity = 1
	// StateEntityConfiguration indicates a configuration step change.
	StateEntityConfiguration StateEntity = 2
	// StateEntityRetry indicates a retry timer change.
	StateEntityRetry StateEntity = 3
	// StateEntityService indicates a controller service lifecycle change.
	StateEntityService StateEntity = 4
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityScanner:
		return "SCANNER"
	case StateEntityProvisioning:
		return "PROVISIONING"
	case StateEntityConfiguration:
		return "CONFIGURATION"
	case StateEntityRetry:
		return "RETRY"
	case StateEntityService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the status code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}

// MaxPDUData is the largest PDU payload kept in a trace event.
const MaxPDUData = 64

// NewPDUEvent builds a PDUEvent, truncating data beyond MaxPDUData.
func NewPDUEvent(typ uint8, data []byte) *PDUEvent {
	ev := &PDUEvent{Type: typ, Size: len(data)}
	if len(data) > MaxPDUData {
		ev.Data = append([]byte(nil), data[:MaxPDUData]...)
		ev.Truncated = true
	} else {
		ev.Data = append([]byte(nil), data...)
	}
	return ev
}
