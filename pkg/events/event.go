package events

import (
	"errors"
	"fmt"
	"time"
)

// Status classifies an event.
type Status uint8

const (
	StatusConnecting Status = iota
	StatusDiscovering
	StatusIdentifying
	StatusProvisioning
	StatusComplete
	StatusError
	StatusSuccess
	StatusProcessing
	StatusTimeout
)

// String returns the lower-case status name used on the event stream.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusDiscovering:
		return "discovering"
	case StatusIdentifying:
		return "identifying"
	case StatusProvisioning:
		return "provisioning"
	case StatusComplete:
		return "complete"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	case StatusProcessing:
		return "processing"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal reports whether the status ends a flow.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusSuccess || s == StatusTimeout
}

// Well-known field names.
const (
	FieldNodeUUID       = "nodeUuid"
	FieldUnicastAddress = "unicastAddress"
	FieldDeviceID       = "deviceId"
	FieldAddress        = "address"
	FieldStatusCode     = "statusCode"
	FieldAttempt        = "attempt"
)

// Event is a status or progress notification.
type Event struct {
	Time    time.Time      `json:"time"`
	Source  string         `json:"source"`
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// New creates an event stamped with the current time.
func New(source string, status Status, message string) Event {
	return Event{Time: time.Now(), Source: source, Status: status, Message: message}
}

// With returns a copy of the event with an extra field.
func (e Event) With(key string, value any) Event {
	fields := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	e.Fields = fields
	return e
}

// Field returns a field value.
func (e Event) Field(key string) (any, bool) {
	v, ok := e.Fields[key]
	return v, ok
}

// String renders the event for display.
func (e Event) String() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("[%s] %s: %s", e.Source, e.Status, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s %v", e.Source, e.Status, e.Message, e.Fields)
}

// Sink receives events.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f.
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Response is the immediate result of a controller operation.
type Response struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
}

// OK returns a successful response.
func OK(message string) Response {
	return Response{IsSuccess: true, Message: message}
}

// Fail returns a failed response carrying err's message.
func Fail(err error) Response {
	return Response{Message: err.Error()}
}

// Err converts a failed response to an error, or nil.
func (r Response) Err() error {
	if r.IsSuccess {
		return nil
	}
	return errors.New(r.Message)
}
