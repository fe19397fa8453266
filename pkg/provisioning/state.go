package provisioning

// State is the provisioning session state.
type State uint8

const (
	// StateIdle - no session.
	StateIdle State = iota

	// StateConnecting - bearer opening.
	StateConnecting

	// StateDiscovering - bearer connected, discovering services.
	StateDiscovering

	// StateIdentifying - bearer open, device attracting attention.
	StateIdentifying

	// StateAwaitingCapabilities - capabilities received, key exchange starting.
	StateAwaitingCapabilities

	// StateProvisioning - exchange finished, waiting for the link to close.
	StateProvisioning

	// StateComplete - node persisted.
	StateComplete

	// StateFailed - session aborted.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateDiscovering:
		return "DISCOVERING"
	case StateIdentifying:
		return "IDENTIFYING"
	case StateAwaitingCapabilities:
		return "AWAITING_CAPABILITIES"
	case StateProvisioning:
		return "PROVISIONING"
	case StateComplete:
		return "COMPLETE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether the state ends a session.
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateFailed
}
