package scanner

// RadioState is the power state of the BLE radio.
type RadioState uint8

const (
	RadioUnknown RadioState = iota
	RadioPoweredOff
	RadioPoweredOn
)

// String returns the state name.
func (s RadioState) String() string {
	switch s {
	case RadioPoweredOff:
		return "POWERED_OFF"
	case RadioPoweredOn:
		return "POWERED_ON"
	default:
		return "UNKNOWN"
	}
}

// Advertisement is a single advertising report.
type Advertisement struct {
	// Identifier is the platform peripheral identifier (MAC or UUID).
	Identifier string

	Name string
	RSSI int

	// Services lists the 16-bit service UUIDs the peripheral advertises.
	Services []uint16

	// ServiceData maps 16-bit service UUIDs to their service data.
	ServiceData map[uint16][]byte
}

// HasService reports whether the advertisement lists the service.
func (a Advertisement) HasService(id uint16) bool {
	for _, s := range a.Services {
		if s == id {
			return true
		}
	}
	_, ok := a.ServiceData[id]
	return ok
}

// Radio is the BLE central the scanner drives.
type Radio interface {
	// State returns the current power state.
	State() RadioState

	// OnStateChange registers a power state callback.
	OnStateChange(fn func(RadioState))

	// Scan reports advertisements for the given services to handler until
	// StopScan is called. It blocks for the duration of the scan.
	Scan(services []uint16, handler func(Advertisement)) error

	// StopScan ends a running Scan.
	StopScan() error
}
