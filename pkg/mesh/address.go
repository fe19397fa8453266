package mesh

import "fmt"

// Address is a 16-bit mesh address.
type Address uint16

const (
	// UnassignedAddress is the unassigned address (0x0000).
	UnassignedAddress Address = 0x0000

	// MinUnicastAddress is the lowest unicast address.
	MinUnicastAddress Address = 0x0001

	// MaxUnicastAddress is the highest unicast address.
	MaxUnicastAddress Address = 0x7FFF

	// MinGroupAddress is the lowest non-fixed group address.
	MinGroupAddress Address = 0xC000

	// MaxGroupAddress is the highest non-fixed group address.
	MaxGroupAddress Address = 0xFEFF

	// AllNodes is the fixed all-nodes group address.
	AllNodes Address = 0xFFFF
)

// IsUnassigned reports whether a is the unassigned address.
func (a Address) IsUnassigned() bool {
	return a == UnassignedAddress
}

// IsUnicast reports whether a addresses a single element.
func (a Address) IsUnicast() bool {
	return a >= MinUnicastAddress && a <= MaxUnicastAddress
}

// IsVirtual reports whether a is a virtual address.
func (a Address) IsVirtual() bool {
	return a >= 0x8000 && a <= 0xBFFF
}

// IsGroup reports whether a is a group address, including fixed groups.
func (a Address) IsGroup() bool {
	return a >= MinGroupAddress
}

// String returns the address as 0xNNNN.
func (a Address) String() string {
	return fmt.Sprintf("0x%04X", uint16(a))
}

// AddressRange is an inclusive range of addresses.
type AddressRange struct {
	Low  Address `json:"low"`
	High Address `json:"high"`
}

// Contains reports whether addr lies within the range.
func (r AddressRange) Contains(addr Address) bool {
	return addr >= r.Low && addr <= r.High
}
