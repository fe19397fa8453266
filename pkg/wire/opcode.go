package wire

import (
	"errors"
	"fmt"
)

// Opcode is an access-layer opcode. One-byte opcodes are below 0x7F,
// two-byte opcodes are 0x8000-0xBFFF and three-byte vendor opcodes are
// 0xC00000-0xFFFFFF with the company identifier in the low 16 bits.
type Opcode uint32

// Configuration opcodes.
const (
	OpAppKeyAdd               Opcode = 0x00
	OpAppKeyStatus            Opcode = 0x8003
	OpCompositionDataGet      Opcode = 0x8008
	OpCompositionDataStatus   Opcode = 0x02
	OpModelAppBind            Opcode = 0x803D
	OpModelAppStatus          Opcode = 0x803E
	OpModelSubscriptionAdd    Opcode = 0x801B
	OpModelSubscriptionStatus Opcode = 0x801F
	OpModelPublicationSet     Opcode = 0x03
	OpModelPublicationStatus  Opcode = 0x8019
	OpNodeReset               Opcode = 0x8049
	OpNodeResetStatus         Opcode = 0x804A
)

// Generic and vendor opcodes.
const (
	OpGenericOnOffSet      Opcode = 0x8202
	OpGenericOnOffSetUnack Opcode = 0x8203
	OpGenericOnOffStatus   Opcode = 0x8204

	OpGenericColorSet      Opcode = 0x8202
	OpGenericColorSetUnack Opcode = 0x8203
	OpGenericColorStatus   Opcode = 0x8204

	// OpSwitchColor is shared by SwitchColorSet and SwitchColorStatus.
	OpSwitchColor Opcode = 0xC1FFFF
)

// ErrInvalidOpcode is returned for reserved or truncated opcodes.
var ErrInvalidOpcode = errors.New("invalid opcode")

// String returns the opcode name.
func (o Opcode) String() string {
	switch o {
	case OpAppKeyAdd:
		return "APP_KEY_ADD"
	case OpAppKeyStatus:
		return "APP_KEY_STATUS"
	case OpCompositionDataGet:
		return "COMPOSITION_DATA_GET"
	case OpCompositionDataStatus:
		return "COMPOSITION_DATA_STATUS"
	case OpModelAppBind:
		return "MODEL_APP_BIND"
	case OpModelAppStatus:
		return "MODEL_APP_STATUS"
	case OpModelSubscriptionAdd:
		return "MODEL_SUBSCRIPTION_ADD"
	case OpModelSubscriptionStatus:
		return "MODEL_SUBSCRIPTION_STATUS"
	case OpModelPublicationSet:
		return "MODEL_PUBLICATION_SET"
	case OpModelPublicationStatus:
		return "MODEL_PUBLICATION_STATUS"
	case OpNodeReset:
		return "NODE_RESET"
	case OpNodeResetStatus:
		return "NODE_RESET_STATUS"
	case OpGenericOnOffSet:
		return "GENERIC_ONOFF_SET"
	case OpGenericOnOffSetUnack:
		return "GENERIC_ONOFF_SET_UNACK"
	case OpGenericOnOffStatus:
		return "GENERIC_ONOFF_STATUS"
	case OpSwitchColor:
		return "SWITCH_COLOR"
	default:
		return fmt.Sprintf("0x%X", uint32(o))
	}
}

// Size returns the encoded length of the opcode in bytes.
func (o Opcode) Size() int {
	switch {
	case o < 0x7F:
		return 1
	case o >= 0x8000 && o <= 0xBFFF:
		return 2
	default:
		return 3
	}
}

// IsVendor reports whether o is a three-byte vendor opcode.
func (o Opcode) IsVendor() bool {
	return o.Size() == 3
}

// AppendOpcode appends the encoded opcode to b.
func AppendOpcode(b []byte, o Opcode) []byte {
	switch o.Size() {
	case 1:
		return append(b, byte(o))
	case 2:
		return append(b, byte(o>>8), byte(o))
	default:
		return append(b, byte(o>>16), byte(o>>8), byte(o))
	}
}

// ParseOpcode reads an opcode from the start of pdu and returns it with
// the remaining parameter bytes.
func ParseOpcode(pdu []byte) (Opcode, []byte, error) {
	if len(pdu) == 0 {
		return 0, nil, fmt.Errorf("%w: empty pdu", ErrInvalidOpcode)
	}
	b0 := pdu[0]
	switch {
	case b0 == 0x7F:
		return 0, nil, fmt.Errorf("%w: reserved 0x7F", ErrInvalidOpcode)
	case b0&0x80 == 0:
		return Opcode(b0), pdu[1:], nil
	case b0&0xC0 == 0x80:
		if len(pdu) < 2 {
			return 0, nil, fmt.Errorf("%w: truncated two-byte opcode", ErrInvalidOpcode)
		}
		return Opcode(b0)<<8 | Opcode(pdu[1]), pdu[2:], nil
	default:
		if len(pdu) < 3 {
			return 0, nil, fmt.Errorf("%w: truncated vendor opcode", ErrInvalidOpcode)
		}
		return Opcode(b0)<<16 | Opcode(pdu[1])<<8 | Opcode(pdu[2]), pdu[3:], nil
	}
}
