package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

// Message is an access-layer message.
type Message interface {
	// Opcode returns the message opcode.
	Opcode() Opcode

	// Parameters returns the encoded message parameters.
	Parameters() []byte
}

// AcknowledgedMessage is a request that expects a status response.
type AcknowledgedMessage interface {
	Message

	// ResponseOpcode returns the opcode of the expected response.
	ResponseOpcode() Opcode
}

// Errors returned while decoding messages.
var (
	ErrInvalidLength   = errors.New("invalid parameter length")
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrInvalidKeyIndex = errors.New("key index out of range")
)

// Decoder decodes message parameters.
type Decoder func(params []byte) (Message, error)

var decoders = map[Opcode]Decoder{
	OpAppKeyAdd:               decodeAs(DecodeAppKeyAdd),
	OpAppKeyStatus:            decodeAs(DecodeAppKeyStatus),
	OpCompositionDataGet:      decodeAs(DecodeCompositionDataGet),
	OpCompositionDataStatus:   decodeAs(DecodeCompositionDataStatus),
	OpModelAppBind:            decodeAs(DecodeModelAppBind),
	OpModelAppStatus:          decodeAs(DecodeModelAppStatus),
	OpModelSubscriptionAdd:    decodeAs(DecodeModelSubscriptionAdd),
	OpModelSubscriptionStatus: decodeAs(DecodeModelSubscriptionStatus),
	OpModelPublicationSet:     decodeAs(DecodeModelPublicationSet),
	OpModelPublicationStatus:  decodeAs(DecodeModelPublicationStatus),
	OpNodeReset:               decodeAs(DecodeNodeReset),
	OpNodeResetStatus:         decodeAs(DecodeNodeResetStatus),
	OpGenericOnOffSet:         decodeAs(DecodeGenericOnOffSet),
	OpGenericOnOffSetUnack:    decodeAs(DecodeGenericOnOffSetUnacknowledged),
	OpGenericOnOffStatus:      decodeAs(DecodeGenericOnOffStatus),
	OpSwitchColor:             decodeSwitchColor,
}

func decodeAs[T Message](fn func([]byte) (T, error)) Decoder {
	return func(params []byte) (Message, error) {
		m, err := fn(params)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// SwitchColorSet and SwitchColorStatus share an opcode; their lengths do not
// overlap.
func decodeSwitchColor(params []byte) (Message, error) {
	if len(params) == 1 || len(params) == 3 {
		return decodeAs(DecodeSwitchColorStatus)(params)
	}
	return decodeAs(DecodeSwitchColorSet)(params)
}

// EncodePDU returns the access PDU for msg.
func EncodePDU(msg Message) []byte {
	params := msg.Parameters()
	out := make([]byte, 0, msg.Opcode().Size()+len(params))
	out = AppendOpcode(out, msg.Opcode())
	return append(out, params...)
}

// DecodePDU decodes an access PDU into a typed message.
func DecodePDU(pdu []byte) (Message, error) {
	op, params, err := ParseOpcode(pdu)
	if err != nil {
		return nil, err
	}
	dec, ok := decoders[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOpcode, op)
	}
	msg, err := dec(params)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", op, err)
	}
	return msg, nil
}

func lengthError(got int, want ...int) error {
	return fmt.Errorf("%w: got %d, want %v", ErrInvalidLength, got, want)
}

// appendKeyIndexes packs two 12-bit key indexes into three bytes.
func appendKeyIndexes(b []byte, first, second mesh.KeyIndex) []byte {
	v := uint32(first&mesh.MaxKeyIndex) | uint32(second&mesh.MaxKeyIndex)<<12
	return append(b, byte(v), byte(v>>8), byte(v>>16))
}

func readKeyIndexes(b []byte) (first, second mesh.KeyIndex) {
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	return mesh.KeyIndex(v & 0xFFF), mesh.KeyIndex(v >> 12 & 0xFFF)
}

func appendModelID(b []byte, id mesh.ModelID) []byte {
	if id.IsVendor() {
		b = binary.LittleEndian.AppendUint16(b, id.CompanyID())
	}
	return binary.LittleEndian.AppendUint16(b, id.Number())
}

func readModelID(b []byte) mesh.ModelID {
	if len(b) == 4 {
		return mesh.VendorModel(binary.LittleEndian.Uint16(b), binary.LittleEndian.Uint16(b[2:]))
	}
	return mesh.ModelID(binary.LittleEndian.Uint16(b))
}
