// Package wire implements the access-layer message formats exchanged with
// mesh nodes.
//
// An access PDU is an opcode (1, 2 or 3 bytes) followed by fixed-offset
// little-endian parameters. Encryption, segmentation and network framing
// are handled by the mesh stack; this package only deals with the plaintext
// access payload.
//
// # Opcode collisions
//
// The Generic Color messages used by the supported lamps reuse the Generic
// OnOff opcodes (0x8202, 0x8203, 0x8204). DecodePDU resolves 0x8204 to
// GenericOnOffStatus; callers that expect a color status decode the
// parameters with DecodeGenericColorStatus.
package wire
