package ws

// Opcode identifies the type of a WebSocket frame per RFC 6455 Section 5.2.
type Opcode byte

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA

	// opcodeNone marks a connection with no message in progress.
	opcodeNone Opcode = 0xFF
)

func (o Opcode) String() string {
	switch o {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return "unknown"
	}
}

const (
	finBit      = 0x80
	maskBit     = 0x80
	opcodeBits  = 0x0F
	lengthBits  = 0x7F
	maskKeySize = 4
)

// frame is one decoded unit of the wire format.
type frame struct {
	fin     bool
	opcode  Opcode
	masked  bool
	payload []byte
}

// maskBytes applies the XOR masking key in place. The transform is an
// involution: applying it twice with the same key restores the input.
func maskBytes(payload []byte, key [maskKeySize]byte) {
	for i := range payload {
		payload[i] ^= key[i%maskKeySize]
	}
}
