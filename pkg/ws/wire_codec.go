package ws

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Extended payload length tiers per RFC 6455 Section 5.2.
const (
	lengthTierSmall  = 125
	lengthTier16Bit  = 126
	lengthTier64Bit  = 127
	maxUint16Payload = 65535
)

// encodeFrame builds a single server-to-client frame: FIN set, unmasked,
// with the smallest applicable length encoding.
func encodeFrame(opcode Opcode, payload []byte) []byte {
	n := len(payload)

	var header []byte

	switch {
	case n <= lengthTierSmall:
		header = []byte{finBit | byte(opcode), byte(n)}
	case n <= maxUint16Payload:
		header = make([]byte, 4)
		header[0] = finBit | byte(opcode)
		header[1] = lengthTier16Bit
		binary.BigEndian.PutUint16(header[2:4], uint16(n))
	default:
		header = make([]byte, 10)
		header[0] = finBit | byte(opcode)
		header[1] = lengthTier64Bit
		binary.BigEndian.PutUint64(header[2:10], uint64(n))
	}

	buf := make([]byte, 0, len(header)+n)
	buf = append(buf, header...)
	buf = append(buf, payload...)

	return buf
}

// encodePing builds the zero-payload keepalive frame (FIN + opcode 0x9).
func encodePing() []byte {
	return []byte{finBit | byte(OpcodePing), 0x00}
}

// maxFramePayload caps the advertised 64-bit payload length so a hostile
// header can never overflow the int arithmetic below.
const maxFramePayload = math.MaxInt32

// decodeNext extracts the next complete client frame from buf, returning
// the frame and the number of bytes it occupied. consumed is 0 when buf
// holds less than a full frame; buf is never mutated. A frame whose
// 64-bit length field exceeds maxFramePayload is a protocol violation
// and returns ErrFrameTooLarge.
//
// Header sizes always reserve the 4-byte masking key slot (6, 8 or 14
// bytes), since client-to-server frames are masked. The payload is
// unmasked into a fresh slice when the mask bit is set.
func decodeNext(buf []byte) (f frame, consumed int, err error) {
	if len(buf) < 2 {
		return frame{}, 0, nil
	}

	indicator := buf[1] & lengthBits

	var payloadLen, headerLen int

	switch {
	case indicator <= lengthTierSmall:
		payloadLen = int(indicator)
		headerLen = 2 + maskKeySize
	case indicator == lengthTier16Bit:
		if len(buf) < 4 {
			return frame{}, 0, nil
		}

		payloadLen = int(binary.BigEndian.Uint16(buf[2:4]))
		headerLen = 4 + maskKeySize
	default:
		if len(buf) < 10 {
			return frame{}, 0, nil
		}

		length := binary.BigEndian.Uint64(buf[2:10])
		if length > maxFramePayload {
			return frame{}, 0, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
		}

		payloadLen = int(length)
		headerLen = 10 + maskKeySize
	}

	total := headerLen + payloadLen
	if len(buf) < total {
		return frame{}, 0, nil
	}

	f = frame{
		fin:    buf[0]&finBit != 0,
		opcode: Opcode(buf[0] & opcodeBits),
		masked: buf[1]&maskBit != 0,
	}

	f.payload = make([]byte, payloadLen)
	copy(f.payload, buf[headerLen:total])

	if f.masked {
		var key [maskKeySize]byte
		copy(key[:], buf[headerLen-maskKeySize:headerLen])
		maskBytes(f.payload, key)
	}

	return f, total, nil
}
