package ws

import (
	"crypto/sha1"
	"encoding/base64"
)

// websocketGUID is the fixed key-hashing GUID from RFC 6455 Section 1.3.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// acceptKey computes the Sec-WebSocket-Accept value for a client key.
// A missing key still hashes deterministically; callers must reject
// non-websocket upgrade requests before getting here.
func acceptKey(secKey string) string {
	hash := sha1.Sum([]byte(secKey + websocketGUID))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// handshakeResponse builds the complete 101 response block for the
// opening handshake.
func handshakeResponse(secKey string) string {
	return "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + acceptKey(secKey) + "\r\n\r\n"
}
