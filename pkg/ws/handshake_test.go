package ws

import (
	"strings"
	"testing"
)

func TestAcceptKey_RFCVector(t *testing.T) {
	// Example from RFC 6455 Section 1.3.
	got := acceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="

	if got != want {
		t.Errorf("acceptKey() = %q, want %q", got, want)
	}
}

func TestAcceptKey_EmptyKeyIsDeterministic(t *testing.T) {
	if acceptKey("") != acceptKey("") {
		t.Error("acceptKey must be deterministic for an empty key")
	}
}

func TestHandshakeResponse_Format(t *testing.T) {
	resp := handshakeResponse("dGhlIHNhbXBsZSBub25jZQ==")

	if !strings.HasPrefix(resp, "HTTP/1.1 101 Switching Protocols\r\n") {
		t.Error("response missing 101 status line")
	}

	for _, header := range []string{
		"Upgrade: websocket\r\n",
		"Connection: Upgrade\r\n",
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n",
	} {
		if !strings.Contains(resp, header) {
			t.Errorf("response missing header %q", header)
		}
	}

	if !strings.HasSuffix(resp, "\r\n\r\n") {
		t.Error("response missing terminating blank line")
	}
}
