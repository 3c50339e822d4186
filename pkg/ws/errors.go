package ws

import "errors"

var (
	ErrClientNotFound    = errors.New("client not found")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrFrameTooLarge     = errors.New("frame payload length too large")
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrNotHijackable     = errors.New("response writer does not support hijacking")
)
