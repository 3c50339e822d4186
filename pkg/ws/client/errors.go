package client

import "errors"

var (
	ErrConnectionClosed     = errors.New("connection closed")
	ErrMaxReconnectAttempts = errors.New("max reconnect attempts reached")
)
