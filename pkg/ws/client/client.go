// Package client implements the dialing side of the ws envelope protocol
// on top of a standard WebSocket client connection.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cimo/websocket/pkg/ws"
)

// Handler receives messages dispatched for a subscribed tag.
type Handler func(payload []byte)

type Config struct {
	URL                  string
	ReconnectInterval    time.Duration
	MaxReconnectAttempts int
	Logger               *slog.Logger
}

func DefaultConfig(wsURL string) Config {
	return Config{
		URL:                  wsURL,
		ReconnectInterval:    5 * time.Second,
		MaxReconnectAttempts: 0,
		Logger:               slog.Default(),
	}
}

// Client connects to a ws server, dispatches incoming envelopes to tag
// handlers and sends tagged messages, broadcasts and binary uploads.
type Client struct {
	cfg       Config
	conn      *websocket.Conn
	connMu    sync.RWMutex
	writeMu   sync.Mutex
	handlers  map[string]Handler
	handlerMu sync.RWMutex
	onBinary  Handler
	done      chan struct{}
	closed    bool
	closedMu  sync.RWMutex
	logger    *slog.Logger
}

func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		cfg:      cfg,
		handlers: make(map[string]Handler),
		done:     make(chan struct{}),
		logger:   cfg.Logger,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.logger.Info("connected to server", "url", u.String())

	go c.readLoop()

	return nil
}

// Subscribe registers a handler for the given tag. The reserved server
// tags work the same way: Subscribe("client_connection", ...) receives
// the id announcement, Subscribe("broadcast", ...) receives broadcasts.
func (c *Client) Subscribe(tag string, handler Handler) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.handlers[ws.TagPrefix+tag] = handler
}

func (c *Client) Unsubscribe(tag string) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	delete(c.handlers, ws.TagPrefix+tag)
}

// OnBinary registers the handler for binary frames from the server, which
// carry no envelope.
func (c *Client) OnBinary(handler Handler) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onBinary = handler
}

func (c *Client) readLoop() {
	defer func() {
		c.closedMu.Lock()
		c.closed = true
		c.closedMu.Unlock()
		close(c.done)
	}()

	for {
		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()

		if conn == nil {
			return
		}

		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				c.logger.Error("read error", "error", err)
			}

			return
		}

		switch messageType {
		case websocket.TextMessage:
			var env ws.Envelope
			if err := env.UnmarshalFrom(data); err != nil {
				c.logger.Error("failed to decode envelope", "error", err)
				continue
			}

			c.handlerMu.RLock()
			handler, ok := c.handlers[env.Tag]
			c.handlerMu.RUnlock()

			if ok {
				handler([]byte(env.Message))
			}
		case websocket.BinaryMessage:
			c.handlerMu.RLock()
			handler := c.onBinary
			c.handlerMu.RUnlock()

			if handler != nil {
				handler(data)
			}
		}
	}
}

// SendMessage sends a text envelope under the prefixed tag.
func (c *Client) SendMessage(tag, message string) error {
	env := ws.Envelope{Tag: ws.TagPrefix + tag, Message: message}

	data, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	return c.writeMessage(websocket.TextMessage, data)
}

// SendBroadcast asks the server to fan message out to every other client.
func (c *Client) SendBroadcast(message string) error {
	return c.SendMessage("broadcast", message)
}

// SendUpload sends the upload envelope followed by one binary frame, so
// the server dispatches data under the upload tag.
func (c *Client) SendUpload(info string, data []byte) error {
	if err := c.SendMessage("upload", info); err != nil {
		return err
	}

	return c.writeMessage(websocket.BinaryMessage, data)
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.closedMu.RLock()

	if c.closed {
		c.closedMu.RUnlock()
		return ErrConnectionClosed
	}

	c.closedMu.RUnlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return ErrConnectionClosed
	}

	if err := conn.WriteMessage(messageType, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return nil
	}
	c.closed = true
	c.closedMu.Unlock()

	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn != nil {
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing")
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))

		return conn.Close()
	}

	return nil
}

// Done is closed when the read loop exits.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// Reconnect re-dials the server, retrying at the configured interval up
// to the configured number of attempts (0 means unlimited).
func (c *Client) Reconnect(ctx context.Context) error {
	c.closedMu.Lock()
	c.closed = false
	c.done = make(chan struct{})
	c.closedMu.Unlock()

	attempts := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := c.Connect(ctx)
		if err == nil {
			return nil
		}

		attempts++
		if c.cfg.MaxReconnectAttempts > 0 && attempts >= c.cfg.MaxReconnectAttempts {
			return ErrMaxReconnectAttempts
		}

		c.logger.Warn("reconnect failed, retrying", "attempt", attempts, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.ReconnectInterval):
		}
	}
}
