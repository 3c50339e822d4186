package ws

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Mode selects the frame type used by Send.
type Mode string

const (
	ModeText   Mode = "text"
	ModeBinary Mode = "binary"
)

type ServerConfig struct {
	// KeepAliveInterval is the delay between server pings on each
	// connection.
	KeepAliveInterval time.Duration
	ReadBufferSize    int
	Logger            *slog.Logger
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		KeepAliveInterval: 25 * time.Second,
		ReadBufferSize:    4096,
		Logger:            slog.Default(),
	}
}

// Server upgrades incoming HTTP connections to WebSocket, decodes the
// framing and routes application messages between clients by tag. It
// implements http.Handler; the surrounding HTTP/TLS server is supplied
// by the caller.
type Server struct {
	cfg      ServerConfig
	registry *registry
	router   *router
	logger   *slog.Logger
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = 4096
	}

	return &Server{
		cfg:      cfg,
		registry: newRegistry(cfg.Logger),
		router:   newRouter(),
		logger:   cfg.Logger,
	}
}

// Subscribe registers handler for messages carrying the given tag. A
// second registration for the same tag replaces the first.
func (s *Server) Subscribe(tag string, handler Handler) {
	s.router.subscribe(tag, handler)
}

// Unsubscribe removes the handler for tag, if any.
func (s *Server) Unsubscribe(tag string) {
	s.router.unsubscribe(tag)
}

// Send writes one message to a single client. Text mode wraps data in a
// JSON envelope under the prefixed tag; binary mode sends the raw bytes.
// An unknown client id is logged and ignored.
func (s *Server) Send(clientID string, mode Mode, data []byte, tag string) {
	client := s.registry.lookup(clientID)
	if client == nil {
		return
	}

	s.sendTo(client, mode, data, tag)
}

func (s *Server) sendTo(client *Client, mode Mode, data []byte, tag string) {
	var buf []byte

	switch mode {
	case ModeText:
		payload, err := encodeEnvelope(TagPrefix+tag, string(data))
		if err != nil {
			s.logger.Error("failed to encode envelope", "tag", tag, "error", err)
			return
		}

		buf = encodeFrame(OpcodeText, payload)
	case ModeBinary:
		buf = encodeFrame(OpcodeBinary, data)
	default:
		s.logger.Error("unknown send mode", "mode", string(mode))
		return
	}

	if err := client.write(buf); err != nil {
		s.logger.Debug("write dropped", "client_id", client.id, "error", err)
	}
}

// Broadcast sends a text envelope tagged "broadcast" to every registered
// client except excludeClientID (pass "" to reach everyone). The frame is
// encoded once and shared across the whole pass.
func (s *Server) Broadcast(message string, excludeClientID string) {
	payload, err := encodeEnvelope(TagBroadcast, message)
	if err != nil {
		s.logger.Error("failed to encode envelope", "tag", TagBroadcast, "error", err)
		return
	}

	buf := encodeFrame(OpcodeText, payload)

	s.registry.forEach(func(c *Client) {
		if c.id == excludeClientID {
			return
		}

		if err := c.write(buf); err != nil {
			s.logger.Debug("write dropped", "client_id", c.id, "error", err)
		}
	})
}

// ClientCount reports the number of registered clients.
func (s *Server) ClientCount() int {
	return s.registry.len()
}

// ServeHTTP performs the opening handshake and serves the connection
// until the transport disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		s.logger.Error("failed to upgrade connection", "error", ErrNotHijackable)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	conn, brw, err := hijacker.Hijack()
	if err != nil {
		s.logger.Error("failed to hijack connection", "error", err)
		return
	}

	response := handshakeResponse(r.Header.Get("Sec-WebSocket-Key"))
	if _, err := conn.Write([]byte(response)); err != nil {
		s.logger.Error("failed to write handshake response", "error", err)
		conn.Close()

		return
	}

	client := s.registry.register(conn, brw.Reader)
	client.keepalive = startKeepalive(client, s.cfg.KeepAliveInterval, s.logger)

	s.logger.Info("client connected", "client_id", client.id, "remote_addr", conn.RemoteAddr())

	s.sendTo(client, ModeText, []byte(client.id), "client_connection")
	s.Broadcast(fmt.Sprintf("Client %s connected.", client.id), client.id)

	s.serveClient(client)
}

// serveClient feeds transport bytes through the frame decoder until the
// connection ends, then tears the client down. Failures here are scoped
// to this one connection.
func (s *Server) serveClient(client *Client) {
	defer func() {
		s.registry.remove(client.id)
		s.Broadcast(fmt.Sprintf("Client %s disconnected.", client.id), client.id)
		s.logger.Info("client disconnected", "client_id", client.id)
	}()

	buf := make([]byte, s.cfg.ReadBufferSize)

	for {
		n, err := client.reader.Read(buf)
		if n > 0 {
			client.receiveBuffer = append(client.receiveBuffer, buf[:n]...)

			if derr := s.drainFrames(client); derr != nil {
				s.logger.Error("failed to process frames", "client_id", client.id, "error", derr)
				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("read ended", "client_id", client.id, "error", err)
			}

			return
		}
	}
}

// drainFrames consumes every complete frame currently buffered. An
// incomplete trailing frame is left untouched for the next read.
func (s *Server) drainFrames(client *Client) error {
	for {
		f, consumed, err := decodeNext(client.receiveBuffer)
		if err != nil {
			return err
		}

		if consumed == 0 {
			return nil
		}

		client.receiveBuffer = client.receiveBuffer[consumed:]

		switch f.opcode {
		case OpcodeContinuation, OpcodeText, OpcodeBinary:
			// The first frame's opcode is the message type; continuation
			// frames must not overwrite it.
			if client.activeOpcode == opcodeNone {
				client.activeOpcode = f.opcode
			}

			client.fragments = append(client.fragments, f.payload)

			if f.fin {
				opcode := client.activeOpcode
				data := joinFragments(client.fragments)
				client.activeOpcode = opcodeNone
				client.fragments = nil

				if err := s.handleMessage(client, opcode, data); err != nil {
					return err
				}
			}
		case OpcodePong:
			s.logger.Debug("pong received", "client_id", client.id)
		default:
			// Close and ping from the peer are not negotiated; teardown
			// happens on transport disconnect only.
			s.logger.Debug("unhandled frame", "client_id", client.id, "opcode", f.opcode.String())
		}
	}
}

// handleMessage routes one completed message. Text messages carry a JSON
// envelope; binary and continuation messages are dispatched only when a
// prior upload envelope tagged them.
func (s *Server) handleMessage(client *Client, opcode Opcode, data []byte) error {
	switch opcode {
	case OpcodeText:
		env, err := decodeEnvelope(data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
		}

		switch env.Tag {
		case TagBroadcast:
			s.Broadcast(env.Message, client.id)
			s.router.dispatch(client.id, env.Tag, []byte(env.Message))
		case TagUpload:
			client.pendingUploadTag = env.Tag
		default:
			s.router.dispatch(client.id, env.Tag, []byte(env.Message))
		}
	case OpcodeBinary, OpcodeContinuation:
		if client.pendingUploadTag == "" {
			return nil
		}

		tag := client.pendingUploadTag
		client.pendingUploadTag = ""

		s.router.dispatch(client.id, tag, data)
	}

	return nil
}

func joinFragments(fragments [][]byte) []byte {
	total := 0
	for _, f := range fragments {
		total += len(f)
	}

	joined := make([]byte, 0, total)
	for _, f := range fragments {
		joined = append(joined, f...)
	}

	return joined
}
