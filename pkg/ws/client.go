package ws

import (
	"encoding/hex"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
)

// Client is the per-connection record. Its decode state (receiveBuffer,
// activeOpcode, fragments, pendingUploadTag) is owned exclusively by the
// goroutine serving the connection; only writes go through the mutex.
type Client struct {
	id     string
	conn   net.Conn
	reader io.Reader

	receiveBuffer    []byte
	activeOpcode     Opcode
	fragments        [][]byte
	pendingUploadTag string

	keepalive *keepalive

	writeMu sync.Mutex
	closed  bool
}

func newClient(conn net.Conn, reader io.Reader) *Client {
	if reader == nil {
		reader = conn
	}

	id := uuid.New()

	return &Client{
		id:           hex.EncodeToString(id[:]),
		conn:         conn,
		reader:       reader,
		activeOpcode: opcodeNone,
	}
}

// ID returns the registry key of this client: 128 random bits rendered
// as lowercase hex.
func (c *Client) ID() string {
	return c.id
}

// write sends one encoded frame to the transport. Writes after close are
// dropped with ErrConnectionClosed.
func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	_, err := c.conn.Write(data)

	return err
}

// close releases the keepalive timer and the transport. Idempotent.
func (c *Client) close() {
	c.writeMu.Lock()

	if c.closed {
		c.writeMu.Unlock()
		return
	}

	c.closed = true
	c.writeMu.Unlock()

	if c.keepalive != nil {
		c.keepalive.Stop()
	}

	c.conn.Close()
}
