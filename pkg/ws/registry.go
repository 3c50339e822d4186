package ws

import (
	"io"
	"log/slog"
	"net"
	"sync"
)

// registry owns the set of live clients. Iteration follows registration
// order so a broadcast pass visits every live entry exactly once.
type registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	order   []string
	logger  *slog.Logger
}

func newRegistry(logger *slog.Logger) *registry {
	return &registry{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

func (r *registry) register(conn net.Conn, reader io.Reader) *Client {
	c := newClient(conn, reader)

	r.mu.Lock()
	r.clients[c.id] = c
	r.order = append(r.order, c.id)
	r.mu.Unlock()

	return c
}

// lookup resolves a client id. Unknown ids are logged and surface as nil
// so callers degrade to a no-op.
func (r *registry) lookup(id string) *Client {
	r.mu.RLock()
	c, ok := r.clients[id]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("lookup failed", "client_id", id, "error", ErrClientNotFound)
		return nil
	}

	return c
}

// remove closes the client's transport and deletes the entry. Removing an
// absent id is a no-op.
func (r *registry) remove(id string) {
	r.mu.Lock()

	c, ok := r.clients[id]
	if !ok {
		r.mu.Unlock()
		return
	}

	delete(r.clients, id)

	for i, key := range r.order {
		if key == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.mu.Unlock()

	c.close()
}

// forEach calls fn for every live client in registration order. The pass
// runs against a snapshot so fn may send without holding the lock.
func (r *registry) forEach(fn func(*Client)) {
	r.mu.RLock()

	snapshot := make([]*Client, 0, len(r.order))
	for _, id := range r.order {
		snapshot = append(snapshot, r.clients[id])
	}

	r.mu.RUnlock()

	for _, c := range snapshot {
		fn(c)
	}
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}
