package ws

import "sync"

// Handler receives dispatched application messages. For text messages the
// payload is the envelope's message string; for upload follow-ups it is
// the raw frame bytes.
type Handler func(clientID string, payload []byte)

// router maps wire tags to handlers. Registering a tag twice replaces the
// earlier handler.
type router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func newRouter() *router {
	return &router{
		handlers: make(map[string]Handler),
	}
}

func (r *router) subscribe(tag string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[TagPrefix+tag] = handler
}

func (r *router) unsubscribe(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, TagPrefix+tag)
}

// dispatch invokes the handler registered for the exact wire tag. Messages
// without a matching handler are dropped silently.
func (r *router) dispatch(clientID, tag string, payload []byte) {
	r.mu.RLock()
	handler, ok := r.handlers[tag]
	r.mu.RUnlock()

	if !ok {
		return
	}

	handler(clientID, payload)
}
