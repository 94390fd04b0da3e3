package ws

import "sync"

// Registry tracks every live connection and owns the global connected-count.
type Registry struct {
	mu    sync.Mutex
	conns map[*clientConn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[*clientConn]struct{})}
}

// Register adds the connection and emits the updated global count to every
// connection, the new one included.
func (reg *Registry) Register(c *clientConn) {
	reg.mu.Lock()
	reg.conns[c] = struct{}{}
	count := len(reg.conns)
	conns := reg.snapshot()
	reg.mu.Unlock()

	emitClientCount(conns, count)
}

// Unregister removes the connection and emits the updated count. Removing a
// connection that was never registered (or already removed) is a no-op.
func (reg *Registry) Unregister(c *clientConn) {
	reg.mu.Lock()
	if _, ok := reg.conns[c]; !ok {
		reg.mu.Unlock()
		return
	}
	delete(reg.conns, c)
	count := len(reg.conns)
	conns := reg.snapshot()
	reg.mu.Unlock()

	emitClientCount(conns, count)
}

func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.conns)
}

// snapshot must be called with reg.mu held.
func (reg *Registry) snapshot() []*clientConn {
	conns := make([]*clientConn, 0, len(reg.conns))
	for c := range reg.conns {
		conns = append(conns, c)
	}
	return conns
}

func emitClientCount(conns []*clientConn, count int) {
	frame := encodeEnvelope("client_count", count)
	for _, c := range conns {
		c.enqueue(frame)
	}
}
