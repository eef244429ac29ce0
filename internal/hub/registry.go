package hub

import (
	"sync"

	"roomcast/pkg/interfaces"
)

// Registry tracks live connections by connection id. It knows nothing about
// users or rooms; that state lives in the session and room packages.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]interfaces.Connection
}

func NewRegistry() *Registry {
	return &Registry{connections: make(map[string]interfaces.Connection)}
}

func (r *Registry) Register(conn interfaces.Connection) error {
	if conn == nil {
		return ErrNilConnection
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[conn.ID()] = conn
	return nil
}

// Unregister removes the connection only if it is still the one registered
// under its id, so a stale connection cannot evict its replacement. Safe to
// call more than once.
func (r *Registry) Unregister(conn interfaces.Connection) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.connections[conn.ID()]; ok && current == conn {
		delete(r.connections, conn.ID())
	}
}

func (r *Registry) Get(connID string) (interfaces.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[connID]
	return conn, ok
}

// All returns every live connection.
func (r *Registry) All() []interfaces.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]interfaces.Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		conns = append(conns, conn)
	}
	return conns
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.connections)
}
