// Package realtime tracks which authenticated users currently hold a live
// connection, so the messaging gateway can route pushes to them.
package realtime

import "sync"

// Conn is the transport handle the registry tracks. Implementations must be
// safe for concurrent writes.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Registry maps a user id to their single live connection. A reconnect for
// the same user replaces the previous entry; the stale connection's eventual
// close must not evict its replacement, which is why removal compares
// connection identity rather than user id.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Conn
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Conn)}
}

// Register installs conn as the live connection for userID, replacing any
// prior entry. Last registration wins.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[userID] = conn
}

// Lookup returns the current live connection for userID. A miss just means
// the user is not reachable live right now.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.clients[userID]
	return conn, ok
}

// Unregister removes the entry holding exactly this connection, if any. An
// entry already superseded by a newer connection for the same user is left
// alone.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, c := range r.clients {
		if c == conn {
			delete(r.clients, userID)
			return
		}
	}
}

// Len reports how many users are currently reachable live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
