package realtime

import (
	"sync"
)

// Registry maps user IDs to their single active connection. A user has
// at most one entry: binding again for the same user replaces the
// previous connection (last handshake wins), and Bind hands the
// displaced connection back so the caller can invalidate it explicitly.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]Conn),
	}
}

// Bind records conn as the active connection for userID, overwriting
// any previous mapping. It returns the displaced connection, or nil if
// the user had none (or was already bound to this same conn).
func (r *Registry) Bind(userID string, conn Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conns[userID]
	r.conns[userID] = conn
	if prev == conn {
		return nil
	}
	return prev
}

// Resolve looks up the active connection for userID. Absence is a
// normal outcome meaning the user is not currently connected.
func (r *Registry) Resolve(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// Unbind removes the mapping for userID, but only if it still points at
// conn: a disconnect of a connection that was already displaced by a
// newer handshake must not evict the replacement. Returns whether the
// mapping was removed. Unbinding an absent user is a no-op.
func (r *Registry) Unbind(userID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.conns[userID]
	if !ok || current != conn {
		return false
	}
	delete(r.conns, userID)
	return true
}

// ResolveAll maps member IDs to their live connections, preserving
// input order. Members with no live connection are silently dropped;
// the result is never deduplicated beyond the one-conn-per-user
// invariant the registry already maintains.
func (r *Registry) ResolveAll(memberIDs []string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resolved := make([]Conn, 0, len(memberIDs))
	for _, id := range memberIDs {
		if conn, ok := r.conns[id]; ok {
			resolved = append(resolved, conn)
		}
	}
	return resolved
}

// Conns returns every currently bound connection, used for the global
// presence broadcast on disconnect.
func (r *Registry) Conns() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		all = append(all, conn)
	}
	return all
}

// Len returns the number of bound users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
