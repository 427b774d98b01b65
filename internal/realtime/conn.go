package realtime

// Conn is the handle used to deliver payloads to one live client
// connection. We keep it minimal here; the actual network conn is
// managed in the ws handler.
type Conn interface {
	// Send writes a payload to the connection and reports whether the
	// write succeeded. A false return means the connection is no longer
	// usable; its read loop will clean it up on its side.
	Send(payload []byte) bool

	// Close tears the connection down.
	Close()
}

// User is the identity bound to a connection at handshake time. The
// binding is set once and never changes for that connection's lifetime.
type User struct {
	ID   string
	Name string
}
