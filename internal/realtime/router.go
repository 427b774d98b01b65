package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"pchat-api/internal/models"

	"github.com/google/uuid"
)

// StoredMessage is the durable-store projection of a chat message,
// handed to the persistence bridge. It deliberately carries less than
// the real-time envelope: ids and timestamps are the store's concern.
type StoredMessage struct {
	Content  string
	SenderID string
	ChatID   string
}

// MessageStore is the persistence bridge. SaveMessage is invoked
// asynchronously relative to the fan-out path; delivery never waits on
// it and its failure never retracts an already-emitted envelope.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg StoredMessage) error
}

// Router owns the registry and presence set and dispatches inbound
// realtime events to their handlers. One Router serves the whole
// process; per-connection read loops call into it concurrently.
type Router struct {
	registry *Registry
	presence *Presence
	store    MessageStore

	// indirections for deterministic tests
	newID func() string
	now   func() time.Time
}

// NewRouter wires a Router around a fresh registry and presence set.
func NewRouter(store MessageStore) *Router {
	return &Router{
		registry: NewRegistry(),
		presence: NewPresence(),
		store:    store,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Registry exposes the connection registry.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Presence exposes the presence set.
func (r *Router) Presence() *Presence {
	return r.presence
}

// Connect binds a freshly authenticated connection to its user. Last
// handshake wins: a previous connection for the same user is displaced
// and explicitly closed so one identity never has two deliverable
// connections.
func (r *Router) Connect(user User, conn Conn) {
	if displaced := r.registry.Bind(user.ID, conn); displaced != nil {
		log.Printf("realtime: user %s rebound, closing displaced connection", user.ID)
		displaced.Close()
	}
}

// Disconnect runs cleanup for a closed connection: unbind, clear
// presence, and broadcast the updated online set to every bound
// connection. A stale disconnect from an already-displaced connection
// does nothing; the replacement binding stays intact.
func (r *Router) Disconnect(user User, conn Conn) {
	if !r.registry.Unbind(user.ID, conn) {
		return
	}
	r.presence.MarkOffline(user.ID)
	r.emit(r.registry.Conns(), EventOnlineUsers, r.presence.Snapshot())
}

// Dispatch routes one inbound frame from a bound connection. Events
// from a connection with no bound identity are dropped: there is no
// identity to address a response to.
func (r *Router) Dispatch(user User, conn Conn, frame Frame) {
	if user.ID == "" {
		return
	}

	switch frame.Event {
	case EventNewMessage:
		var p NewMessageIn
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			log.Printf("realtime: bad %s payload from %s: %v", frame.Event, user.ID, err)
			return
		}
		r.handleNewMessage(user, p)

	case EventStartTyping, EventStopTyping:
		var p TypingIn
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			log.Printf("realtime: bad %s payload from %s: %v", frame.Event, user.ID, err)
			return
		}
		r.handleTyping(frame.Event, conn, p)

	case EventChatJoined:
		var p PresenceIn
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			log.Printf("realtime: bad %s payload from %s: %v", frame.Event, user.ID, err)
			return
		}
		r.presence.MarkOnline(p.UserID)
		r.emit(r.registry.ResolveAll(p.Members), EventOnlineUsers, r.presence.Snapshot())

	case EventChatLeaved:
		var p PresenceIn
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			log.Printf("realtime: bad %s payload from %s: %v", frame.Event, user.ID, err)
			return
		}
		r.presence.MarkOffline(p.UserID)
		r.emit(r.registry.ResolveAll(p.Members), EventOnlineUsers, r.presence.Snapshot())

	default:
		log.Printf("realtime: unknown event %q from %s", frame.Event, user.ID)
	}
}

// handleNewMessage fans the message out to the reachable members, then
// signals the lightweight unread-count alert, then hands the record to
// the persistence bridge. Delivery and persistence are not ordered
// relative to each other.
func (r *Router) handleNewMessage(user User, p NewMessageIn) {
	envelope := Envelope{
		Content:   p.Message,
		ID:        r.newID(),
		Sender:    models.UserSummary{ID: user.ID, Name: user.Name},
		Chat:      p.ChatID,
		CreatedAt: r.now().UTC().Format(time.RFC3339),
	}

	targets := r.registry.ResolveAll(p.Members)
	r.emit(targets, EventNewMessage, NewMessageOut{ChatID: p.ChatID, Message: envelope})
	r.emit(targets, EventNewMessageAlert, ChatRef{ChatID: p.ChatID})

	go r.persist(StoredMessage{
		Content:  p.Message,
		SenderID: user.ID,
		ChatID:   p.ChatID,
	})
}

// handleTyping relays a typing indicator to every resolved member
// except the sender's own connection; an indicator must never echo
// back to its originator.
func (r *Router) handleTyping(event string, sender Conn, p TypingIn) {
	targets := r.registry.ResolveAll(p.Members)
	filtered := targets[:0]
	for _, c := range targets {
		if c != sender {
			filtered = append(filtered, c)
		}
	}
	r.emit(filtered, event, ChatRef{ChatID: p.ChatID})
}

// persist runs the durable write. Failures are reported server-side
// and go no further: recipients already have the message, and a store
// error must not reach the connection's dispatch loop.
func (r *Router) persist(msg StoredMessage) {
	if err := r.store.SaveMessage(context.Background(), msg); err != nil {
		log.Printf("realtime: persist message failed (chat=%s sender=%s): %v", msg.ChatID, msg.SenderID, err)
	}
}

func (r *Router) emit(conns []Conn, event string, data any) {
	payload, err := EncodeFrame(event, data)
	if err != nil {
		log.Printf("realtime: encode %s failed: %v", event, err)
		return
	}
	for _, c := range conns {
		if ok := c.Send(payload); !ok {
			// write failed; the connection's own loop cleans it up
		}
	}
}
