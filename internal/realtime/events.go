package realtime

import (
	"encoding/json"

	"pchat-api/internal/models"
)

// Wire-level event names. Case-sensitive; clients match on these tags.
const (
	EventNewMessage      = "NEW_MESSAGE"
	EventNewMessageAlert = "NEW_MESSAGE_ALERT"
	EventStartTyping     = "START_TYPING"
	EventStopTyping      = "STOP_TYPING"
	EventChatJoined      = "CHAT_JOINED"
	EventChatLeaved      = "CHAT_LEAVED"
	EventOnlineUsers     = "ONLINE_USERS"
)

// Frame is the tagged JSON envelope every websocket message travels in,
// in both directions: {"event": "...", "data": {...}}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewMessageIn is the inbound NEW_MESSAGE payload. Members is the
// caller-supplied chat member list; the core trusts it and does not
// re-validate membership against the durable store.
type NewMessageIn struct {
	ChatID  string   `json:"chatId"`
	Members []string `json:"members"`
	Message string   `json:"message"`
}

// TypingIn is the inbound START_TYPING / STOP_TYPING payload.
type TypingIn struct {
	ChatID  string   `json:"chatId"`
	Members []string `json:"members"`
}

// PresenceIn is the inbound CHAT_JOINED / CHAT_LEAVED payload.
type PresenceIn struct {
	UserID  string   `json:"userId"`
	Members []string `json:"members"`
}

// Envelope is the transient delivery shape of a message. Its ID is
// generated per send and is independent of the durable record's ID;
// the two are never reconciled.
type Envelope struct {
	Content   string             `json:"content"`
	ID        string             `json:"_id"`
	Sender    models.UserSummary `json:"sender"`
	Chat      string             `json:"chat"`
	CreatedAt string             `json:"createdAt"`
}

// NewMessageOut is the outbound NEW_MESSAGE payload.
type NewMessageOut struct {
	ChatID  string   `json:"chatId"`
	Message Envelope `json:"message"`
}

// ChatRef is the outbound payload carrying only a chat id
// (NEW_MESSAGE_ALERT and the typing events).
type ChatRef struct {
	ChatID string `json:"chatId"`
}

// EncodeFrame marshals an event name and payload into a wire frame.
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
