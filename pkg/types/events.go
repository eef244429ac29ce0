package types

import "encoding/json"

// Inbound event types. Disconnect has no wire form, it is raised by the
// transport when a connection drops.
const (
	EventJoin            = "join"
	EventJoinRoom        = "join_room"
	EventSendMessage     = "send_message"
	EventMessageRead     = "message_read"
	EventMessageReaction = "message_reaction"
	EventPrivateMessage  = "private_message"
	EventTyping          = "typing"
)

// Outbound event types.
const (
	EventSystemMessage  = "system_message"
	EventSystemError    = "system_error"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventUserList       = "user_list"
	EventRoomList       = "room_list"
	EventRoomHistory    = "room_history"
	EventReceiveMessage = "receive_message"
	EventMessageUpdated = "message_updated"
	EventTypingUsers    = "typing_users"
)

// Envelope frames every outbound event.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Inbound is the wire form of a client event. Payload decoding is deferred
// until the dispatcher knows the type.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JoinPayload announces a display name for the connection.
type JoinPayload struct {
	Username string `json:"username"`
}

// JoinRoomPayload moves the session into a room.
type JoinRoomPayload struct {
	Room string `json:"room"`
}

// SendMessagePayload posts a message to a room. FileURL is an opaque string
// produced by the upload endpoint; the coordinator stores it verbatim.
type SendMessagePayload struct {
	Message string `json:"message"`
	Room    string `json:"room"`
	FileURL string `json:"fileUrl,omitempty"`
}

// MessageReadPayload marks a room message as read by the sender's session.
type MessageReadPayload struct {
	MessageID int64  `json:"messageId"`
	Room      string `json:"room"`
}

// MessageReactionPayload applies a reaction symbol to a room message.
type MessageReactionPayload struct {
	MessageID int64  `json:"messageId"`
	Reaction  string `json:"reaction"`
	Room      string `json:"room"`
}

// PrivateMessagePayload addresses another session by connection id.
type PrivateMessagePayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// TypingPayload toggles the session's typing mark in a room.
type TypingPayload struct {
	IsTyping bool   `json:"isTyping"`
	Room     string `json:"room"`
}

// UserEvent is the user_joined / user_left payload.
type UserEvent struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// RoomHistory is the join_room reply: the trailing message window of the
// room, oldest first.
type RoomHistory struct {
	Room     string     `json:"room"`
	Messages []*Message `json:"messages"`
}
