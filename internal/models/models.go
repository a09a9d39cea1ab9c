package models

import "time"

// User represents a chat participant. Its ID is the ID of the connection it joined on.
type User struct {
	ID       string    `json:"id" msgpack:"id"`
	Username string    `json:"username" msgpack:"username"`
	Avatar   string    `json:"avatar" msgpack:"avatar"`
	JoinedAt time.Time `json:"joinedAt" msgpack:"joinedAt"`
}

type MessageKind string

const (
	MessageKindMessage MessageKind = "message"
	MessageKindSystem  MessageKind = "system"
)

// Message represents a logged chat message. User is a snapshot taken when the
// message was created.
type Message struct {
	ID        int64       `json:"id" msgpack:"id"`
	Text      string      `json:"text" msgpack:"text"`
	HTML      string      `json:"html,omitempty" msgpack:"html,omitempty"`
	User      User        `json:"user" msgpack:"user"`
	Timestamp time.Time   `json:"timestamp" msgpack:"timestamp"`
	Kind      MessageKind `json:"type" msgpack:"type"`
}

// TypingUser is the payload of a user_typing event.
type TypingUser struct {
	User   User `json:"user" msgpack:"user"`
	Typing bool `json:"typing" msgpack:"typing"`
}

// ClientMessage represents a frame sent from the client to the server.
type ClientMessage struct {
	Type     ClientMessageType `json:"type" msgpack:"type"`
	Username string            `json:"username,omitempty" msgpack:"username,omitempty"`
	Avatar   string            `json:"avatar,omitempty" msgpack:"avatar,omitempty"`
	Text     string            `json:"text,omitempty" msgpack:"text,omitempty"`
}

// ServerMessage represents a frame sent to the client. Payload holds one of
// []Message, Message, []User, User or TypingUser depending on Type.
type ServerMessage struct {
	Type    ServerMessageType `json:"type" msgpack:"type"`
	Payload any               `json:"payload" msgpack:"payload"`
}

type ClientMessageType string

const (
	ClientMessageTypeJoin        ClientMessageType = "join"
	ClientMessageTypeSend        ClientMessageType = "send_message"
	ClientMessageTypeTypingStart ClientMessageType = "typing_start"
	ClientMessageTypeTypingStop  ClientMessageType = "typing_stop"
)

type ServerMessageType string

const (
	ServerMessageTypeHistory    ServerMessageType = "message_history"
	ServerMessageTypeNewMessage ServerMessageType = "new_message"
	ServerMessageTypeUsers      ServerMessageType = "users_update"
	ServerMessageTypeUserJoined ServerMessageType = "user_joined"
	ServerMessageTypeUserLeft   ServerMessageType = "user_left"
	ServerMessageTypeTyping     ServerMessageType = "user_typing"
)
