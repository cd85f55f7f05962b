// Package protocol defines the JSON frames exchanged over the websocket.
// Every frame is an Envelope carrying an event type and a payload; event
// names follow the original client contract.
package protocol

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of frame inside an envelope.
type EventType string

const (
	// Client -> Server
	TypeLogin    EventType = "login"
	TypeMessage  EventType = "message"
	TypeTyping   EventType = "typing"
	TypeReaction EventType = "reaction"

	// Server -> Client
	TypeUsers           EventType = "users"
	TypeMessageHistory  EventType = "message_history"
	TypeNewMessage      EventType = "new_message"
	TypeUserTyping      EventType = "user_typing"
	TypeMessageReaction EventType = "message_reaction"
)

// Envelope wraps every websocket frame with a type field.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// LoginPayload announces the connecting participant's identity.
type LoginPayload struct {
	Username string `json:"username" validate:"required,max=32"`
	Avatar   string `json:"avatar" validate:"max=256"`
	Status   string `json:"status" validate:"required,oneof=online offline busy"`
}

// MessagePayload posts a text message.
type MessagePayload struct {
	Content string `json:"content"`
}

// TypingPayload signals the sender started or stopped typing.
type TypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

// ReactionPayload attaches an emoji to an existing message.
type ReactionPayload struct {
	MessageID    string `json:"messageId"`
	ReactionType string `json:"reactionType"`
}

// User is the wire form of a participant snapshot.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
}

// Reaction is the wire form of a reaction attachment.
type Reaction struct {
	User      User      `json:"user"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is the wire form of a relayed message.
type Message struct {
	ID        string     `json:"id"`
	Sender    User       `json:"sender"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	Reactions []Reaction `json:"reactions"`
}

// UserTypingPayload is broadcast to everyone but the typist.
type UserTypingPayload struct {
	User     User `json:"user"`
	IsTyping bool `json:"isTyping"`
}

// MessageReactionPayload is broadcast after a successful reaction attach.
type MessageReactionPayload struct {
	MessageID string   `json:"messageId"`
	Reaction  Reaction `json:"reaction"`
}

// NewEnvelope creates an envelope with the given type and payload.
func NewEnvelope(eventType EventType, data any) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Envelope{Type: eventType, Data: raw}, nil
}

// ParseEnvelope parses a raw frame into an envelope.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
