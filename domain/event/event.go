// Package event defines the outbound events the relay pushes to connections.
package event

import "chat-relay/domain"

// DomainEvent is anything the relay fans out to connected clients.
type DomainEvent interface {
	EventName() string
}

// UsersUpdated carries the full participant list after a registry change.
type UsersUpdated struct {
	Participants []domain.Participant
}

func (UsersUpdated) EventName() string { return "users" }

// MessageHistory carries the current log, sent once to a newly logged-in
// connection.
type MessageHistory struct {
	Messages []domain.Message
}

func (MessageHistory) EventName() string { return "message_history" }

// MessagePosted carries a freshly appended message.
type MessagePosted struct {
	Message domain.Message
}

func (MessagePosted) EventName() string { return "new_message" }

// UserTyping signals a typing state change of another participant.
type UserTyping struct {
	User     domain.Participant
	IsTyping bool
}

func (UserTyping) EventName() string { return "user_typing" }

// MessageReacted carries a reaction freshly attached to a message.
type MessageReacted struct {
	MessageID string
	Reaction  domain.Reaction
}

func (MessageReacted) EventName() string { return "message_reaction" }
