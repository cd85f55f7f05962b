// Package domain contains core concepts of the relay.
// This file defines Message events and reaction attachments.
// Messages are immutable once posted, except for reaction appends.
package domain

import "time"

// Message represents a relayed chat message.
// Sender is a snapshot taken when the message was posted.
type Message struct {
	ID        string
	Sender    Participant
	Content   string
	CreatedAt time.Time
	Reactions []Reaction
}

// Reaction is an emoji attached to an existing message.
// User is a snapshot of the reacting participant.
type Reaction struct {
	User Participant
	Type string
	At   time.Time
}
