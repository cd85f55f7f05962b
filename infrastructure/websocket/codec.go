package websocket

import (
	"fmt"

	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/protocol"
)

// toEnvelope converts a domain event into its wire envelope.
func toEnvelope(e event.DomainEvent) (*protocol.Envelope, error) {
	switch evt := e.(type) {
	case event.UsersUpdated:
		return protocol.NewEnvelope(protocol.TypeUsers, toUsers(evt.Participants))
	case event.MessageHistory:
		messages := lo.Map(evt.Messages, func(m domain.Message, _ int) protocol.Message {
			return toMessage(m)
		})
		return protocol.NewEnvelope(protocol.TypeMessageHistory, messages)
	case event.MessagePosted:
		return protocol.NewEnvelope(protocol.TypeNewMessage, toMessage(evt.Message))
	case event.UserTyping:
		return protocol.NewEnvelope(protocol.TypeUserTyping, protocol.UserTypingPayload{
			User:     toUser(evt.User),
			IsTyping: evt.IsTyping,
		})
	case event.MessageReacted:
		return protocol.NewEnvelope(protocol.TypeMessageReaction, protocol.MessageReactionPayload{
			MessageID: evt.MessageID,
			Reaction:  toReaction(evt.Reaction),
		})
	default:
		return nil, fmt.Errorf("%w: %T", errors.ErrUnknownEvent, e)
	}
}

func toUsers(participants []domain.Participant) []protocol.User {
	return lo.Map(participants, func(p domain.Participant, _ int) protocol.User {
		return toUser(p)
	})
}

func toUser(p domain.Participant) protocol.User {
	return protocol.User{
		ID:       p.ID,
		Username: p.Username,
		Avatar:   p.Avatar,
		Status:   string(p.Status),
	}
}

func toMessage(m domain.Message) protocol.Message {
	return protocol.Message{
		ID:        m.ID,
		Sender:    toUser(m.Sender),
		Content:   m.Content,
		Timestamp: m.CreatedAt,
		Reactions: lo.Map(m.Reactions, func(r domain.Reaction, _ int) protocol.Reaction {
			return toReaction(r)
		}),
	}
}

func toReaction(r domain.Reaction) protocol.Reaction {
	return protocol.Reaction{
		User:      toUser(r.User),
		Type:      r.Type,
		Timestamp: r.At,
	}
}
