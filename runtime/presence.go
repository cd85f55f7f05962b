package runtime

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain/event"
)

// Broadcaster publishes the participant list to every open connection.
// One snapshot, one delivery: it is invoked by the relay coordinator exactly
// once per registry mutation (login or disconnect), never per message, which
// keeps broadcast volume proportional to participant churn.
type Broadcaster struct {
	log        *slog.Logger
	registry   contract.IRegistry
	deliveries chan<- event.Delivery
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry, deliveries chan<- event.Delivery) *Broadcaster {
	return &Broadcaster{log: log, registry: registry, deliveries: deliveries}
}

func (b *Broadcaster) Publish(ctx context.Context) error {
	users := b.registry.SnapshotAll()
	select {
	case b.deliveries <- event.Broadcast(event.UsersUpdated{Participants: users}):
		b.log.Debug("Presence published", "participants", len(users))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
