package websocket

import (
	"context"

	"chat-relay/domain/event"
	"chat-relay/errors"
)

// Sink bridges the fan-out worker to one connection's write pump.
type Sink struct {
	Events chan event.DomainEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by fan-out. It hands the event to the write pump through
// the buffered channel and never blocks: a full buffer means the connection
// is too slow to keep up and the event is dropped for it alone.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSlowConnection
	}
}
