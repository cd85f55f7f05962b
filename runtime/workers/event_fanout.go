package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/observability"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout drains the deliveries channel and pushes each event to the
// sinks its scope resolves to.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries. Sinks never block (they drop when their buffer is
// full), so the loop stays sequential: per-connection order equals emission
// order, and a slow connection only loses its own events.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	deliveries  <-chan event.Delivery
	sinkTimeout time.Duration
	monitor     *observability.Monitor
}

func NewEventFanout(
	log *slog.Logger,
	registry contract.IRegistry,
	deliveries <-chan event.Delivery,
	sinkTimeout time.Duration,
	monitor *observability.Monitor) *EventFanout {
	return &EventFanout{
		log:         log,
		registry:    registry,
		deliveries:  deliveries,
		sinkTimeout: sinkTimeout,
		monitor:     monitor,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fan-out")
			return ctx.Err()
		case d, ok := <-w.deliveries:
			if !ok {
				return nil
			}
			w.Fanout(ctx, d)
		}
	}
}

// Fanout sends one delivery to every targeted sink. A failing sink is logged
// and counted, never retried, and never aborts delivery to the others.
func (w *EventFanout) Fanout(ctx context.Context, d event.Delivery) {
	for _, sink := range w.targets(d) {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		err := sink.Consume(sinkCtx, d.Event)
		cancel()
		if err != nil {
			w.monitor.IncrEventsDropped()
			w.log.Warn("Sink dropped event",
				"event", d.Event.EventName(), "error", err)
		}
	}
}

func (w *EventFanout) targets(d event.Delivery) []contract.EventSink {
	switch d.Scope {
	case event.ScopeBroadcast:
		return w.registry.Sinks()
	case event.ScopeExceptSender:
		return w.registry.SinksExcept(d.Connection)
	case event.ScopeUnicast:
		sink, ok := w.registry.Sink(d.Connection)
		if !ok {
			// The target disconnected before delivery. Nothing to do.
			return nil
		}
		return []contract.EventSink{sink}
	default:
		return nil
	}
}
