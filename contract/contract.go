//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives the deliveries addressed to one connection.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the single source of truth for open connections and the
// participants logged in on them. Only the relay coordinator mutates the
// participant side; the fan-out worker and the stats endpoint read it.
type IRegistry interface {
	Subscribe(connectionID string, sink EventSink)
	Unsubscribe(connectionID string)
	Register(connectionID string, p domain.Participant) (domain.Participant, bool)
	Unregister(connectionID string) (domain.Participant, bool)
	Lookup(connectionID string) (domain.Participant, bool)
	SnapshotAll() []domain.Participant
	Sinks() []EventSink
	SinksExcept(connectionID string) []EventSink
	Sink(connectionID string) (EventSink, bool)
}

// IPresence emits the current participant list to every open connection.
// Called by the relay coordinator exactly once per registry mutation.
type IPresence interface {
	Publish(ctx context.Context) error
}
