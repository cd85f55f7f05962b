package runtime_test

import (
	"context"
	"testing"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/runtime"

	"github.com/stretchr/testify/require"
)

type nopSink struct{ id string }

func (s *nopSink) Consume(context.Context, event.DomainEvent) error { return nil }

func TestRegistryLoginLifecycle(t *testing.T) {
	req := require.New(t)

	// Given a freshly subscribed connection
	registry := runtime.NewRegistry()
	registry.Subscribe("conn-1", &nopSink{id: "1"})

	// Then it counts as open but not logged in
	connections, participants := registry.Counts()
	req.Equal(1, connections)
	req.Equal(0, participants)
	_, ok := registry.Lookup("conn-1")
	req.False(ok)

	// When a participant registers on it
	p, ok := registry.Register("conn-1", domain.Participant{ID: "conn-1", Username: "alice"})
	req.True(ok)
	req.Equal("alice", p.Username)

	// Then lookup and presence see it
	got, ok := registry.Lookup("conn-1")
	req.True(ok)
	req.Equal("alice", got.Username)
	req.Equal([]domain.Participant{p}, registry.SnapshotAll())
}

func TestRegistryRegisterOnUnknownConnection(t *testing.T) {
	req := require.New(t)

	registry := runtime.NewRegistry()

	// A login racing a disconnect lands on a closed connection
	_, ok := registry.Register("ghost", domain.Participant{Username: "ghost"})
	req.False(ok)
	req.Empty(registry.SnapshotAll())
}

func TestRegistrySnapshotKeepsLoginOrder(t *testing.T) {
	req := require.New(t)

	registry := runtime.NewRegistry()
	for _, id := range []string{"c", "a", "b"} {
		registry.Subscribe(id, &nopSink{id: id})
		_, ok := registry.Register(id, domain.Participant{ID: id, Username: "user-" + id})
		req.True(ok)
	}

	snapshot := registry.SnapshotAll()
	req.Len(snapshot, 3)
	req.Equal("c", snapshot[0].ID)
	req.Equal("a", snapshot[1].ID)
	req.Equal("b", snapshot[2].ID)
}

func TestRegistryReLoginReplacesInPlace(t *testing.T) {
	req := require.New(t)

	// Given two logged-in connections
	registry := runtime.NewRegistry()
	registry.Subscribe("conn-1", &nopSink{})
	registry.Subscribe("conn-2", &nopSink{})
	registry.Register("conn-1", domain.Participant{ID: "conn-1", Username: "alice"})
	registry.Register("conn-2", domain.Participant{ID: "conn-2", Username: "bob"})

	// When the first re-logs with a new identity
	_, ok := registry.Register("conn-1", domain.Participant{ID: "conn-1", Username: "alicia", Status: domain.StatusBusy})
	req.True(ok)

	// Then the new identity keeps its original slot in the order
	snapshot := registry.SnapshotAll()
	req.Len(snapshot, 2)
	req.Equal("alicia", snapshot[0].Username)
	req.Equal(domain.StatusBusy, snapshot[0].Status)
	req.Equal("bob", snapshot[1].Username)
}

func TestRegistryUnregisterKeepsConnectionOpen(t *testing.T) {
	req := require.New(t)

	registry := runtime.NewRegistry()
	registry.Subscribe("conn-1", &nopSink{})
	registry.Register("conn-1", domain.Participant{ID: "conn-1", Username: "alice"})

	// When unregistering
	p, ok := registry.Unregister("conn-1")
	req.True(ok)
	req.Equal("alice", p.Username)

	// Then presence is empty but the sink is still reachable
	req.Empty(registry.SnapshotAll())
	_, ok = registry.Sink("conn-1")
	req.True(ok)

	// And a second unregister reports nothing to remove
	_, ok = registry.Unregister("conn-1")
	req.False(ok)
}

func TestRegistryUnsubscribeDropsEverything(t *testing.T) {
	req := require.New(t)

	registry := runtime.NewRegistry()
	registry.Subscribe("conn-1", &nopSink{})
	registry.Register("conn-1", domain.Participant{ID: "conn-1", Username: "alice"})

	registry.Unsubscribe("conn-1")

	req.Empty(registry.SnapshotAll())
	_, ok := registry.Sink("conn-1")
	req.False(ok)
	connections, participants := registry.Counts()
	req.Zero(connections)
	req.Zero(participants)
}

func TestRegistrySinksExcept(t *testing.T) {
	req := require.New(t)

	registry := runtime.NewRegistry()
	registry.Subscribe("conn-1", &nopSink{id: "1"})
	registry.Subscribe("conn-2", &nopSink{id: "2"})
	registry.Subscribe("conn-3", &nopSink{id: "3"})

	// Every open connection is a target, logged in or not
	req.Len(registry.Sinks(), 3)

	// Except-sender skips exactly one
	others := registry.SinksExcept("conn-2")
	req.Len(others, 2)
	for _, sink := range others {
		req.NotEqual("2", sink.(*nopSink).id)
	}
}
