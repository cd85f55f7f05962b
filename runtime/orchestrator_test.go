package runtime_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type chanSink struct {
	events chan event.DomainEvent
}

func newChanSink() *chanSink {
	return &chanSink{events: make(chan event.DomainEvent, 16)}
}

func (s *chanSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.events <- e
	return nil
}

func (s *chanSink) next(t *testing.T) event.DomainEvent {
	t.Helper()
	select {
	case e := <-s.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return nil
	}
}

func TestOrchestratorEndToEndPipeline(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a running orchestrator with the embedded wordlists
	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	orchestrator := runtime.NewOrchestrator(
		log, supervisor, runtime.NewRegistry(), observability.NewMonitor(log),
		100, 16, time.Second, '*')

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req.NoError(orchestrator.Start(ctx))
	defer orchestrator.Stop()

	// When a connection opens and logs in
	sink := newChanSink()
	orchestrator.Connect("conn-1", sink)
	req.NoError(orchestrator.Dispatch(ctx, domain.LoginCommand{
		Connection: "conn-1", Username: "alice", Status: domain.StatusOnline,
	}))

	// Then it receives the presence list and the history replay, in order
	users, ok := sink.next(t).(event.UsersUpdated)
	req.True(ok)
	req.Len(users.Participants, 1)
	req.Equal("alice", users.Participants[0].Username)

	history, ok := sink.next(t).(event.MessageHistory)
	req.True(ok)
	req.Empty(history.Messages)

	// And a posted message with a censored word comes back cleaned
	req.NoError(orchestrator.Dispatch(ctx, domain.PostMessageCommand{
		Connection: "conn-1", Content: "damn it",
	}))
	posted, ok := sink.next(t).(event.MessagePosted)
	req.True(ok)
	req.Equal("**** it", posted.Message.Content)
}

func TestOrchestratorDispatchHonorsCanceledContext(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given an orchestrator that was never started, with no channel capacity
	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	orchestrator := runtime.NewOrchestrator(
		log, supervisor, runtime.NewRegistry(), observability.NewMonitor(log),
		100, 0, time.Second, '*')

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := orchestrator.Dispatch(ctx, domain.DisconnectCommand{Connection: "conn-1"})
	req.ErrorIs(err, context.Canceled)
}
