package services

import (
	"context"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
)

// IRelayService is the surface the transport layer talks to.
type IRelayService interface {
	Connect(connectionID string, sink contract.EventSink)
	Disconnect(ctx context.Context, connectionID string) error
	Login(ctx context.Context, cmd domain.LoginCommand) error
	PostMessage(ctx context.Context, cmd domain.PostMessageCommand) error
	SetTyping(ctx context.Context, cmd domain.TypingCommand) error
	React(ctx context.Context, cmd domain.ReactionCommand) error
}

// RelayService forwards transport calls to the orchestrator's command
// pipeline. It holds no state of its own.
type RelayService struct {
	orchestrator *runtime.Orchestrator
}

func NewRelayService(orchestrator *runtime.Orchestrator) *RelayService {
	return &RelayService{orchestrator: orchestrator}
}

func (s *RelayService) Connect(connectionID string, sink contract.EventSink) {
	s.orchestrator.Connect(connectionID, sink)
}

// Disconnect enqueues the terminal command for the connection. It must be the
// last call made for a given connection id.
func (s *RelayService) Disconnect(ctx context.Context, connectionID string) error {
	return s.orchestrator.Dispatch(ctx, domain.DisconnectCommand{Connection: connectionID})
}

func (s *RelayService) Login(ctx context.Context, cmd domain.LoginCommand) error {
	return s.orchestrator.Dispatch(ctx, cmd)
}

func (s *RelayService) PostMessage(ctx context.Context, cmd domain.PostMessageCommand) error {
	return s.orchestrator.Dispatch(ctx, cmd)
}

func (s *RelayService) SetTyping(ctx context.Context, cmd domain.TypingCommand) error {
	return s.orchestrator.Dispatch(ctx, cmd)
}

func (s *RelayService) React(ctx context.Context, cmd domain.ReactionCommand) error {
	return s.orchestrator.Dispatch(ctx, cmd)
}
