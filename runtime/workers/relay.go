package workers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/moderation"
	"chat-relay/observability"
)

// Ensure *RelayWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*RelayWorker)(nil)

// RelayWorker is the relay coordinator: a single goroutine draining the
// command channel, which makes it the single writer over the registry, the
// history, and the typing tracker. Two concurrent logins or a login racing a
// disconnect are serialized here; fan-out happens afterwards on already
// committed state.
//
// Out-of-state commands (message before login, reaction to an evicted id) are
// dropped without any reply to the client. Availability over strictness: a
// client never receives a protocol error from this worker.
type RelayWorker struct {
	log        *slog.Logger
	registry   contract.IRegistry
	history    *domain.History
	typing     *domain.TypingTracker
	presence   contract.IPresence
	moderator  *moderation.Moderator
	monitor    *observability.Monitor
	commands   <-chan domain.Command
	deliveries chan<- event.Delivery
	lastID     int64
}

func NewRelayWorker(
	log *slog.Logger,
	registry contract.IRegistry,
	history *domain.History,
	typing *domain.TypingTracker,
	presence contract.IPresence,
	moderator *moderation.Moderator,
	monitor *observability.Monitor,
	commands <-chan domain.Command,
	deliveries chan<- event.Delivery) *RelayWorker {
	return &RelayWorker{
		log:        log,
		registry:   registry,
		history:    history,
		typing:     typing,
		presence:   presence,
		moderator:  moderator,
		monitor:    monitor,
		commands:   commands,
		deliveries: deliveries,
	}
}

func (w *RelayWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Command channel closed")
				return nil
			}
			if err := w.handle(ctx, cmd); err != nil {
				return err
			}
		}
	}
}

func (w *RelayWorker) handle(ctx context.Context, cmd domain.Command) error {
	switch c := cmd.(type) {
	case domain.LoginCommand:
		return w.handleLogin(ctx, c)
	case domain.PostMessageCommand:
		return w.handleMessage(ctx, c)
	case domain.TypingCommand:
		return w.handleTyping(ctx, c)
	case domain.ReactionCommand:
		return w.handleReaction(ctx, c)
	case domain.DisconnectCommand:
		return w.handleDisconnect(ctx, c)
	default:
		w.log.Warn("Unknown command dropped", "connection", cmd.ConnectionID())
		return nil
	}
}

// handleLogin binds the announced identity to the connection, publishes the
// updated participant list to everyone, and replays the current history to
// the newcomer only.
func (w *RelayWorker) handleLogin(ctx context.Context, cmd domain.LoginCommand) error {
	p := domain.Participant{
		ID:       cmd.Connection,
		Username: cmd.Username,
		Avatar:   cmd.Avatar,
		Status:   cmd.Status,
	}
	if _, ok := w.registry.Register(cmd.Connection, p); !ok {
		w.log.Debug("Login on closed connection dropped", "connection", cmd.Connection)
		return nil
	}

	if err := w.presence.Publish(ctx); err != nil {
		return err
	}
	return w.send(ctx, event.Unicast(cmd.Connection, event.MessageHistory{
		Messages: w.history.Snapshot(),
	}))
}

func (w *RelayWorker) handleMessage(ctx context.Context, cmd domain.PostMessageCommand) error {
	sender, ok := w.registry.Lookup(cmd.Connection)
	if !ok {
		w.log.Debug("Message from unauthenticated connection dropped", "connection", cmd.Connection)
		return nil
	}

	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return nil
	}
	content = w.moderator.Censor(content)

	msg := domain.Message{
		ID:        w.nextMessageID(),
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	w.history.Append(msg)
	w.monitor.IncrMessagesRelayed()

	return w.send(ctx, event.Broadcast(event.MessagePosted{Message: msg}))
}

func (w *RelayWorker) handleTyping(ctx context.Context, cmd domain.TypingCommand) error {
	sender, ok := w.registry.Lookup(cmd.Connection)
	if !ok {
		w.log.Debug("Typing from unauthenticated connection dropped", "connection", cmd.Connection)
		return nil
	}

	w.typing.Set(cmd.Connection, cmd.IsTyping)
	// The sender already knows its own state.
	return w.send(ctx, event.Except(cmd.Connection, event.UserTyping{
		User:     sender,
		IsTyping: cmd.IsTyping,
	}))
}

func (w *RelayWorker) handleReaction(ctx context.Context, cmd domain.ReactionCommand) error {
	sender, ok := w.registry.Lookup(cmd.Connection)
	if !ok {
		w.log.Debug("Reaction from unauthenticated connection dropped", "connection", cmd.Connection)
		return nil
	}

	reaction := domain.Reaction{
		User: sender,
		Type: cmd.ReactionType,
		At:   time.Now().UTC(),
	}
	if !w.history.AttachReaction(cmd.MessageID, reaction) {
		// Legitimate race: the message may have been evicted between the
		// reaction being sent and being processed.
		w.log.Debug("Reaction to unknown message dropped",
			"connection", cmd.Connection, "message_id", cmd.MessageID)
		return nil
	}

	return w.send(ctx, event.Broadcast(event.MessageReacted{
		MessageID: cmd.MessageID,
		Reaction:  reaction,
	}))
}

// handleDisconnect is the last applied effect of a connection's lifecycle:
// the registry entry goes first, then the typing flag, then the remaining
// participants learn about the departure.
func (w *RelayWorker) handleDisconnect(ctx context.Context, cmd domain.DisconnectCommand) error {
	_, wasActive := w.registry.Unregister(cmd.Connection)
	w.typing.Clear(cmd.Connection)
	w.registry.Unsubscribe(cmd.Connection)

	if !wasActive {
		return nil
	}
	return w.presence.Publish(ctx)
}

// nextMessageID derives ids from the wall clock in milliseconds, forced
// strictly increasing so a burst within one millisecond still yields unique,
// ordered ids.
func (w *RelayWorker) nextMessageID() string {
	id := time.Now().UnixMilli()
	if id <= w.lastID {
		id = w.lastID + 1
	}
	w.lastID = id
	return strconv.FormatInt(id, 10)
}

func (w *RelayWorker) send(ctx context.Context, d event.Delivery) error {
	select {
	case w.deliveries <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
