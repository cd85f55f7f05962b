package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/runtime/workers"

	"chat-relay/domain/event"
)

//go:embed censored/*
var censoredFolder embed.FS

// Orchestrator owns the shared stores and the worker pipeline. It is
// constructed once at startup and handed to the transport; there is no
// ambient global state.
type Orchestrator struct {
	log         *slog.Logger
	supervisor  contract.ISupervisor
	registry    contract.IRegistry
	history     *domain.History
	typing      *domain.TypingTracker
	monitor     *observability.Monitor
	commands    chan domain.Command
	deliveries  chan event.Delivery
	sinkTimeout time.Duration
	replacement rune
}

func NewOrchestrator(
	log *slog.Logger,
	supervisor contract.ISupervisor,
	registry contract.IRegistry,
	monitor *observability.Monitor,
	historyCapacity, bufferSize int,
	sinkTimeout time.Duration,
	replacement rune) *Orchestrator {
	return &Orchestrator{
		log:         log,
		supervisor:  supervisor,
		registry:    registry,
		history:     domain.NewHistory(historyCapacity),
		typing:      domain.NewTypingTracker(),
		monitor:     monitor,
		commands:    make(chan domain.Command, bufferSize),
		deliveries:  make(chan event.Delivery, bufferSize),
		sinkTimeout: sinkTimeout,
		replacement: replacement,
	}
}

// Connect attaches the sink of a freshly opened connection. Presence does
// not change here: the connection stays unauthenticated until login.
func (o *Orchestrator) Connect(connectionID string, sink contract.EventSink) {
	o.registry.Subscribe(connectionID, sink)
	o.log.Debug("Connection opened", "connection", connectionID)
}

// Dispatch hands a command to the relay coordinator. The send blocks until
// the coordinator accepts it or ctx is canceled, so command order per
// connection is the order the transport read them in.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd domain.Command) error {
	select {
	case o.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start prepares moderation and the workers, then launches the supervisor.
// It returns once the pipeline is running; Stop shuts it down.
func (o *Orchestrator) Start(ctx context.Context) error {
	moderator, err := o.prepareModeration("censored")
	if err != nil {
		return err
	}

	presence := NewBroadcaster(o.log, o.registry, o.deliveries)

	relay := workers.NewRelayWorker(
		o.log, o.registry, o.history, o.typing,
		presence, moderator, o.monitor,
		o.commands, o.deliveries)
	fanout := workers.NewEventFanout(
		o.log, o.registry, o.deliveries, o.sinkTimeout, o.monitor)

	// Exactly one relay worker: it is the single writer over the shared
	// stores. Fan-out is also single so broadcast order equals append order.
	o.supervisor.Add(relay)
	o.supervisor.Add(fanout)

	o.log.Info("Starting orchestrator and all supervised workers")
	go o.supervisor.Run(ctx)
	return nil
}

// prepareModeration loads the embedded wordlists and builds the automaton.
func (o *Orchestrator) prepareModeration(dir string) (*moderation.Moderator, error) {
	loader := NewCensoredLoader(censoredFolder)
	data, err := loader.LoadAll(dir)
	if err != nil {
		return nil, fmt.Errorf("loading censored words: %w", err)
	}

	o.log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	o.log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	return moderation.NewModerator(data.Words, o.replacement)
}

// Stop initiates a graceful shutdown by canceling the supervised context.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
