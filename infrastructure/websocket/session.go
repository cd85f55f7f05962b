package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"chat-relay/domain"
	"chat-relay/protocol"
	"chat-relay/services"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// session owns one websocket connection: a read loop turning frames into
// commands and a write pump draining the sink. The read and write sides are
// separated so a slow browser cannot block inbound processing.
type session struct {
	log            *slog.Logger
	conn           *websocket.Conn
	id             string
	sink           *Sink
	service        services.IRelayService
	validate       *validator.Validate
	maxMessageSize int64
}

func newSession(
	log *slog.Logger,
	conn *websocket.Conn,
	id string,
	service services.IRelayService,
	validate *validator.Validate,
	bufferSize int,
	maxMessageSize int64) *session {
	return &session{
		log:            log,
		conn:           conn,
		id:             id,
		sink:           NewSink(bufferSize),
		service:        service,
		validate:       validate,
		maxMessageSize: maxMessageSize,
	}
}

// run blocks until the connection dies. The deferred disconnect is the last
// command dispatched for this connection id, whatever state the session
// reached before.
func (s *session) run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.service.Connect(s.id, s.sink)
	defer func() {
		if err := s.service.Disconnect(context.Background(), s.id); err != nil {
			s.log.Error("Disconnect dispatch failed", "connection", s.id, "error", err)
		}
		_ = s.conn.Close()
	}()

	go s.writePump(ctx)
	s.readLoop(ctx)
}

func (s *session) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(s.maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Read failed", "connection", s.id, "error", err)
			}
			return
		}
		s.dispatch(ctx, raw)
	}
}

// dispatch decodes one inbound frame. Malformed or invalid frames are
// dropped without closing the connection or answering the client, same as
// out-of-state commands further down the pipeline.
func (s *session) dispatch(ctx context.Context, raw []byte) {
	env, err := protocol.ParseEnvelope(raw)
	if err != nil {
		s.log.Debug("Malformed frame dropped", "connection", s.id, "error", err)
		return
	}

	var dispatchErr error
	switch env.Type {
	case protocol.TypeLogin:
		var payload protocol.LoginPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			s.log.Debug("Malformed login dropped", "connection", s.id, "error", err)
			return
		}
		if err := s.validate.Struct(payload); err != nil {
			s.log.Debug("Invalid login dropped", "connection", s.id, "error", err)
			return
		}
		dispatchErr = s.service.Login(ctx, domain.LoginCommand{
			Connection: s.id,
			Username:   payload.Username,
			Avatar:     payload.Avatar,
			Status:     domain.Status(payload.Status),
		})

	case protocol.TypeMessage:
		var payload protocol.MessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			s.log.Debug("Malformed message dropped", "connection", s.id, "error", err)
			return
		}
		dispatchErr = s.service.PostMessage(ctx, domain.PostMessageCommand{
			Connection: s.id,
			Content:    payload.Content,
		})

	case protocol.TypeTyping:
		var payload protocol.TypingPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			s.log.Debug("Malformed typing dropped", "connection", s.id, "error", err)
			return
		}
		dispatchErr = s.service.SetTyping(ctx, domain.TypingCommand{
			Connection: s.id,
			IsTyping:   payload.IsTyping,
		})

	case protocol.TypeReaction:
		var payload protocol.ReactionPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			s.log.Debug("Malformed reaction dropped", "connection", s.id, "error", err)
			return
		}
		dispatchErr = s.service.React(ctx, domain.ReactionCommand{
			Connection:   s.id,
			MessageID:    payload.MessageID,
			ReactionType: payload.ReactionType,
		})

	default:
		s.log.Debug("Unknown frame type dropped", "connection", s.id, "type", env.Type)
	}

	if dispatchErr != nil {
		s.log.Warn("Command dispatch failed", "connection", s.id, "error", dispatchErr)
	}
}

func (s *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case evt := <-s.sink.Events:
			env, err := toEnvelope(evt)
			if err != nil {
				s.log.Error("Event encoding failed", "connection", s.id, "error", err)
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(env); err != nil {
				s.log.Debug("Write failed, closing", "connection", s.id, "error", err)
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
