// Package websocket is the transport layer of the relay: it upgrades HTTP
// connections, decodes inbound frames into commands, and pumps outbound
// events back to the client.
package websocket

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-relay/services"
)

// Server accepts websocket connections and runs one session per connection.
type Server struct {
	log            *slog.Logger
	service        services.IRelayService
	upgrader       websocket.Upgrader
	validate       *validator.Validate
	bufferSize     int
	maxMessageSize int64
}

func NewServer(log *slog.Logger, service services.IRelayService, bufferSize int, maxMessageSize int64) *Server {
	return &Server{
		log:     log,
		service: service,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // The relay sits behind the reverse proxy that enforces origins.
			},
		},
		validate:       validator.New(),
		bufferSize:     bufferSize,
		maxMessageSize: maxMessageSize,
	}
}

// Handler upgrades the request and blocks until the session ends. Each
// connection gets an opaque uuid as its identifier; the client never chooses
// its own.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		session := newSession(
			s.log, conn, uuid.NewString(), s.service,
			s.validate, s.bufferSize, s.maxMessageSize)
		session.run()
	}
}
