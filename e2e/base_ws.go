package e2e

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"chat-relay/observability"
	"chat-relay/protocol"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"

	wstransport "chat-relay/infrastructure/websocket"
)

const frameTimeout = 3 * time.Second

// BaseWsSuite boots the relay (or targets an external one via RELAY_ADDR)
// and provides websocket client helpers for scenario tests.
type BaseWsSuite struct {
	suite.Suite
	Config Config

	baseURL string
	server  *httptest.Server
	stop    func()
}

func (s *BaseWsSuite) SetupSuite() {
	cfg, err := LoadConfig()
	s.Require().NoError(err)
	s.Config = cfg

	if cfg.RelayAddr != "" {
		s.baseURL = "http://" + cfg.RelayAddr
		return
	}
	s.startInProcess()
}

func (s *BaseWsSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.stop != nil {
		s.stop()
	}
}

func (s *BaseWsSuite) startInProcess() {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	registry := runtime.NewRegistry()
	monitor := observability.NewMonitor(log)
	orchestrator := runtime.NewOrchestrator(
		log, supervisor, registry, monitor, 100, 64, time.Second, '*')

	ctx, cancel := context.WithCancel(context.Background())
	s.Require().NoError(orchestrator.Start(ctx))

	server := wstransport.NewServer(log, services.NewRelayService(orchestrator), 64, 4096)
	mux := http.NewServeMux()
	mux.Handle("/ws", server.Handler())
	mux.Handle("/api/health", observability.HealthHandler())
	mux.Handle("/api/stats", monitor.StatsHandler(registry))

	s.server = httptest.NewServer(mux)
	s.baseURL = s.server.URL
	s.stop = func() {
		orchestrator.Stop()
		cancel()
	}
}

// Dial opens a websocket client on the relay.
func (s *BaseWsSuite) Dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return conn
}

// Send writes one enveloped frame.
func (s *BaseWsSuite) Send(conn *websocket.Conn, eventType protocol.EventType, payload any) {
	env, err := protocol.NewEnvelope(eventType, payload)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteJSON(env))
}

// Expect reads frames until one of the wanted type arrives and unmarshals
// its payload into out (when out is non-nil).
func (s *BaseWsSuite) Expect(conn *websocket.Conn, wantType protocol.EventType, out any) {
	deadline := time.Now().Add(frameTimeout)
	for {
		s.Require().NoError(conn.SetReadDeadline(deadline))
		var env protocol.Envelope
		s.Require().NoError(conn.ReadJSON(&env), "waiting for %s", wantType)
		if s.Config.DebugFrames {
			s.T().Logf("frame: %s %s", env.Type, string(env.Data))
		}
		if env.Type != wantType {
			continue
		}
		if out != nil {
			s.Require().NoError(json.Unmarshal(env.Data, out))
		}
		return
	}
}

// ExpectUsers waits for a presence frame matching the wanted usernames in order.
func (s *BaseWsSuite) ExpectUsers(conn *websocket.Conn, usernames ...string) {
	deadline := time.Now().Add(frameTimeout)
	for {
		s.Require().NoError(conn.SetReadDeadline(deadline))
		var env protocol.Envelope
		s.Require().NoError(conn.ReadJSON(&env), "waiting for users %v", usernames)
		if env.Type != protocol.TypeUsers {
			continue
		}
		var users []protocol.User
		s.Require().NoError(json.Unmarshal(env.Data, &users))
		if len(users) != len(usernames) {
			continue
		}
		match := true
		for i, want := range usernames {
			if users[i].Username != want {
				match = false
				break
			}
		}
		if match {
			return
		}
	}
}

// Login joins the relay and consumes the two login replies in their wire
// order: the presence list naming everyone present, then the history replay.
func (s *BaseWsSuite) Login(conn *websocket.Conn, username string, present ...string) []protocol.Message {
	s.Send(conn, protocol.TypeLogin, protocol.LoginPayload{
		Username: username, Status: "online",
	})
	s.ExpectUsers(conn, present...)
	var history []protocol.Message
	s.Expect(conn, protocol.TypeMessageHistory, &history)
	return history
}

// GetJSON fetches an HTTP endpoint of the relay and decodes the body.
func (s *BaseWsSuite) GetJSON(path string, out any) {
	resp, err := http.Get(s.baseURL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}
