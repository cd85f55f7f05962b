package websocket_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-relay/observability"
	"chat-relay/protocol"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"

	wstransport "chat-relay/infrastructure/websocket"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	orchestrator := runtime.NewOrchestrator(
		log, supervisor, runtime.NewRegistry(), observability.NewMonitor(log),
		100, 64, time.Second, '*')

	ctx, cancel := context.WithCancel(context.Background())
	req.NoError(orchestrator.Start(ctx))

	server := wstransport.NewServer(log, services.NewRelayService(orchestrator), 64, 4096)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		ts.Close()
		orchestrator.Stop()
		cancel()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, eventType protocol.EventType, payload any) {
	t.Helper()
	env, err := protocol.NewEnvelope(eventType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(env))
}

// expectFrame reads frames until one of the wanted type arrives. Presence
// rebroadcasts from other connections may interleave with the wanted frame.
func expectFrame(t *testing.T, conn *websocket.Conn, wantType protocol.EventType) *protocol.Envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var env protocol.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == wantType {
			return &env
		}
	}
}

func login(t *testing.T, conn *websocket.Conn, username string) {
	t.Helper()
	sendFrame(t, conn, protocol.TypeLogin, protocol.LoginPayload{
		Username: username, Status: "online",
	})
}

func TestLoginReceivesPresenceAndHistory(t *testing.T) {
	req := require.New(t)
	ts := startServer(t)
	conn := dial(t, ts)

	// When logging in on a fresh relay
	login(t, conn, "alice")

	// Then the presence list names the newcomer
	env := expectFrame(t, conn, protocol.TypeUsers)
	var users []protocol.User
	req.NoError(json.Unmarshal(env.Data, &users))
	req.Len(users, 1)
	req.Equal("alice", users[0].Username)
	req.NotEmpty(users[0].ID)

	// And the history replay is empty
	env = expectFrame(t, conn, protocol.TypeMessageHistory)
	var history []protocol.Message
	req.NoError(json.Unmarshal(env.Data, &history))
	req.Empty(history)
}

func TestMessagesReachEveryParticipant(t *testing.T) {
	req := require.New(t)
	ts := startServer(t)

	alice := dial(t, ts)
	login(t, alice, "alice")
	expectFrame(t, alice, protocol.TypeMessageHistory)

	bob := dial(t, ts)
	login(t, bob, "bob")
	expectFrame(t, bob, protocol.TypeMessageHistory)

	// When alice posts a message
	sendFrame(t, alice, protocol.TypeMessage, protocol.MessagePayload{Content: "hi bob"})

	// Then both connections receive the same broadcast
	for _, conn := range []*websocket.Conn{alice, bob} {
		env := expectFrame(t, conn, protocol.TypeNewMessage)
		var msg protocol.Message
		req.NoError(json.Unmarshal(env.Data, &msg))
		req.Equal("hi bob", msg.Content)
		req.Equal("alice", msg.Sender.Username)
	}
}

func TestTypingSignalSkipsTheTypist(t *testing.T) {
	req := require.New(t)
	ts := startServer(t)

	alice := dial(t, ts)
	login(t, alice, "alice")
	expectFrame(t, alice, protocol.TypeMessageHistory)

	bob := dial(t, ts)
	login(t, bob, "bob")
	expectFrame(t, bob, protocol.TypeMessageHistory)

	// When alice starts then stops typing
	sendFrame(t, alice, protocol.TypeTyping, protocol.TypingPayload{IsTyping: true})
	sendFrame(t, alice, protocol.TypeTyping, protocol.TypingPayload{IsTyping: false})

	// Then bob sees both signals in order
	env := expectFrame(t, bob, protocol.TypeUserTyping)
	var typing protocol.UserTypingPayload
	req.NoError(json.Unmarshal(env.Data, &typing))
	req.Equal("alice", typing.User.Username)
	req.True(typing.IsTyping)

	env = expectFrame(t, bob, protocol.TypeUserTyping)
	req.NoError(json.Unmarshal(env.Data, &typing))
	req.False(typing.IsTyping)
}

func TestGarbageFramesDoNotKillTheSession(t *testing.T) {
	req := require.New(t)
	ts := startServer(t)
	conn := dial(t, ts)

	// Given a malformed frame, an unknown type, and an invalid login
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`)))
	sendFrame(t, conn, protocol.TypeLogin, protocol.LoginPayload{Username: "", Status: "online"})
	sendFrame(t, conn, protocol.TypeLogin, protocol.LoginPayload{Username: "eve", Status: "teleporting"})

	// Then a valid login on the same connection still works
	login(t, conn, "alice")
	env := expectFrame(t, conn, protocol.TypeUsers)
	var users []protocol.User
	req.NoError(json.Unmarshal(env.Data, &users))
	req.Len(users, 1)
}

func TestDisconnectUpdatesPresenceForSurvivors(t *testing.T) {
	req := require.New(t)
	ts := startServer(t)

	alice := dial(t, ts)
	login(t, alice, "alice")
	expectFrame(t, alice, protocol.TypeMessageHistory)

	bob := dial(t, ts)
	login(t, bob, "bob")
	expectFrame(t, bob, protocol.TypeMessageHistory)

	// When alice closes her connection
	req.NoError(alice.Close())

	// Then bob eventually sees a presence list with himself only
	deadline := time.Now().Add(2 * time.Second)
	for {
		req.NoError(bob.SetReadDeadline(deadline))
		var env protocol.Envelope
		req.NoError(bob.ReadJSON(&env))
		if env.Type != protocol.TypeUsers {
			continue
		}
		var users []protocol.User
		req.NoError(json.Unmarshal(env.Data, &users))
		if len(users) == 1 && users[0].Username == "bob" {
			return
		}
	}
}
