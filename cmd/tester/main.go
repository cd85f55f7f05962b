// Command tester is an interactive terminal client for the relay.
// It logs in, prints incoming traffic, and reads stdin lines as messages.
// Helpers: "/react <messageId> <emoji>" and "/typing on|off".
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"chat-relay/protocol"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"RELAY_SERVER_ADDR,default=localhost:3000"`
	Username      string `env:"RELAY_USERNAME,default=tester"`
	Avatar        string `env:"RELAY_AVATAR,default=tester-seed"`
	LogLevel      string `env:"LOG_LEVEL,default=info"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Load configuration from environment variables.
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Dial the relay.
	wsURL := url.URL{Scheme: "ws", Host: config.ServerAddress, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", wsURL.String(), err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	// 4. Announce presence.
	if err := send(conn, protocol.TypeLogin, protocol.LoginPayload{
		Username: config.Username,
		Avatar:   config.Avatar,
		Status:   "online",
	}); err != nil {
		return exitRuntime, err
	}

	color.Green.Printf(">>> Connected to %s as %s (Ctrl+C to quit)\n",
		config.ServerAddress, config.Username)

	// 5. Reception loop in the background.
	go receive(conn)

	// 6. Stdin loop: lines become messages, slash commands become events.
	go readInput(conn)

	<-ctx.Done()
	log.Info("Stopping client...")
	return exitOK, nil
}

func readInput(conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "/react "):
			parts := strings.Fields(line)
			if len(parts) != 3 {
				color.Red.Println("usage: /react <messageId> <emoji>")
				continue
			}
			_ = send(conn, protocol.TypeReaction, protocol.ReactionPayload{
				MessageID:    parts[1],
				ReactionType: parts[2],
			})
		case line == "/typing on" || line == "/typing off":
			_ = send(conn, protocol.TypeTyping, protocol.TypingPayload{
				IsTyping: strings.HasSuffix(line, "on"),
			})
		default:
			_ = send(conn, protocol.TypeMessage, protocol.MessagePayload{Content: line})
		}
	}
}

func receive(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			color.Red.Printf("connection lost: %v\n", err)
			return
		}
		env, err := protocol.ParseEnvelope(raw)
		if err != nil {
			continue
		}
		render(env)
	}
}

func render(env *protocol.Envelope) {
	switch env.Type {
	case protocol.TypeUsers:
		var users []protocol.User
		if json.Unmarshal(env.Data, &users) != nil {
			return
		}
		renderUsers(users)

	case protocol.TypeMessageHistory:
		var messages []protocol.Message
		if json.Unmarshal(env.Data, &messages) != nil {
			return
		}
		color.Gray.Printf("--- history (%d messages) ---\n", len(messages))
		for _, m := range messages {
			printMessage(m)
		}

	case protocol.TypeNewMessage:
		var m protocol.Message
		if json.Unmarshal(env.Data, &m) != nil {
			return
		}
		printMessage(m)

	case protocol.TypeUserTyping:
		var t protocol.UserTypingPayload
		if json.Unmarshal(env.Data, &t) != nil {
			return
		}
		if t.IsTyping {
			color.Gray.Printf("%s is typing...\n", t.User.Username)
		}

	case protocol.TypeMessageReaction:
		var r protocol.MessageReactionPayload
		if json.Unmarshal(env.Data, &r) != nil {
			return
		}
		color.Yellow.Printf("%s reacted %s to message %s\n",
			r.Reaction.User.Username, r.Reaction.Type, r.MessageID)
	}
}

func renderUsers(users []protocol.User) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Username", "Status"})
	for _, u := range users {
		table.Append([]string{u.ID, u.Username, u.Status})
	}
	table.Render()
}

func printMessage(m protocol.Message) {
	color.Cyan.Printf("[%s] %s: ", m.Timestamp.Local().Format("15:04:05"), m.Sender.Username)
	fmt.Printf("%s (id=%s)\n", m.Content, m.ID)
}

func send(conn *websocket.Conn, eventType protocol.EventType, payload any) error {
	env, err := protocol.NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	return conn.WriteJSON(env)
}
