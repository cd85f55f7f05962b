package e2e

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-relay/protocol"
)

type testRelaySuite struct {
	BaseWsSuite
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, &testRelaySuite{})
}

func (s *testRelaySuite) TestFullRelayFlow() {
	var alice, bob *websocket.Conn
	var messageID string

	s.Run("Step 0: Health endpoint answers", func() {
		var health map[string]string
		s.GetJSON("/api/health", &health)
		s.Require().Equal("healthy", health["status"])
	})

	s.Run("Step 1: Alice joins an empty relay", func() {
		alice = s.Dial()
		history := s.Login(alice, "alice", "alice")
		s.Require().Empty(history)
	})

	s.Run("Step 2: Bob joins and both see the full presence list", func() {
		bob = s.Dial()
		history := s.Login(bob, "bob", "alice", "bob")
		s.Require().Empty(history)
		s.ExpectUsers(alice, "alice", "bob")
	})

	s.Run("Step 3: Alice posts, everyone receives the broadcast", func() {
		s.Send(alice, protocol.TypeMessage, protocol.MessagePayload{Content: "hi bob"})

		var msg protocol.Message
		s.Expect(bob, protocol.TypeNewMessage, &msg)
		s.Require().Equal("hi bob", msg.Content)
		s.Require().Equal("alice", msg.Sender.Username)
		s.Require().NotEmpty(msg.ID)
		messageID = msg.ID

		s.Expect(alice, protocol.TypeNewMessage, &msg)
		s.Require().Equal(messageID, msg.ID)
	})

	s.Run("Step 4: Bob reacts and the reaction is broadcast", func() {
		s.Send(bob, protocol.TypeReaction, protocol.ReactionPayload{
			MessageID: messageID, ReactionType: "👍",
		})

		var reaction protocol.MessageReactionPayload
		s.Expect(alice, protocol.TypeMessageReaction, &reaction)
		s.Require().Equal(messageID, reaction.MessageID)
		s.Require().Equal("👍", reaction.Reaction.Type)
		s.Require().Equal("bob", reaction.Reaction.User.Username)
	})

	s.Run("Step 5: A latecomer replays history with the reaction attached", func() {
		carol := s.Dial()
		defer carol.Close()

		history := s.Login(carol, "carol", "alice", "bob", "carol")
		s.Require().Len(history, 1)
		s.Require().Equal(messageID, history[0].ID)
		s.Require().Len(history[0].Reactions, 1)
		s.Require().Equal("👍", history[0].Reactions[0].Type)

		// Everyone sees the grown presence list
		s.ExpectUsers(alice, "alice", "bob", "carol")
		s.ExpectUsers(bob, "alice", "bob", "carol")

		// Closing carol shrinks it back
		s.Require().NoError(carol.Close())
		s.ExpectUsers(alice, "alice", "bob")
		s.ExpectUsers(bob, "alice", "bob")
	})

	s.Run("Step 6: Alice disconnects, bob sees the departure", func() {
		s.Require().NoError(alice.Close())
		s.ExpectUsers(bob, "bob")
		s.Require().NoError(bob.Close())
	})

	s.Run("Step 7: Stats endpoint counts the traffic", func() {
		var stats map[string]any
		s.GetJSON("/api/stats", &stats)
		s.Require().GreaterOrEqual(stats["messages_relayed"].(float64), float64(1))
	})
}
