package domain_test

import (
	"fmt"
	"testing"
	"time"

	"chat-relay/domain"

	"github.com/stretchr/testify/require"
)

func makeMessage(id int) domain.Message {
	return domain.Message{
		ID:        fmt.Sprintf("%d", id),
		Sender:    domain.Participant{ID: "conn-1", Username: "alice"},
		Content:   fmt.Sprintf("message %d", id),
		CreatedAt: time.Now().UTC(),
	}
}

func TestHistoryKeepsOnlyTheMostRecentWindow(t *testing.T) {
	req := require.New(t)

	// Given a log bounded to 100 entries
	history := domain.NewHistory(100)

	// When appending well past the capacity
	for i := 0; i < 150; i++ {
		history.Append(makeMessage(i))
	}

	// Then only the last 100, oldest first, remain
	snapshot := history.Snapshot()
	req.Len(snapshot, 100)
	req.Equal("50", snapshot[0].ID)
	req.Equal("149", snapshot[99].ID)
	req.Equal(100, history.Len())
}

func TestHistorySnapshotIsNotAffectedByLaterReactions(t *testing.T) {
	req := require.New(t)

	// Given a log with one reacted message
	history := domain.NewHistory(10)
	history.Append(makeMessage(1))
	req.True(history.AttachReaction("1", domain.Reaction{Type: "👍"}))

	// When snapshotting then attaching another reaction
	snapshot := history.Snapshot()
	req.True(history.AttachReaction("1", domain.Reaction{Type: "🔥"}))

	// Then the earlier snapshot still holds a single reaction
	req.Len(snapshot[0].Reactions, 1)
	current, ok := history.Find("1")
	req.True(ok)
	req.Len(current.Reactions, 2)
}

func TestHistoryFind(t *testing.T) {
	req := require.New(t)

	history := domain.NewHistory(10)
	history.Append(makeMessage(7))

	// Given a present and an absent id
	found, ok := history.Find("7")
	req.True(ok)
	req.Equal("message 7", found.Content)

	_, ok = history.Find("404")
	req.False(ok)
}

func TestHistoryAccumulatesDuplicateReactions(t *testing.T) {
	req := require.New(t)

	// Given the same user reacting twice with the same emoji
	history := domain.NewHistory(10)
	history.Append(makeMessage(1))
	r := domain.Reaction{User: domain.Participant{Username: "bob"}, Type: "👍"}
	req.True(history.AttachReaction("1", r))
	req.True(history.AttachReaction("1", r))

	// Then both entries are kept, there is no dedup
	msg, ok := history.Find("1")
	req.True(ok)
	req.Len(msg.Reactions, 2)
}

func TestHistoryAttachReactionOnEvictedMessage(t *testing.T) {
	req := require.New(t)

	// Given a tiny log where the first message was evicted
	history := domain.NewHistory(1)
	history.Append(makeMessage(1))
	history.Append(makeMessage(2))

	// Then the reaction to the evicted id is reported absent
	req.False(history.AttachReaction("1", domain.Reaction{Type: "👍"}))
}

func TestHistoryMinimumCapacity(t *testing.T) {
	req := require.New(t)

	history := domain.NewHistory(0)
	history.Append(makeMessage(1))
	history.Append(makeMessage(2))

	req.Equal(1, history.Len())
	req.Equal("2", history.Snapshot()[0].ID)
}
