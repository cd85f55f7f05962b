package domain

// History is the bounded, append-only message log. Once the capacity is
// reached, appending evicts the oldest entry so newcomers always replay the
// most recent window.
//
// History is not safe for concurrent use on its own: all mutation goes through
// the relay coordinator, which is the single writer.
type History struct {
	capacity int
	messages []Message
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

// Append inserts msg at the end, evicting from the front beyond capacity.
func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg)
	if len(h.messages) > h.capacity {
		h.messages = h.messages[len(h.messages)-h.capacity:]
	}
}

// Snapshot returns a value copy of the full log, oldest first. Reaction
// slices are cloned so later attachments cannot leak into a returned snapshot.
func (h *History) Snapshot() []Message {
	out := make([]Message, len(h.messages))
	for i, msg := range h.messages {
		out[i] = msg
		if len(msg.Reactions) > 0 {
			out[i].Reactions = append([]Reaction(nil), msg.Reactions...)
		}
	}
	return out
}

// Find returns a copy of the message with the given id.
func (h *History) Find(messageID string) (Message, bool) {
	for i := range h.messages {
		if h.messages[i].ID == messageID {
			msg := h.messages[i]
			msg.Reactions = append([]Reaction(nil), msg.Reactions...)
			return msg, true
		}
	}
	return Message{}, false
}

// AttachReaction appends a reaction to the message with the given id.
// It reports false when the message is absent, typically because it was
// already evicted between the reaction being sent and being processed.
func (h *History) AttachReaction(messageID string, r Reaction) bool {
	for i := range h.messages {
		if h.messages[i].ID == messageID {
			h.messages[i].Reactions = append(h.messages[i].Reactions, r)
			return true
		}
	}
	return false
}

func (h *History) Len() int {
	return len(h.messages)
}
