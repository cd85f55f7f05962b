package domain

import "sync"

// TypingTracker holds the ephemeral "is typing" flag per connection.
// Flags are not persisted anywhere; the relay coordinator clears them on
// disconnect since the tracker is not wired to the connection lifecycle.
type TypingTracker struct {
	mu     sync.RWMutex
	active map[string]struct{}
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{active: make(map[string]struct{})}
}

func (t *TypingTracker) Set(connectionID string, isTyping bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if isTyping {
		t.active[connectionID] = struct{}{}
		return
	}
	delete(t.active, connectionID)
}

func (t *TypingTracker) IsTyping(connectionID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.active[connectionID]
	return ok
}

// Clear removes the flag, if any. Equivalent to Set(id, false).
func (t *TypingTracker) Clear(connectionID string) {
	t.Set(connectionID, false)
}
