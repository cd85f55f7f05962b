// Package runtime handles command dispatch, presence propagation, and event
// fan-out. It orchestrates the relay without containing domain rules.
package runtime

import (
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
)

type session struct {
	sink        contract.EventSink
	participant *domain.Participant
}

// Registry tracks every open connection and, once a login has been applied,
// the participant bound to it. A connection appears in presence snapshots iff
// it has logged in and not yet disconnected; its sink is a broadcast target
// from the moment it subscribes.
//
// Participant mutations are serialized through the relay coordinator; the
// mutex exists because fan-out and the stats endpoint read concurrently.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	order    []string // login order, stable for the registry lifetime
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session)}
}

// Subscribe attaches the outbound sink of a freshly opened connection.
// The connection stays unauthenticated until Register is called for it.
func (r *Registry) Subscribe(connectionID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connectionID] = &session{sink: sink}
}

// Unsubscribe drops the connection entirely. Callers unregister first so the
// presence list never references a closed connection.
func (r *Registry) Unsubscribe(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[connectionID]; ok && s.participant != nil {
		r.removeFromOrder(connectionID)
	}
	delete(r.sessions, connectionID)
}

// Register binds a participant to an open connection. Last write wins: a
// second login on the same connection replaces the identity in place and
// keeps its original position in the presence order. Reports false when the
// connection is no longer open.
func (r *Registry) Register(connectionID string, p domain.Participant) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connectionID]
	if !ok {
		return domain.Participant{}, false
	}
	if s.participant == nil {
		r.order = append(r.order, connectionID)
	}
	s.participant = &p
	return p, true
}

// Unregister removes and returns the participant bound to the connection.
// The connection itself stays subscribed until Unsubscribe.
func (r *Registry) Unregister(connectionID string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connectionID]
	if !ok || s.participant == nil {
		return domain.Participant{}, false
	}
	p := *s.participant
	s.participant = nil
	r.removeFromOrder(connectionID)
	return p, true
}

// Lookup returns a value copy of the participant for the connection.
func (r *Registry) Lookup(connectionID string) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connectionID]
	if !ok || s.participant == nil {
		return domain.Participant{}, false
	}
	return *s.participant, true
}

// SnapshotAll returns the logged-in participants in login order.
func (r *Registry) SnapshotAll() []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		if s, ok := r.sessions[id]; ok && s.participant != nil {
			out = append(out, *s.participant)
		}
	}
	return out
}

// Sinks returns the sinks of every open connection.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contract.EventSink, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.sink)
	}
	return out
}

// SinksExcept returns every open connection's sink but one.
func (r *Registry) SinksExcept(connectionID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contract.EventSink, 0, len(r.sessions))
	for id, s := range r.sessions {
		if id == connectionID {
			continue
		}
		out = append(out, s.sink)
	}
	return out
}

// Sink returns the sink of a single connection.
func (r *Registry) Sink(connectionID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connectionID]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

// Counts reports open connections and logged-in participants.
func (r *Registry) Counts() (connections, participants int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), len(r.order)
}

func (r *Registry) removeFromOrder(connectionID string) {
	for i, id := range r.order {
		if id == connectionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
