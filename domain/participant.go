// Package domain contains core concepts of the relay.
// This file defines Participant identities and their status.
// No runtime, network, or UI logic should be added here.
package domain

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusBusy    Status = "busy"
)

// ValidStatus reports whether s is one of the announced presence states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusBusy:
		return true
	}
	return false
}

// Participant is the identity a connection announces at login.
// The ID is the opaque per-connection identifier; it lives exactly as long
// as the connection. Messages and reactions embed value copies of Participant
// so a later disconnect never invalidates them.
type Participant struct {
	ID       string
	Username string
	Avatar   string
	Status   Status
}
