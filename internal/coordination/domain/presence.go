package domain

import "time"

// PresenceStatus user-level liveness status
type PresenceStatus string

const (
	// PresenceOnline user active on at least one device
	PresenceOnline PresenceStatus = "online"
	// PresenceAway user idle
	PresenceAway PresenceStatus = "away"
	// PresenceBusy user asked not to be disturbed
	PresenceBusy PresenceStatus = "busy"
	// PresenceOffline set explicitly or by the sweep, never by a single disconnect
	PresenceOffline PresenceStatus = "offline"
)

// ValidPresenceStatus check the status is one of the four known values
func ValidPresenceStatus(s PresenceStatus) bool {
	switch s {
	case PresenceOnline, PresenceAway, PresenceBusy, PresenceOffline:
		return true
	}
	return false
}

// PresenceRecord one per user, never per connection
type PresenceRecord struct {
	UserID      string         `json:"user_id"`
	TenantID    string         `json:"tenant_id"`
	Status      PresenceStatus `json:"status"`
	LastSeen    time.Time      `json:"last_seen"`
	CurrentPage string         `json:"current_page,omitempty"`
}
