package domain

import "fmt"

// Rooms are runtime-only fan-out targets named "namespace:id".
// Membership is the set of currently-joined connections; nothing is persisted.

// UserRoom personal room, one per user across all devices
func UserRoom(userID string) string {
	return "user:" + userID
}

// TenantRoom every connection of a tenant
func TenantRoom(tenantID string) string {
	return "tenant:" + tenantID
}

// RoleRoom every connection holding a role
func RoleRoom(role string) string {
	return "role:" + role
}

// CaseRoom live viewers of a case
func CaseRoom(caseID string) string {
	return "case:" + caseID
}

// ClientRoom professionals following a client
func ClientRoom(clientID string) string {
	return "client:" + clientID
}

// ConversationRoom currently-open conversation views
func ConversationRoom(conversationID string) string {
	return "conversation:" + conversationID
}

// ActivityScope target universe of an activity event
type ActivityScope string

const (
	// ActivityScopeCase events about one case
	ActivityScopeCase ActivityScope = "case"
	// ActivityScopeUser events about one user
	ActivityScopeUser ActivityScope = "user"
	// ActivityScopeGlobal tenant-wide events
	ActivityScopeGlobal ActivityScope = "global"
)

// ActivityRoom activity fan-out room for a scope
func ActivityRoom(scope ActivityScope, scopeID string) string {
	return fmt.Sprintf("activity:%s:%s", scope, scopeID)
}

// ActivityEvent transient broadcast-only event; durability belongs to the caller
type ActivityEvent struct {
	Scope     ActivityScope          `json:"scope"`
	ScopeID   string                 `json:"scope_id"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp int64                  `json:"timestamp"`
}
