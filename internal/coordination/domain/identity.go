package domain

// Identity resolved from the handshake credential
type Identity struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
}

// Platform roles known to the room strategies
const (
	// RoleParent parent or guardian of a supported child
	RoleParent = "parent"
	// RoleProfessional external professional with client appointments
	RoleProfessional = "professional"
	// RoleLAStaff local-authority case worker
	RoleLAStaff = "la_staff"
	// RoleLAManager local-authority manager
	RoleLAManager = "la_manager"
)
