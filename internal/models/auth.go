package models

// Role represents the portal roles in the system.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleCustomer   Role = "customer"
)

// IsValidRole checks if a role is one of the known portal roles.
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleTechnician, RoleCustomer:
		return true
	default:
		return false
	}
}

// LoginRequest represents a portal login request.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse represents a successful portal login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Type    Role   `json:"type"`
}

// AuthCheckResponse reports the role behind a token, if any.
type AuthCheckResponse struct {
	Authenticated bool  `json:"authenticated"`
	Type          *Role `json:"type"`
}
