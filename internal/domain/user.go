package domain

// Role represents a user's authorization level as issued by the remote API.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// UserProfile is the authenticated user's identity as known to this app.
// It is derived state: either decoded from the session token's claims or
// fetched fresh from GET /auth/me. It is never persisted locally.
type UserProfile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
