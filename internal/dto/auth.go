package dto

import "regexp"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// LoginRequest represents a login form submission
type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Validate checks the login fields beyond presence
func (r *LoginRequest) Validate() (bool, string) {
	if !emailRegex.MatchString(r.Email) {
		return false, "Invalid email format"
	}
	if r.Password == "" {
		return false, "Password is required"
	}
	return true, ""
}

// RegisterRequest represents a registration form submission
type RegisterRequest struct {
	Name     string `form:"name" json:"name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Validate checks the registration fields. Password policy is length
// only; the remote API enforces its own rules on top.
func (r *RegisterRequest) Validate() (bool, string) {
	if len(r.Name) < 2 {
		return false, "Name must be at least 2 characters"
	}
	if !emailRegex.MatchString(r.Email) {
		return false, "Invalid email format"
	}
	if len(r.Password) < 6 {
		return false, "Password must be at least 6 characters"
	}
	return true, ""
}

// AuthResponse is what the remote API returns from login and register
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// UserResponse is the user payload inside auth responses
type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
