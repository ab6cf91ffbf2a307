// Package token decodes session tokens minted by the remote auth API.
//
// Decoding is claims extraction only: the signature is never checked here.
// Trust is delegated to the remote API, which re-validates the token on
// every protected call; this app only needs the payload to route and render.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cursolab/cursolab/internal/domain"
)

// ErrMalformed is returned for anything that is not a decodable
// three-segment token: too few segments, bad base64, or invalid JSON.
var ErrMalformed = errors.New("token: malformed token")

// Claims is the payload this app reads from a session token.
type Claims struct {
	ID    int64
	Email string
	Name  string
	Role  domain.Role
	Exp   int64 // seconds since epoch, UTC

	// nestedRole carries user.role for tokens that wrap the role in a
	// user object instead of a top-level claim.
	nestedRole domain.Role
}

// Decode extracts the claims from a dot-delimited token string.
// It never panics; any undecodable input yields ErrMalformed and callers
// must treat that the same as having no token at all.
func Decode(tokenString string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, ErrMalformed
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}

	c := &Claims{}
	if id, ok := mc["id"].(float64); ok {
		c.ID = int64(id)
	}
	if email, ok := mc["email"].(string); ok {
		c.Email = email
	}
	if name, ok := mc["name"].(string); ok {
		c.Name = name
	}
	if role, ok := mc["role"].(string); ok {
		c.Role = domain.Role(role)
	}
	if exp, ok := mc["exp"].(float64); ok {
		c.Exp = int64(exp)
	}
	if user, ok := mc["user"].(map[string]interface{}); ok {
		if role, ok := user["role"].(string); ok {
			c.nestedRole = domain.Role(role)
		}
	}

	return c, nil
}

// EffectiveRole resolves the role claim, preferring the flat role field and
// falling back to the nested user.role some token shapes use. Absent both,
// the caller is treated as a regular user.
func (c *Claims) EffectiveRole() domain.Role {
	if c.Role != "" {
		return c.Role
	}
	if c.nestedRole != "" {
		return c.nestedRole
	}
	return domain.RoleUser
}

// ValidAt reports whether the token is still usable at the given instant.
// Expiry is strict: a token whose exp equals the current second is already
// expired. A missing exp claim is treated as expired.
func (c *Claims) ValidAt(now time.Time) bool {
	return c.Exp > now.Unix()
}

// Profile converts the claims into a user profile for request-time use.
func (c *Claims) Profile() *domain.UserProfile {
	return &domain.UserProfile{
		ID:    c.ID,
		Email: c.Email,
		Name:  c.Name,
		Role:  c.EffectiveRole(),
	}
}
