// Package authz defines the route-protection policy in one place.
//
// Two layers enforce the same policy at different times: the session gate
// runs per request before any handler, and the view guard runs again at
// render time once the live profile is available. Both consume this table
// so the policy itself is written exactly once.
package authz

import "strings"

// Route prefixes. Everything under a protected prefix requires an
// authenticated session; everything under an admin prefix additionally
// requires the ADMIN role. All other paths are public.
var (
	protectedPrefixes = []string{"/dashboard", "/conta"}
	adminPrefixes     = []string{"/dashboard"}
)

// Redirect targets. Unauthenticated access goes to the login page;
// authenticated-but-unauthorized access goes home, not to login — the
// caller is a valid user, merely not entitled.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// IsProtected reports whether the path requires any authenticated session.
func IsProtected(path string) bool {
	return hasPrefix(path, protectedPrefixes)
}

// RequiresAdmin reports whether the path requires the ADMIN role.
func RequiresAdmin(path string) bool {
	return hasPrefix(path, adminPrefixes)
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
