package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cursolab/cursolab/internal/authz"
	"github.com/cursolab/cursolab/internal/credentials"
	"github.com/cursolab/cursolab/internal/domain"
	"github.com/cursolab/cursolab/internal/token"
)

// GateState is the outcome of the request-time access decision.
type GateState int

const (
	GateAllowed GateState = iota
	GateNoToken
	GateInvalidToken
	GateExpired
	GateInsufficientRole
)

func (s GateState) String() string {
	switch s {
	case GateAllowed:
		return "allowed"
	case GateNoToken:
		return "no_token"
	case GateInvalidToken:
		return "invalid_token"
	case GateExpired:
		return "expired"
	case GateInsufficientRole:
		return "insufficient_role"
	default:
		return "unknown"
	}
}

// GateDecision is what the session gate resolved for one navigation.
// Redirect is empty when the request may proceed. Claims is set whenever a
// decodable token was presented, even if the decision was a redirect.
type GateDecision struct {
	State    GateState
	Redirect string
	Claims   *token.Claims
}

// gateClaimsKey is where the gate leaves decoded claims for handlers.
const gateClaimsKey = "gate.claims"

// DecideAccess is the session gate's decision function. It is pure: given
// the requested path, the bearer credential (if any), the cookie credential
// (if any) and the current time, it returns the same decision every time,
// with no side effects. It runs before anything renders, so it can only see
// the raw token — never the hydrated profile.
func DecideAccess(path, bearer, cookie string, now time.Time) GateDecision {
	if !authz.IsProtected(path) {
		return GateDecision{State: GateAllowed}
	}

	// Prefer an explicit bearer credential, fall back to the cookie.
	tok := bearer
	if tok == "" {
		tok = cookie
	}
	if tok == "" {
		return GateDecision{State: GateNoToken, Redirect: authz.LoginPath}
	}

	claims, err := token.Decode(tok)
	if err != nil {
		return GateDecision{State: GateInvalidToken, Redirect: authz.LoginPath}
	}

	if !claims.ValidAt(now) {
		return GateDecision{State: GateExpired, Redirect: authz.LoginPath, Claims: claims}
	}

	if authz.RequiresAdmin(path) && claims.EffectiveRole() != domain.RoleAdmin {
		// A valid user without the role goes home, not to login.
		return GateDecision{State: GateInsufficientRole, Redirect: authz.HomePath, Claims: claims}
	}

	return GateDecision{State: GateAllowed, Claims: claims}
}

// SessionGate enforces the route policy on every navigation before any
// handler runs. Redirects are plain 302s; no error detail ever reaches the
// client beyond the redirect itself.
func SessionGate(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		cookie, _ := credentials.NewStore(c.Request, c.Writer).Get()

		d := DecideAccess(path, bearerToken(c.Request), cookie, time.Now())
		if d.Claims != nil {
			c.Set(gateClaimsKey, d.Claims)
		}

		if d.Redirect != "" {
			log.Info("session gate redirect",
				zap.String("path", path),
				zap.String("state", d.State.String()),
				zap.String("target", d.Redirect),
			)
			c.Redirect(http.StatusFound, d.Redirect)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GateClaims returns the claims the session gate decoded for this request,
// if the caller presented a decodable token.
func GateClaims(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(gateClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok
}

// bearerToken extracts the token from an Authorization header,
// case-insensitively on the scheme. Absent or non-bearer headers yield "".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
