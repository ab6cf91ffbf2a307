package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cursolab/cursolab/internal/authz"
	"github.com/cursolab/cursolab/internal/domain"
)

// Decision is the outcome of a guard evaluation.
type Decision int

const (
	// DecisionAllow lets the view render.
	DecisionAllow Decision = iota
	// DecisionRedirect sends the visitor elsewhere instead.
	DecisionRedirect
)

// Result carries a guard decision plus the redirect target when denied.
type Result struct {
	Decision Decision
	Redirect string
}

// Guard blocks protected views until the session state is good enough to
// decide. Timeout caps the whole evaluation; a session that cannot be
// confirmed within it is denied.
type Guard struct {
	timeout time.Duration
	log     *zap.Logger
}

// NewGuard creates a guard. A zero duration falls back to a 5s timeout.
func NewGuard(timeout time.Duration, log *zap.Logger) *Guard {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Guard{timeout: timeout, log: log}
}

// Evaluate decides whether the session may see a view requiring the given
// role ("" means any authenticated user). Gated content renders only on a
// confirmed profile: while the background confirmation is pending the
// guard stays blocked, re-checking on every session update. A confirmed
// user with the wrong role is sent home; no user and nothing pending, or
// a confirmation that never lands, is sent to login.
func (g *Guard) Evaluate(ctx context.Context, sess *Context, required domain.Role) Result {
	deadline := time.NewTimer(g.timeout)
	defer deadline.Stop()

	for {
		if !sess.Hydrating() {
			user := sess.User()
			if user == nil {
				return Result{Decision: DecisionRedirect, Redirect: authz.LoginPath}
			}
			if required == domain.RoleAdmin && !user.IsAdmin() {
				return Result{Decision: DecisionRedirect, Redirect: authz.HomePath}
			}
			return Result{Decision: DecisionAllow}
		}

		select {
		case <-sess.Updates():
		case <-deadline.C:
			g.log.Warn("guard evaluation timed out, denying access")
			return Result{Decision: DecisionRedirect, Redirect: authz.LoginPath}
		case <-ctx.Done():
			return Result{Decision: DecisionRedirect, Redirect: authz.LoginPath}
		}
	}
}

// Protect guards a route group for any authenticated user.
func (g *Guard) Protect() gin.HandlerFunc {
	return g.require("")
}

// ProtectAdmin guards a route group for admins only.
func (g *Guard) ProtectAdmin() gin.HandlerFunc {
	return g.require(domain.RoleAdmin)
}

func (g *Guard) require(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := FromGin(c)
		res := g.Evaluate(c.Request.Context(), sess, role)
		// Any hydration rollback has settled by now; write its cookie
		// purge from this goroutine, before the response starts.
		sess.FlushPurge()
		if res.Decision == DecisionRedirect {
			c.Redirect(http.StatusFound, res.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}
