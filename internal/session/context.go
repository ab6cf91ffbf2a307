// Package session holds the per-request authentication state. Each request
// gets a Context seeded optimistically from the token cookie, then confirmed
// in the background against the remote API. Handlers read the user from it;
// the guard blocks on it before rendering protected views.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cursolab/cursolab/internal/credentials"
	"github.com/cursolab/cursolab/internal/domain"
	"github.com/cursolab/cursolab/internal/token"
)

const contextKey = "session.context"

// ProfileFetcher verifies a token against the remote API and returns the
// profile it belongs to. Implemented by the auth service.
type ProfileFetcher interface {
	Me(ctx context.Context, tokenString string) (*domain.UserProfile, error)
}

// Context is the authentication state of one request. Reads are seeded
// from the cookie's claims before the remote check finishes, so a stale
// but well-formed token shows as authenticated until hydration says
// otherwise. All methods are safe for concurrent use.
type Context struct {
	mu        sync.Mutex
	user         *domain.UserProfile
	tokenStr     string
	hydrating    bool
	loggedOut    bool
	purgePending bool

	creds   *credentials.Store
	updates chan struct{}
	log     *zap.Logger
}

// NewContext builds the session state for one request. When the cookie
// carries a decodable, unexpired token the user is set optimistically from
// its claims and a background fetch confirms it; an undecodable or expired
// token is purged on the spot.
func NewContext(ctx context.Context, creds *credentials.Store, fetcher ProfileFetcher, log *zap.Logger) *Context {
	s := &Context{
		creds:   creds,
		updates: make(chan struct{}, 1),
		log:     log,
	}

	tokenStr, ok := creds.Get()
	if !ok {
		return s
	}

	claims, err := token.Decode(tokenStr)
	if err != nil || !claims.ValidAt(time.Now()) {
		creds.Delete()
		return s
	}

	s.tokenStr = tokenStr
	s.user = claims.Profile()
	s.hydrating = true
	go s.hydrate(ctx, fetcher, tokenStr)
	return s
}

// hydrate confirms the optimistic user against the remote API. A logout
// that lands first wins: the fetch result is discarded either way.
// Runs off the request goroutine, so a rollback only discards the
// credential in memory; the cookie purge is flushed later via FlushPurge.
func (s *Context) hydrate(ctx context.Context, fetcher ProfileFetcher, tokenStr string) {
	profile, err := fetcher.Me(ctx, tokenStr)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loggedOut {
		return
	}
	s.hydrating = false

	if err != nil {
		s.log.Warn("session hydration failed, rolling back", zap.Error(err))
		s.user = nil
		s.tokenStr = ""
		s.creds.Discard()
		s.purgePending = true
	} else {
		s.user = profile
	}
	s.notify()
}

// FlushPurge writes the cookie deletion for a hydration rollback. Must be
// called from the request goroutine before the response body goes out;
// rollbacks that never get flushed are retried on the next navigation.
func (s *Context) FlushPurge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.purgePending {
		return
	}
	s.purgePending = false
	s.creds.Delete()
}

// Login records a freshly authenticated user. The caller writes the cookie;
// this only flips the in-memory state.
func (s *Context) Login(profile *domain.UserProfile, tokenStr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = profile
	s.tokenStr = tokenStr
	s.hydrating = false
	s.loggedOut = false
	s.notify()
}

// Logout clears the session and purges the cookie. Idempotent, and
// terminal for any in-flight hydration: its result is discarded no matter
// when it lands.
func (s *Context) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedOut {
		return
	}
	s.loggedOut = true
	s.user = nil
	s.tokenStr = ""
	s.hydrating = false
	s.purgePending = false
	s.creds.Delete()
	s.notify()
}

// User returns the current user, or nil when unauthenticated.
func (s *Context) User() *domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether a user is currently set. During
// hydration this reflects the optimistic claims.
func (s *Context) IsAuthenticated() bool {
	return s.User() != nil
}

// Hydrating reports whether the background confirmation is still pending.
func (s *Context) Hydrating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrating
}

// Token returns the token string backing the session, or "" when
// unauthenticated.
func (s *Context) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenStr
}

// Updates signals state transitions (hydration settled, login, logout).
// The channel is buffered at one; receivers re-read the state after each
// signal rather than counting them.
func (s *Context) Updates() <-chan struct{} {
	return s.updates
}

// notify is called with s.mu held.
func (s *Context) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Provider installs a session Context on every request. It must run after
// the router's base middleware and before any handler that calls FromGin.
func Provider(fetcher ProfileFetcher, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := credentials.NewStore(c.Request, c.Writer)
		sess := NewContext(c.Request.Context(), creds, fetcher, log)
		c.Set(contextKey, sess)
		c.Next()
	}
}

// FromGin returns the request's session Context. Panics when Provider did
// not run; that is a wiring bug, not a runtime condition.
func FromGin(c *gin.Context) *Context {
	v, ok := c.Get(contextKey)
	if !ok {
		panic("session: FromGin called without the Provider middleware")
	}
	return v.(*Context)
}

// Credentials returns the cookie store bound to this request.
func (s *Context) Credentials() *credentials.Store {
	return s.creds
}
