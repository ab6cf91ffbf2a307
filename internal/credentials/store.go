// Package credentials is the single place that touches the session token
// cookie. Every other component goes through Store; nothing else in the
// app parses or writes cookies.
package credentials

import (
	"net/http"
	"sync"
	"time"
)

const (
	// CookieName is the cookie the remote authority's token is kept under.
	CookieName = "token"

	// DefaultTTLDays is applied when a caller does not specify a TTL.
	DefaultTTLDays = 7

	cookiePath = "/"
)

// Store reads and writes the credential cookie for one request/response
// pair. Reads go back to the request rather than a long-lived cached value;
// writes and deletions made earlier in the same request shadow the request
// cookie so later reads observe them.
//
// Set and Delete emit response headers and must only run on the request
// goroutine. Background work (session hydration) uses Discard, which flips
// the shadow state without touching the response writer; Get and Discard
// are safe from any goroutine.
type Store struct {
	mu sync.Mutex
	r  *http.Request
	w  http.ResponseWriter

	// deleted shadows the request cookie once Delete has run, so that
	// later reads within the same request see the credential as gone.
	deleted bool
	// replaced holds a value written during this request, visible to
	// later reads before the browser ever echoes it back.
	replaced string
}

// NewStore binds a credential store to a request/response pair.
func NewStore(r *http.Request, w http.ResponseWriter) *Store {
	return &Store{r: r, w: w}
}

// Get returns the stored token, if any.
func (s *Store) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return "", false
	}
	if s.replaced != "" {
		return s.replaced, true
	}
	c, err := s.r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Set stores the token, overwriting any previous value. ttlDays <= 0 falls
// back to DefaultTTLDays. There are no merge semantics: exactly one
// credential exists at a time.
func (s *Store) Set(value string, ttlDays int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttlDays <= 0 {
		ttlDays = DefaultTTLDays
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:    CookieName,
		Value:   value,
		Path:    cookiePath,
		Expires: time.Now().Add(time.Duration(ttlDays) * 24 * time.Hour),
	})
	s.deleted = false
	s.replaced = value
}

// Delete removes the credential. Deleting an absent credential is a no-op,
// never an error.
func (s *Store) Delete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	http.SetCookie(s.w, &http.Cookie{
		Name:    CookieName,
		Value:   "",
		Path:    cookiePath,
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	s.deleted = true
	s.replaced = ""
}

// Discard drops the credential from this request's view without emitting
// any response header. Same-request reads see it as gone; the cookie
// itself is purged later from a request goroutine.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = true
	s.replaced = ""
}
