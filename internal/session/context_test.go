package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/cursolab/cursolab/internal/credentials"
	"github.com/cursolab/cursolab/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validToken(t *testing.T) string {
	return signToken(t, jwt.MapClaims{
		"id":    int64(7),
		"email": "maria@example.com",
		"name":  "Maria",
		"role":  "USER",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
}

type stubFetcher struct {
	profile *domain.UserProfile
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (f *stubFetcher) Me(ctx context.Context, tokenString string) (*domain.UserProfile, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.profile, f.err
}

func newCreds(tokenString string) *credentials.Store {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if tokenString != "" {
		r.AddCookie(&http.Cookie{Name: credentials.CookieName, Value: tokenString})
	}
	return credentials.NewStore(r, httptest.NewRecorder())
}

func waitSettled(t *testing.T, sess *Context) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for sess.Hydrating() {
		select {
		case <-sess.Updates():
		case <-deadline:
			t.Fatal("hydration never settled")
		}
	}
}

func TestNewContextWithoutCookie(t *testing.T) {
	fetcher := &stubFetcher{}
	sess := NewContext(context.Background(), newCreds(""), fetcher, zap.NewNop())

	if sess.IsAuthenticated() {
		t.Error("IsAuthenticated() = true without a cookie")
	}
	if sess.Hydrating() {
		t.Error("Hydrating() = true without a cookie")
	}
	if n := fetcher.calls.Load(); n != 0 {
		t.Errorf("fetcher called %d times, want 0", n)
	}
}

func TestNewContextPurgesExpiredToken(t *testing.T) {
	expired := signToken(t, jwt.MapClaims{
		"id": int64(7), "email": "a@b.c", "exp": time.Now().Add(-time.Minute).Unix(),
	})
	creds := newCreds(expired)
	sess := NewContext(context.Background(), creds, &stubFetcher{}, zap.NewNop())

	if sess.IsAuthenticated() {
		t.Error("IsAuthenticated() = true with an expired token")
	}
	if _, ok := creds.Get(); ok {
		t.Error("expired token was not purged from the store")
	}
}

func TestNewContextPurgesMalformedToken(t *testing.T) {
	creds := newCreds("not-a-jwt")
	sess := NewContext(context.Background(), creds, &stubFetcher{}, zap.NewNop())

	if sess.IsAuthenticated() {
		t.Error("IsAuthenticated() = true with a malformed token")
	}
	if _, ok := creds.Get(); ok {
		t.Error("malformed token was not purged from the store")
	}
}

func TestOptimisticThenConfirmed(t *testing.T) {
	confirmed := &domain.UserProfile{ID: 7, Email: "maria@example.com", Name: "Maria Silva", Role: domain.RoleUser}
	fetcher := &stubFetcher{profile: confirmed, delay: 20 * time.Millisecond}
	sess := NewContext(context.Background(), newCreds(validToken(t)), fetcher, zap.NewNop())

	// Claims are trusted before the remote check finishes.
	if !sess.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = false before hydration settled")
	}
	if got := sess.User().Name; got != "Maria" {
		t.Errorf("optimistic Name = %q, want claims value", got)
	}

	waitSettled(t, sess)
	if got := sess.User(); got != confirmed {
		t.Errorf("User() = %+v, want the fetched profile", got)
	}
}

func TestHydrationFailureRollsBack(t *testing.T) {
	creds := newCreds(validToken(t))
	fetcher := &stubFetcher{err: errors.New("401 unauthorized")}
	sess := NewContext(context.Background(), creds, fetcher, zap.NewNop())

	waitSettled(t, sess)

	if sess.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after failed hydration")
	}
	if _, ok := creds.Get(); ok {
		t.Error("token survived a failed hydration")
	}
	if sess.Token() != "" {
		t.Error("Token() non-empty after rollback")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	creds := newCreds(validToken(t))
	sess := NewContext(context.Background(), creds, &stubFetcher{profile: &domain.UserProfile{ID: 7}}, zap.NewNop())

	sess.Logout()
	sess.Logout()
	sess.Logout()

	if sess.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after logout")
	}
	if _, ok := creds.Get(); ok {
		t.Error("token survived logout")
	}
}

func TestLogoutWinsOverInFlightHydration(t *testing.T) {
	creds := newCreds(validToken(t))
	fetcher := &stubFetcher{
		profile: &domain.UserProfile{ID: 7, Name: "Maria"},
		delay:   50 * time.Millisecond,
	}
	sess := NewContext(context.Background(), creds, fetcher, zap.NewNop())

	sess.Logout()
	time.Sleep(100 * time.Millisecond) // let the slow fetch land

	if sess.IsAuthenticated() {
		t.Error("a late hydration result resurrected a logged-out session")
	}
	if _, ok := creds.Get(); ok {
		t.Error("token present after logout")
	}
}

func TestHydrationFailureNeverWritesResponse(t *testing.T) {
	// On a public page the handler streams the body while the rollback
	// lands; the background goroutine must leave the response writer
	// alone. Run with the race detector.
	fetcher := &stubFetcher{err: errors.New("401 unauthorized"), delay: 2 * time.Millisecond}

	router := gin.New()
	router.Use(Provider(fetcher, zap.NewNop()))
	router.GET("/", func(c *gin.Context) {
		sess := FromGin(c)
		for i := 0; i < 20; i++ {
			if _, err := c.Writer.WriteString("chunk\n"); err != nil {
				t.Errorf("write: %v", err)
			}
			c.Writer.Flush()
			time.Sleep(time.Millisecond)
		}
		// The rollback has flipped the in-memory state by now.
		_ = sess.IsAuthenticated()
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: credentials.CookieName, Value: validToken(t)})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if got := w.Header().Get("Set-Cookie"); got != "" {
		t.Errorf("background rollback wrote Set-Cookie %q mid-response", got)
	}
}

func TestFlushPurgeDeletesCookieOnce(t *testing.T) {
	creds := newCreds(validToken(t))
	fetcher := &stubFetcher{err: errors.New("401 unauthorized")}
	sess := NewContext(context.Background(), creds, fetcher, zap.NewNop())
	waitSettled(t, sess)

	sess.FlushPurge()
	sess.FlushPurge() // second flush is a no-op

	if _, ok := creds.Get(); ok {
		t.Error("credential still readable after the purge was flushed")
	}
}

func TestLoginSetsUser(t *testing.T) {
	sess := NewContext(context.Background(), newCreds(""), &stubFetcher{}, zap.NewNop())

	profile := &domain.UserProfile{ID: 3, Email: "admin@example.com", Role: domain.RoleAdmin}
	sess.Login(profile, "signed.token.here")

	if got := sess.User(); got != profile {
		t.Errorf("User() = %+v", got)
	}
	if sess.Token() != "signed.token.here" {
		t.Errorf("Token() = %q", sess.Token())
	}
}

func TestFromGinPanicsWithoutProvider(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("FromGin did not panic outside the Provider middleware")
		}
	}()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	FromGin(c)
}

func TestProviderInstallsContext(t *testing.T) {
	router := gin.New()
	router.Use(Provider(&stubFetcher{}, zap.NewNop()))
	router.GET("/", func(c *gin.Context) {
		sess := FromGin(c)
		if sess.IsAuthenticated() {
			t.Error("fresh visitor should not be authenticated")
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
