package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func userToken(t *testing.T, role string, exp int64) string {
	return sign(t, jwt.MapClaims{
		"id":    float64(1),
		"email": "user@exemplo.com",
		"name":  "User",
		"role":  role,
		"exp":   exp,
	})
}

func TestDecideAccess_PublicPath(t *testing.T) {
	d := DecideAccess("/curso/9", "", "", time.Now())
	if d.State != GateAllowed || d.Redirect != "" {
		t.Errorf("public path: got state=%v redirect=%q, want allowed", d.State, d.Redirect)
	}
}

func TestDecideAccess_NoToken(t *testing.T) {
	for _, path := range []string{"/conta", "/dashboard", "/dashboard/cursos"} {
		d := DecideAccess(path, "", "", time.Now())
		if d.State != GateNoToken {
			t.Errorf("%s: state = %v, want GateNoToken", path, d.State)
		}
		if d.Redirect != "/login" {
			t.Errorf("%s: redirect = %q, want /login", path, d.Redirect)
		}
	}
}

func TestDecideAccess_MalformedToken(t *testing.T) {
	d := DecideAccess("/conta", "", "single-segment-garbage", time.Now())
	if d.State != GateInvalidToken {
		t.Errorf("state = %v, want GateInvalidToken", d.State)
	}
	if d.Redirect != "/login" {
		t.Errorf("redirect = %q, want /login (same outcome as missing token)", d.Redirect)
	}
}

func TestDecideAccess_ExpiryBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name string
		exp  int64
		want GateState
	}{
		{"expired one second ago", now.Unix() - 1, GateExpired},
		{"expires exactly now", now.Unix(), GateExpired},
		{"expires in one second", now.Unix() + 1, GateAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := userToken(t, "USER", tt.exp)
			d := DecideAccess("/conta", "", tok, now)
			if d.State != tt.want {
				t.Errorf("state = %v, want %v", d.State, tt.want)
			}
		})
	}
}

func TestDecideAccess_RoleGating(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	// USER on an admin path goes home, never to login.
	d := DecideAccess("/dashboard", "", userToken(t, "USER", exp), time.Now())
	if d.State != GateInsufficientRole {
		t.Fatalf("state = %v, want GateInsufficientRole", d.State)
	}
	if d.Redirect != "/" {
		t.Errorf("redirect = %q, want / (home, not login)", d.Redirect)
	}

	// ADMIN passes.
	d = DecideAccess("/dashboard", "", userToken(t, "ADMIN", exp), time.Now())
	if d.State != GateAllowed {
		t.Errorf("admin state = %v, want GateAllowed", d.State)
	}

	// USER on a merely protected path passes.
	d = DecideAccess("/conta", "", userToken(t, "USER", exp), time.Now())
	if d.State != GateAllowed {
		t.Errorf("user on /conta state = %v, want GateAllowed", d.State)
	}
}

func TestDecideAccess_BearerPreferredOverCookie(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	bearer := userToken(t, "ADMIN", exp)
	cookie := userToken(t, "USER", exp)

	d := DecideAccess("/dashboard", bearer, cookie, time.Now())
	if d.State != GateAllowed {
		t.Errorf("state = %v, want GateAllowed (bearer token wins)", d.State)
	}
}

func TestDecideAccess_NestedRole(t *testing.T) {
	tok := sign(t, jwt.MapClaims{
		"id":   float64(2),
		"exp":  time.Now().Add(time.Hour).Unix(),
		"user": map[string]interface{}{"role": "ADMIN"},
	})
	d := DecideAccess("/dashboard", "", tok, time.Now())
	if d.State != GateAllowed {
		t.Errorf("state = %v, want GateAllowed via nested user.role", d.State)
	}
}

func TestSessionGate_RedirectsAndAborts(t *testing.T) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)

	handlerRan := false
	r.Use(SessionGate(zap.NewNop()))
	r.GET("/dashboard", func(c *gin.Context) { handlerRan = true })

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if handlerRan {
		t.Error("handler ran despite gate redirect")
	}
}

func TestSessionGate_AllowsWithCookie(t *testing.T) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)

	r.Use(SessionGate(zap.NewNop()))
	r.GET("/conta", func(c *gin.Context) {
		claims, ok := GateClaims(c)
		if !ok || claims.Email != "user@exemplo.com" {
			t.Error("expected gate claims in context")
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/conta", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: userToken(t, "USER", time.Now().Add(time.Hour).Unix())})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := bearerToken(req); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
