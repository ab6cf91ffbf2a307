// Package handler wires HTTP routes to the service layer. Page handlers
// render HTML templates; the small JSON surface under /api uses the shared
// response envelope.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cursolab/cursolab/internal/domain"
	"github.com/cursolab/cursolab/internal/dto"
	"github.com/cursolab/cursolab/internal/service"
	"github.com/cursolab/cursolab/internal/session"
	"github.com/cursolab/cursolab/pkg/logger"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	auth          service.AuthService
	lastViewed    service.LastViewedService
	cookieTTLDays int
	log           *logger.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth service.AuthService, lastViewed service.LastViewedService, cookieTTLDays int, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		lastViewed:    lastViewed,
		cookieTTLDays: cookieTTLDays,
		log:           log,
	}
}

// ShowLogin handles GET /login - renders the login form
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	sess := session.FromGin(c)
	if sess.IsAuthenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Entrar"})
}

// Login handles POST /login - authenticates and opens a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Title": "Entrar", "Error": "Preencha email e senha"})
		return
	}
	if ok, msg := req.Validate(); !ok {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Title": "Entrar", "Error": msg, "Email": req.Email})
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Title": "Entrar", "Error": "Email ou senha incorretos", "Email": req.Email})
			return
		}
		h.log.Error("login failed", zap.Error(err))
		c.HTML(http.StatusBadGateway, "login.html", gin.H{"Title": "Entrar", "Error": "Serviço indisponível, tente novamente", "Email": req.Email})
		return
	}

	h.openSession(c, resp)
	c.Redirect(http.StatusFound, "/")
}

// ShowRegister handles GET /registro - renders the registration form
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	sess := session.FromGin(c)
	if sess.IsAuthenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", gin.H{"Title": "Criar conta"})
}

// Register handles POST /registro - creates an account and opens a session
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{"Title": "Criar conta", "Error": "Preencha todos os campos"})
		return
	}
	if ok, msg := req.Validate(); !ok {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{"Title": "Criar conta", "Error": msg, "Name": req.Name, "Email": req.Email})
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.HTML(http.StatusConflict, "register.html", gin.H{"Title": "Criar conta", "Error": "Este email já está cadastrado", "Name": req.Name, "Email": req.Email})
			return
		}
		h.log.Error("registration failed", zap.Error(err))
		c.HTML(http.StatusBadGateway, "register.html", gin.H{"Title": "Criar conta", "Error": "Serviço indisponível, tente novamente", "Name": req.Name, "Email": req.Email})
		return
	}

	h.openSession(c, resp)
	c.Redirect(http.StatusFound, "/")
}

// Logout handles POST /logout - drops the session, the cookie, and the
// user's continue-watching marker
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := session.FromGin(c)
	if user := sess.User(); user != nil {
		if err := h.lastViewed.Clear(c.Request.Context(), user.ID); err != nil {
			h.log.Warn("could not clear continue-watching marker", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}
	sess.Logout()
	c.Redirect(http.StatusFound, "/")
}

// openSession writes the token cookie and flips the in-memory session.
func (h *AuthHandler) openSession(c *gin.Context, resp *dto.AuthResponse) {
	sess := session.FromGin(c)
	sess.Credentials().Set(resp.Token, h.cookieTTLDays)

	role := domain.Role(resp.User.Role)
	if role == "" {
		role = domain.RoleUser
	}
	sess.Login(&domain.UserProfile{
		ID:    resp.User.ID,
		Email: resp.User.Email,
		Name:  resp.User.Name,
		Role:  role,
	}, resp.Token)
}
