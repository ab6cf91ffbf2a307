// Package service sits between the handlers and the remote API: it owns
// the endpoint paths, translates API failures into sentinel errors, and
// wraps each operation in a trace span.
package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/cursolab/cursolab/internal/api"
	"github.com/cursolab/cursolab/internal/domain"
	"github.com/cursolab/cursolab/internal/dto"
	"github.com/cursolab/cursolab/pkg/telemetry"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
)

// AuthService authenticates against the remote API
type AuthService interface {
	// Login exchanges credentials for a token and profile
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Register creates an account; the API logs the user in on success
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// Me resolves a token to the profile it belongs to
	Me(ctx context.Context, token string) (*domain.UserProfile, error)
	// Count returns the number of registered users (admin only)
	Count(ctx context.Context, token string) (int64, error)
}

type authService struct {
	api *api.Client
}

// NewAuthService creates an AuthService backed by the remote API
func NewAuthService(client *api.Client) AuthService {
	return &authService{api: client}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "auth.login")
	defer span.End()

	var resp dto.AuthResponse
	if err := s.api.Post(ctx, "/auth/login", "", req, &resp); err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) || api.IsStatus(err, http.StatusBadRequest) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &resp, nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "auth.register")
	defer span.End()

	var resp dto.AuthResponse
	if err := s.api.Post(ctx, "/auth/register", "", req, &resp); err != nil {
		if api.IsStatus(err, http.StatusConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &resp, nil
}

func (s *authService) Me(ctx context.Context, token string) (*domain.UserProfile, error) {
	ctx, span := telemetry.StartSpan(ctx, "auth.me")
	defer span.End()

	var resp struct {
		User domain.UserProfile `json:"user"`
	}
	if err := s.api.Get(ctx, "/auth/me", token, &resp); err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) || api.IsStatus(err, http.StatusForbidden) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	profile := resp.User
	if profile.Role == "" {
		profile.Role = domain.RoleUser
	}
	return &profile, nil
}

func (s *authService) Count(ctx context.Context, token string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "auth.count")
	defer span.End()

	var resp struct {
		Count int64 `json:"count"`
	}
	if err := s.api.Get(ctx, "/auth/count", token, &resp); err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) || api.IsStatus(err, http.StatusForbidden) {
			return 0, ErrUnauthorized
		}
		return 0, err
	}
	return resp.Count, nil
}
