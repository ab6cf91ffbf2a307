package di

import (
	"github.com/cursolab/cursolab/internal/api"
	"github.com/cursolab/cursolab/internal/handler"
	"github.com/cursolab/cursolab/internal/service"
	"github.com/cursolab/cursolab/internal/session"
	"github.com/cursolab/cursolab/pkg/config"
	"github.com/cursolab/cursolab/pkg/logger"
	"github.com/cursolab/cursolab/pkg/redis"
)

// Container holds all dependencies for the web app
type Container struct {
	// Infrastructure
	API   *api.Client
	Redis *redis.Client

	// Services
	AuthService       service.AuthService
	CourseService     service.CourseService
	LessonService     service.LessonService
	LastViewedService service.LastViewedService

	// Session
	Guard *session.Guard

	// Handlers
	AuthHandler      *handler.AuthHandler
	PageHandler      *handler.PageHandler
	AccountHandler   *handler.AccountHandler
	DashboardHandler *handler.DashboardHandler
	ProgressHandler  *handler.ProgressHandler
	HealthHandler    *handler.HealthHandler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, redisClient *redis.Client, log *logger.Logger) *Container {
	c := &Container{
		API:   api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, cfg.API.MaxRetries),
		Redis: redisClient,
	}

	// Initialize services
	c.AuthService = service.NewAuthService(c.API)
	c.CourseService = service.NewCourseService(c.API)
	c.LessonService = service.NewLessonService(c.API)
	c.LastViewedService = service.NewLastViewedService(c.Redis)

	// Session guard for protected route groups
	c.Guard = session.NewGuard(cfg.Session.GuardTimeout, log.Zap())

	// Initialize handlers
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, c.LastViewedService, cfg.Session.CookieTTLDays, log)
	c.PageHandler = handler.NewPageHandler(c.CourseService, c.LessonService, c.LastViewedService, log)
	c.AccountHandler = handler.NewAccountHandler()
	c.DashboardHandler = handler.NewDashboardHandler(c.AuthService, c.CourseService, c.LessonService, log)
	c.ProgressHandler = handler.NewProgressHandler(c.LastViewedService, log)
	c.HealthHandler = handler.NewHealthHandler(c.Redis)

	return c
}
