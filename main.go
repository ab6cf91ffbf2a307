package main

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cursolab/cursolab/internal/di"
	"github.com/cursolab/cursolab/internal/middleware"
	"github.com/cursolab/cursolab/internal/session"
	"github.com/cursolab/cursolab/pkg/config"
	"github.com/cursolab/cursolab/pkg/logger"
	"github.com/cursolab/cursolab/pkg/redis"
	"github.com/cursolab/cursolab/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting cursolab web...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry init failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Warn(fmt.Sprintf("Telemetry shutdown: %v", err))
		}
	}()

	// Initialize Redis (continue-watching markers)
	redisClient, err := redis.NewClient(ctx, &redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Build dependency injection container
	container := di.NewContainer(cfg, redisClient, appLog)

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	router.Use(middleware.CORSWithConfig(corsCfg))
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))

	router.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	})
	router.LoadHTMLGlob("web/templates/*.html")
	router.Static("/static", "web/static")

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Route-level access control, then the per-request session
	router.Use(middleware.SessionGate(appLog.Zap()))
	router.Use(session.Provider(container.AuthService, appLog.Zap()))

	// Public pages
	router.GET("/", container.PageHandler.Home)
	router.GET("/curso/:id", container.PageHandler.Course)
	router.GET("/curso/:id/aula/:lessonID", container.PageHandler.Lesson)
	router.GET("/login", container.AuthHandler.ShowLogin)
	router.POST("/login", container.AuthHandler.Login)
	router.GET("/registro", container.AuthHandler.ShowRegister)
	router.POST("/registro", container.AuthHandler.Register)
	router.POST("/logout", container.AuthHandler.Logout)

	// JSON surface
	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/progress", container.ProgressHandler.Record)
	}

	// Signed-in area
	account := router.Group("/conta", container.Guard.Protect())
	{
		account.GET("", container.AccountHandler.Show)
	}

	// Admin area
	dashboard := router.Group("/dashboard", container.Guard.ProtectAdmin())
	{
		dashboard.GET("", container.DashboardHandler.Index)
		dashboard.GET("/cursos/novo", container.DashboardHandler.NewCourse)
		dashboard.POST("/cursos", container.DashboardHandler.CreateCourse)
		dashboard.GET("/cursos/:id", container.DashboardHandler.EditCourse)
		dashboard.POST("/cursos/:id", container.DashboardHandler.UpdateCourse)
		dashboard.POST("/cursos/:id/excluir", container.DashboardHandler.DeleteCourse)
		dashboard.POST("/aulas", container.DashboardHandler.CreateLesson)
		dashboard.POST("/aulas/:id", container.DashboardHandler.UpdateLesson)
		dashboard.POST("/aulas/:id/excluir", container.DashboardHandler.DeleteLesson)
	}

	router.NoRoute(container.PageHandler.NotFound)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("cursolab web listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
