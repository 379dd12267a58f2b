package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	apimiddleware "github.com/symone-ai/symone-admin/internal/api/middleware"
	"github.com/symone-ai/symone-admin/internal/analytics"
	"github.com/symone-ai/symone-admin/internal/auth"
	"github.com/symone-ai/symone-admin/internal/export"
	"github.com/symone-ai/symone-admin/internal/store"
)

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port              int
	ShutdownTimeout   time.Duration
	EnableCORS        bool
	JWTSecret         string
	JWTAccessTTL      time.Duration
	JWTRefreshTTL     time.Duration
	AllowedOrigins    []string
	MaxBodySize       string
	RateLimitRequests int
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:              8080,
		ShutdownTimeout:   10 * time.Second,
		EnableCORS:        true,
		JWTSecret:         "change-me-in-production-min-32-chars",
		JWTAccessTTL:      15 * time.Minute,
		JWTRefreshTTL:     7 * 24 * time.Hour, // 7 days
		AllowedOrigins:    []string{"http://localhost:3000"}, // dashboard dev server
		MaxBodySize:       "1M",
		RateLimitRequests: 100,
	}
}

// Server represents the HTTP API server
type Server struct {
	echo      *echo.Echo
	config    *ServerConfig
	store     *store.Store
	analytics *analytics.Service
	exporter  *export.Uploader
	auth      *auth.Auth
}

// NewServer creates a new API server
func NewServer(
	config *ServerConfig,
	store *store.Store,
	analyticsService *analytics.Service,
	exporter *export.Uploader,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Disable Echo's default logger, we'll use our own
	e.Logger.SetOutput(io.Discard)

	// Set custom validator
	e.Validator = NewValidator()

	// Create auth service
	authService := auth.NewAuth(
		config.JWTSecret,
		config.JWTAccessTTL,
		config.JWTRefreshTTL,
	)

	s := &Server{
		echo:      e,
		config:    config,
		store:     store,
		analytics: analyticsService,
		exporter:  exporter,
		auth:      authService,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware stack
func (s *Server) setupMiddleware() {
	// Recover from panics
	s.echo.Use(middleware.Recover())

	// Request ID for tracing
	s.echo.Use(middleware.RequestID())

	// Logging middleware
	s.echo.Use(apimiddleware.Logger())

	// CORS if enabled
	if s.config.EnableCORS {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     s.config.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true, // Required for cookies
			ExposeHeaders:    []string{echo.HeaderContentLength},
		}))
	}

	// Body limit
	s.echo.Use(middleware.BodyLimit(s.config.MaxBodySize))

	// Per-IP rate limit
	s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
		rate.Limit(s.config.RateLimitRequests),
	)))

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readyCheck)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Auth routes (public)
	authHandler := NewAuthHandler(s.store, s.auth)
	authGroup := v1.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/refresh", authHandler.Refresh)

	// Protected auth routes (require authentication)
	authProtected := authGroup.Group("", auth.RequireAuth(s.auth))
	authProtected.GET("/me", authHandler.GetMe)

	// Analytics routes (any admin role)
	analyticsHandler := NewAnalyticsHandler(s.analytics, s.exporter)
	analyticsGroup := v1.Group("/analytics", auth.RequireAuth(s.auth), auth.RequireAdmin())
	analyticsGroup.GET("/costs", analyticsHandler.GetCosts)
	analyticsGroup.GET("/teams/:id/users", analyticsHandler.GetTeamUserCosts)
	analyticsGroup.GET("/zombies", analyticsHandler.GetZombies)
	analyticsGroup.GET("/connections", analyticsHandler.GetConnections)
	analyticsGroup.GET("/overview", analyticsHandler.GetOverview)
	analyticsGroup.POST("/export", analyticsHandler.Export)

	// Admin management routes (super admin only)
	adminHandler := NewAdminHandler(s.store)
	adminsGroup := v1.Group("/admins", auth.RequireAuth(s.auth), auth.RequireSuperAdmin())
	adminsGroup.GET("", adminHandler.List)
	adminsGroup.POST("", adminHandler.Create)
	adminsGroup.PATCH("/:id/role", adminHandler.UpdateRole)
	adminsGroup.DELETE("/:id", adminHandler.Delete)
}

// healthCheck returns basic health status
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// readyCheck checks if server is ready to handle requests
func (s *Server) readyCheck(c echo.Context) error {
	// Check database connection
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "database unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	fmt.Printf("Starting API server on %s\n", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance for testing
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
