package server

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/goleaf/api-todo-app/docs"
	httpHandlers "github.com/goleaf/api-todo-app/internal/adapters/http"
	"github.com/goleaf/api-todo-app/internal/adapters/repository"
	"github.com/goleaf/api-todo-app/internal/application/services"
	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/infrastructure/config"
	"github.com/goleaf/api-todo-app/internal/infrastructure/database"
	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/infrastructure/metrics"
	"github.com/goleaf/api-todo-app/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	db      *database.DB
	redis   *redis.Client
	metrics *metrics.Metrics
}

// Deps are the long-lived resources the server is built on. Redis is nil
// when the counts cache runs in memory.
type Deps struct {
	DB      *database.DB
	Redis   *redis.Client
	Cache   ports.CacheRepository
	Metrics *metrics.Metrics
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()
	e.Validator = httpHandlers.NewValidator()
	e.HideBanner = true
	e.Debug = cfg.App.IsDevelopment()
	e.HidePort = true
	e.HTTPErrorHandler = httpHandlers.ErrorHandler(appLogger)

	// Initialize repositories
	db := deps.DB.DB
	repos := services.Repositories{
		Users:      repository.NewUserRepository(db),
		Tasks:      repository.NewTaskRepository(db),
		Categories: repository.NewCategoryRepository(db),
		Tags:       repository.NewTagRepository(db),
		SmartTags:  repository.NewSmartTagRepository(db),
	}
	authRepo := repository.NewAuthRepository(db)

	// Initialize services
	authService := services.NewAuthService(repos.Users, authRepo, cfg.JWT, appLogger)
	userService := services.NewUserService(repos.Users, appLogger)
	taskService := services.NewTaskService(repos, deps.Cache, cfg, deps.Metrics, appLogger)
	smartTagService := services.NewSmartTagService(repos, deps.Cache, cfg, deps.Metrics, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(authService, userService, appLogger)
	taskHandler := httpHandlers.NewTaskHandler(taskService, appLogger)
	smartTagHandler := httpHandlers.NewSmartTagHandler(smartTagService, appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		db:      deps.DB,
		redis:   deps.Redis,
		metrics: deps.Metrics,
	}

	server.setupMiddleware()
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}
	server.setupRoutes(authHandler, taskHandler, smartTagHandler, authService)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			reqLogger := s.logger.WithRequestID(values.RequestID)
			latency := float64(values.Latency.Nanoseconds()) / 1000000

			if values.Error != nil {
				reqLogger.WithError(values.Error).Errorw("HTTP request failed",
					"method", values.Method,
					"uri", values.URI,
					"status", values.Status,
					"latency_ms", latency,
					"remote_ip", values.RemoteIP,
				)
				return nil
			}
			reqLogger.LogHTTPRequest(values.Method, values.URI, values.UserAgent, values.RemoteIP, values.Status, latency)
			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))

	// Requests per window, spread evenly over the window.
	perSecond := float64(s.config.Security.RateLimitRequests) / s.config.Security.RateLimitWindow.Seconds()
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     s.config.Security.RateLimitRequests,
			ExpiresIn: s.config.Security.RateLimitWindow,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, ports.ErrorResponse{Message: "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, ports.ErrorResponse{Message: "rate limit exceeded"})
		},
	}))

	secure := middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}
	if s.config.App.IsProduction() {
		secure.HSTSMaxAge = 31536000
	}
	s.echo.Use(middleware.SecureWithConfig(secure))

	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: s.config.Server.WriteTimeout,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/swagger")
		},
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(authHandler *httpHandlers.AuthHandler, taskHandler *httpHandlers.TaskHandler, smartTagHandler *httpHandlers.SmartTagHandler, authService ports.AuthService) {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := s.echo.Group("/api/v1")
	requireAuth := s.authMiddleware(authService)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.RefreshToken)
	authGroup.POST("/logout", authHandler.Logout, requireAuth)

	userGroup := v1.Group("/users", requireAuth)
	userGroup.GET("/me", authHandler.Me)
	userGroup.POST("", authHandler.CreateUser, s.requireRole(entities.UserRoleAdmin))

	smartTagGroup := v1.Group("/smart-tags", requireAuth)
	smartTagGroup.GET("", smartTagHandler.ListSmartTags)
	smartTagGroup.POST("", smartTagHandler.CreateSmartTag)
	smartTagGroup.GET("/counts", smartTagHandler.SmartTagCounts)
	smartTagGroup.POST("/preview", smartTagHandler.PreviewSmartTag)
	smartTagGroup.GET("/:id", smartTagHandler.GetSmartTag)
	smartTagGroup.PUT("/:id", smartTagHandler.UpdateSmartTag)
	smartTagGroup.DELETE("/:id", smartTagHandler.DeleteSmartTag)
	smartTagGroup.GET("/:id/tasks", smartTagHandler.SmartTagTasks)
	smartTagGroup.GET("/:id/tasks/:taskId/match", smartTagHandler.EvaluateSmartTag)

	taskGroup := v1.Group("/tasks", requireAuth)
	taskGroup.GET("", taskHandler.ListTasks)
	taskGroup.POST("", taskHandler.CreateTask)
	taskGroup.GET("/:id", taskHandler.GetTask)
	taskGroup.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
	taskGroup.DELETE("/:id", taskHandler.DeleteTask)

	categoryGroup := v1.Group("/categories", requireAuth)
	categoryGroup.GET("", taskHandler.ListCategories)
	categoryGroup.POST("", taskHandler.CreateCategory)

	tagGroup := v1.Group("/tags", requireAuth)
	tagGroup.GET("", taskHandler.ListTags)
	tagGroup.POST("", taskHandler.CreateTag)
}

// setupMetrics records every request and exposes the registry on /metrics
func (s *Server) setupMetrics() {
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler pick the status before it is recorded.
				c.Error(err)
			}

			s.metrics.HTTPRequests.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(c.Response().Status),
			).Inc()
			s.metrics.HTTPDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(time.Since(start).Seconds())

			// Already rendered; outer middleware still sees it for logging.
			return err
		}
	})

	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		checks["database"] = map[string]interface{}{"status": "ok", "stats": s.db.GetConnectionInfo()}
	}

	if s.redis == nil {
		checks["cache"] = map[string]interface{}{"status": "ok", "backend": "memory"}
	} else if err := s.redis.Ping(c.Request().Context()).Err(); err != nil {
		// The counts cache degrades to recomputing, so Redis does not fail the check.
		checks["cache"] = map[string]interface{}{"status": "degraded", "backend": "redis", "error": err.Error()}
	} else {
		checks["cache"] = map[string]interface{}{"status": "ok", "backend": "redis"}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  runtime.Version(),
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.HealthCheck(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)

	srv := &http.Server{
		Addr:         address,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}
	return s.echo.StartServer(srv)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}
