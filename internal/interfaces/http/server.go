// Package http provides the HTTP server adapter for the application layer.
// It is a thin layer that translates requests into application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/application/service"
	"github.com/expenzo/expenzo-server/internal/auth"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

// ExchangeRates exposes the raw upstream rate table for the integration
// endpoint. The expense path uses port.RateProvider instead.
type ExchangeRates interface {
	Latest(ctx context.Context, base string) (map[string]float64, error)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	UploadDir    string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		UploadDir:    "./uploads",
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine

	authService      service.AuthService
	userService      service.UserService
	companyService   service.CompanyService
	expenseService   service.ExpenseService
	analyticsService service.AnalyticsService

	userRepo  port.UserRepository
	tokens    *auth.TokenManager
	countries port.CountryProvider
	rates     ExchangeRates

	logger *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	authService service.AuthService,
	userService service.UserService,
	companyService service.CompanyService,
	expenseService service.ExpenseService,
	analyticsService service.AnalyticsService,
	userRepo port.UserRepository,
	tokens *auth.TokenManager,
	countries port.CountryProvider,
	rates ExchangeRates,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:           config,
		router:           gin.New(),
		authService:      authService,
		userService:      userService,
		companyService:   companyService,
		expenseService:   expenseService,
		analyticsService: analyticsService,
		userRepo:         userRepo,
		tokens:           tokens,
		countries:        countries,
		rates:            rates,
		logger:           logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.corsMiddleware())
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.authService, s.userService, s.companyService, s.expenseService, s.analyticsService, s.countries, s.rates, s.config.UploadDir, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")

	// Signup, login, and the country picker are reachable without a token.
	api.POST("/auth/signup", handlers.Signup)
	api.POST("/auth/login", handlers.Login)
	api.GET("/auth/countries", handlers.ListCountries)

	authed := api.Group("")
	authed.Use(s.authMiddleware())
	{
		authed.GET("/auth/me", handlers.Me)

		authed.GET("/users", handlers.ListUsers)
		authed.POST("/users", s.requireRoles(entity.RoleAdmin), handlers.CreateUser)

		authed.GET("/companies/:id", handlers.GetCompany)

		authed.POST("/expenses", handlers.CreateExpense)
		authed.GET("/expenses", handlers.ListExpenses)
		authed.GET("/expenses/:id", handlers.GetExpense)
		authed.POST("/expenses/:id/approve", handlers.DecideExpense)
		authed.POST("/expenses/extract", handlers.ExtractReceipt)

		authed.GET("/integration/countries", handlers.ListCountries)
		authed.GET("/integration/exchange", handlers.ExchangeRates)

		analytics := authed.Group("/analytics")
		{
			analytics.GET("/kpis", handlers.KPIs)
			analytics.GET("/timeseries", handlers.TimeSeries)
			analytics.GET("/categories", handlers.Categories)
			analytics.GET("/merchants", handlers.Merchants)
			analytics.GET("/approval-funnel", handlers.ApprovalFunnel)
			analytics.GET("/export", handlers.ExportExpenses)
		}
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
