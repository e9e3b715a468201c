package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/application/service"
	"github.com/expenzo/expenzo-server/internal/domain/approval"
	"github.com/expenzo/expenzo-server/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	authService      service.AuthService
	userService      service.UserService
	companyService   service.CompanyService
	expenseService   service.ExpenseService
	analyticsService service.AnalyticsService
	countries        port.CountryProvider
	rates            ExchangeRates
	uploadDir        string
	logger           *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	authService service.AuthService,
	userService service.UserService,
	companyService service.CompanyService,
	expenseService service.ExpenseService,
	analyticsService service.AnalyticsService,
	countries port.CountryProvider,
	rates ExchangeRates,
	uploadDir string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		authService:      authService,
		userService:      userService,
		companyService:   companyService,
		expenseService:   expenseService,
		analyticsService: analyticsService,
		countries:        countries,
		rates:            rates,
		uploadDir:        uploadDir,
		logger:           logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// respondError maps service and domain sentinel errors onto status codes.
// Unknown errors become opaque 500s so internals never leak to clients.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
	case errors.Is(err, port.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Error: "not found"})
	case errors.Is(err, approval.ErrNotApprover), errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, Response{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, Response{Error: err.Error()})
	case errors.Is(err, approval.ErrExpenseFinalized),
		errors.Is(err, port.ErrVersionConflict),
		errors.Is(err, port.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, Response{Error: err.Error()})
	case errors.Is(err, approval.ErrInvalidDecision), errors.Is(err, service.ErrUnknownRole):
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
	case errors.Is(err, port.ErrExtractorUnavailable):
		c.JSON(http.StatusServiceUnavailable, Response{Error: err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, Response{Error: "internal server error"})
	}
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Error: msg})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respondOK(c, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// Signup handles POST /api/auth/signup
func (h *Handlers) Signup(c *gin.Context) {
	var in service.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// LoginRequest is the POST /api/auth/login body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, result)
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	respondOK(c, currentUser(c))
}

// CreateUser handles POST /api/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var in service.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondCreated(c, user)
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, users)
}

// GetCompany handles GET /api/companies/:id
func (h *Handlers) GetCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid company id")
		return
	}

	company, err := h.companyService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, company)
}

// ListCountries handles GET /api/auth/countries and /api/integration/countries
func (h *Handlers) ListCountries(c *gin.Context) {
	respondOK(c, h.countries.Countries(c.Request.Context()))
}

// ExchangeRates handles GET /api/integration/exchange?base=USD
func (h *Handlers) ExchangeRates(c *gin.Context) {
	base := c.DefaultQuery("base", "USD")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rates, err := h.rates.Latest(ctx, base)
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Error: "exchange rate provider unavailable"})
		return
	}
	respondOK(c, gin.H{"base": base, "rates": rates})
}

// isValidationError reports whether err came from input validation rather
// than a downstream failure.
func isValidationError(err error) bool {
	var ve *utils.ValidationError
	return errors.As(err, &ve)
}
