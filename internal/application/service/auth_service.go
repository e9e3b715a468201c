package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/auth"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
	"github.com/expenzo/expenzo-server/pkg/utils"
)

// SignupInput carries the first-signup form: the admin account and the
// company it bootstraps.
type SignupInput struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	CompanyName string `json:"company_name" binding:"required"`
	Country     string `json:"country" binding:"required"`
}

// AuthResult is a successful signup or login: the user plus a session token.
type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles signup bootstrap and login.
type AuthService interface {
	// Signup creates a company (currency derived from the chosen country,
	// default approval chain seeded) and its admin user atomically.
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)

	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authServiceImpl struct {
	userRepo    port.UserRepository
	companyRepo port.CompanyRepository
	countries   port.CountryProvider
	tokens      *auth.TokenManager
	txManager   port.TransactionManager
	logger      *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo port.UserRepository,
	companyRepo port.CompanyRepository,
	countries port.CountryProvider,
	tokens *auth.TokenManager,
	txManager port.TransactionManager,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		countries:   countries,
		tokens:      tokens,
		txManager:   txManager,
		logger:      logger,
	}
}

func (s *authServiceImpl) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	company := &entity.Company{
		ID:               uuid.New(),
		Name:             utils.SanitizeString(in.CompanyName),
		Country:          utils.SanitizeString(in.Country),
		CurrencyCode:     s.countries.CurrencyFor(ctx, in.Country),
		ApprovalSequence: entity.DefaultApprovalSequence(),
		ConditionalRules: entity.DefaultConditionalRules(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	user := &entity.User{
		ID:           uuid.New(),
		Name:         utils.SanitizeString(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		CompanyID:    company.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.companyRepo.Create(txCtx, company); err != nil {
			return fmt.Errorf("create company: %w", err)
		}
		if err := s.userRepo.Create(txCtx, user); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, port.ErrDuplicateEmail) {
			return nil, port.ErrDuplicateEmail
		}
		s.logger.Error("Signup failed", zap.Error(err), zap.String("email", email))
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("Company bootstrapped",
		zap.String("company_id", company.ID.String()),
		zap.String("currency", company.CurrencyCode),
		zap.String("admin_id", user.ID.String()))

	return &AuthResult{User: user, Token: token}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login lookup failed", zap.Error(err))
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}
