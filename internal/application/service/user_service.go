package service

import (
	"context"
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

// CreateUserInput is the admin's new-user form.
type CreateUserInput struct {
	Name              string     `json:"name" binding:"required"`
	Email             string     `json:"email" binding:"required"`
	Password          string     `json:"password" binding:"required,min=8"`
	Role              string     `json:"role" binding:"required"`
	ManagerID         *uuid.UUID `json:"manager_id,omitempty"`
	IsManagerApprover bool       `json:"is_manager_approver"`
}

// UserService manages company user accounts. Creation is admin-only; the
// handler enforces the role, the service enforces the data.
type UserService interface {
	Create(ctx context.Context, actor *entity.User, in CreateUserInput) (*entity.User, error)
	Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.User, error)
	List(ctx context.Context, actor *entity.User) ([]*entity.User, error)
}

type userServiceImpl struct {
	userRepo port.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo port.UserRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{userRepo: userRepo, logger: logger}
}

func (s *userServiceImpl) Create(ctx context.Context, actor *entity.User, in CreateUserInput) (*entity.User, error) {
	if actor.Role != entity.RoleAdmin {
		return nil, ErrAccessDenied
	}
	if !entity.ValidRoles[in.Role] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, in.Role)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}

	// A manager reference must land inside the actor's own company.
	if in.ManagerID != nil {
		manager, err := s.userRepo.GetByID(ctx, *in.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("resolve manager: %w", err)
		}
		if manager.CompanyID != actor.CompanyID {
			return nil, ErrAccessDenied
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:                uuid.New(),
		Name:              utils.SanitizeString(in.Name),
		Email:             email,
		PasswordHash:      hash,
		Role:              in.Role,
		CompanyID:         actor.CompanyID,
		ManagerID:         in.ManagerID,
		IsManagerApprover: in.IsManagerApprover,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("id", user.ID.String()),
		zap.String("role", user.Role),
		zap.String("company_id", user.CompanyID.String()))
	return user, nil
}

func (s *userServiceImpl) Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.CompanyID != actor.CompanyID {
		return nil, port.ErrNotFound
	}
	return user, nil
}

func (s *userServiceImpl) List(ctx context.Context, actor *entity.User) ([]*entity.User, error) {
	return s.userRepo.ListByCompany(ctx, actor.CompanyID)
}
