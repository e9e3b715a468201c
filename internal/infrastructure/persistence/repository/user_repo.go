package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
	"github.com/expenzo/expenzo-server/pkg/database"
)

// UserRepository implements port.UserRepository on SQLite.
type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, name, email, password_hash, role, company_id, manager_id, is_manager_approver, created_at, updated_at`

// Create persists a new user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	var managerID interface{}
	if user.ManagerID != nil {
		managerID = user.ManagerID.String()
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, role, company_id, manager_id, is_manager_approver)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		user.ID.String(),
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CompanyID.String(),
		managerID,
		user.IsManagerApprover,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return port.ErrDuplicateEmail
		}
		r.logger.Error("Failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	return r.scanUser(row)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUser(row)
}

// ListByCompany retrieves all users of a company
func (r *UserRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.User, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = ? ORDER BY created_at, id`,
		companyID.String())
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()
	return r.collectUsers(rows)
}

// ListManagedBy retrieves the direct reports of a manager
func (r *UserRepository) ListManagedBy(ctx context.Context, managerID uuid.UUID) ([]*entity.User, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE manager_id = ? ORDER BY created_at, id`,
		managerID.String())
	if err != nil {
		r.logger.Error("Failed to list reports", zap.Error(err))
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()
	return r.collectUsers(rows)
}

// FirstByRole returns the earliest-created holder of the role in the company,
// or nil when the role is vacant. The deterministic ordering is what resolves
// multi-holder roles.
func (r *UserRepository) FirstByRole(ctx context.Context, companyID uuid.UUID, role string) (*entity.User, error) {
	row := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = ? AND role = ? ORDER BY created_at, id LIMIT 1`,
		companyID.String(), role)

	user, err := r.scanUser(row)
	if errors.Is(err, port.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *UserRepository) scanUser(row rowScanner) (*entity.User, error) {
	var user entity.User
	var rawID, rawCompanyID string
	var rawManagerID sql.NullString

	err := row.Scan(
		&rawID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&rawCompanyID,
		&rawManagerID,
		&user.IsManagerApprover,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if user.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", rawID, err)
	}
	if user.CompanyID, err = uuid.Parse(rawCompanyID); err != nil {
		return nil, fmt.Errorf("invalid company id %q: %w", rawCompanyID, err)
	}
	if rawManagerID.Valid {
		managerID, err := uuid.Parse(rawManagerID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid manager id %q: %w", rawManagerID.String, err)
		}
		user.ManagerID = &managerID
	}

	return &user, nil
}

func (r *UserRepository) collectUsers(rows *sql.Rows) ([]*entity.User, error) {
	var users []*entity.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
