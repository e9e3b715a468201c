package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
	"github.com/expenzo/expenzo-server/pkg/database"
)

// CompanyRepository implements port.CompanyRepository on SQLite. The approval
// sequence and conditional rules are stored as JSON columns; their configured
// order is the evaluation order.
type CompanyRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *database.DB, logger *zap.Logger) port.CompanyRepository {
	return &CompanyRepository{db: db, logger: logger}
}

// Create persists a new company
func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	sequence, err := json.Marshal(company.ApprovalSequence)
	if err != nil {
		return fmt.Errorf("failed to marshal approval sequence: %w", err)
	}
	rules, err := json.Marshal(company.ConditionalRules)
	if err != nil {
		return fmt.Errorf("failed to marshal conditional rules: %w", err)
	}

	query := `
		INSERT INTO companies (id, name, country, currency_code, approval_sequence, conditional_rules)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		company.ID.String(),
		company.Name,
		company.Country,
		company.CurrencyCode,
		string(sequence),
		string(rules),
	)
	if err != nil {
		r.logger.Error("Failed to create company", zap.Error(err))
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	query := `
		SELECT id, name, country, currency_code, approval_sequence, conditional_rules,
			created_at, updated_at
		FROM companies
		WHERE id = ?
	`

	var company entity.Company
	var rawID, sequence, rules string

	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id.String()).Scan(
		&rawID,
		&company.Name,
		&company.Country,
		&company.CurrencyCode,
		&sequence,
		&rules,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get company", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	company.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id %q: %w", rawID, err)
	}
	if err := json.Unmarshal([]byte(sequence), &company.ApprovalSequence); err != nil {
		return nil, fmt.Errorf("failed to unmarshal approval sequence: %w", err)
	}
	if err := json.Unmarshal([]byte(rules), &company.ConditionalRules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditional rules: %w", err)
	}

	return &company, nil
}
