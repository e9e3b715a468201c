package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
	"github.com/expenzo/expenzo-server/pkg/database"
)

// ExpenseRepository implements port.ExpenseRepository on SQLite. Amounts are
// stored as decimal strings; approval steps live in their own table, ordered
// by sequence step.
type ExpenseRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *database.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{db: db, logger: logger}
}

const expenseColumns = `id, employee_id, company_id, amount_original, currency_original,
	amount_company_currency, rate_defaulted, category, description, date,
	receipt_image_path, extracted_fields, status, auto_approved, version,
	created_at, updated_at`

// Create persists the expense together with its approver queue. Callers wrap
// this in a transaction so no partial expense is ever visible.
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	var extracted interface{}
	if expense.Extracted != nil {
		data, err := json.Marshal(expense.Extracted)
		if err != nil {
			return fmt.Errorf("failed to marshal extracted fields: %w", err)
		}
		extracted = string(data)
	}

	query := `
		INSERT INTO expenses (
			id, employee_id, company_id, amount_original, currency_original,
			amount_company_currency, rate_defaulted, category, description, date,
			receipt_image_path, extracted_fields, status, auto_approved, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	exec := r.db.Executor(ctx)
	_, err := exec.ExecContext(ctx, query,
		expense.ID.String(),
		expense.EmployeeID.String(),
		expense.CompanyID.String(),
		expense.AmountOriginal.String(),
		expense.CurrencyOriginal,
		expense.AmountCompanyCurrency.String(),
		expense.RateDefaulted,
		expense.Category,
		expense.Description,
		expense.Date,
		expense.ReceiptImagePath,
		extracted,
		expense.Status,
		expense.AutoApproved,
		expense.Version,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	for i := range expense.Approvers {
		step := &expense.Approvers[i]
		step.ExpenseID = expense.ID
		_, err := exec.ExecContext(ctx, `
			INSERT INTO approval_steps (id, expense_id, approver_id, role, sequence_step, decision, comment)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			step.ID.String(),
			step.ExpenseID.String(),
			step.ApproverID.String(),
			step.Role,
			step.SequenceStep,
			step.Decision,
			step.Comment,
		)
		if err != nil {
			r.logger.Error("Failed to create approval step", zap.Error(err))
			return fmt.Errorf("failed to create approval step: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an expense with its approver queue
func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error) {
	row := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id.String())

	expense, err := r.scanExpense(row)
	if err != nil {
		return nil, err
	}
	if err := r.attachSteps(ctx, []*entity.Expense{expense}); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListByCompany retrieves all expenses of a company, newest first
func (r *ExpenseRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.Expense, error) {
	return r.list(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE company_id = ? ORDER BY created_at DESC`,
		companyID.String())
}

// ListByEmployee retrieves the expenses filed by one employee, newest first
func (r *ExpenseRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*entity.Expense, error) {
	return r.list(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE employee_id = ? ORDER BY created_at DESC`,
		employeeID.String())
}

// ListVisibleToManager retrieves expenses filed by the manager's reports plus
// expenses carrying a pending approval step for the manager.
func (r *ExpenseRepository) ListVisibleToManager(ctx context.Context, companyID, managerID uuid.UUID) ([]*entity.Expense, error) {
	query := `
		SELECT ` + expenseColumns + ` FROM expenses
		WHERE company_id = ? AND (
			employee_id IN (SELECT id FROM users WHERE manager_id = ?)
			OR id IN (
				SELECT expense_id FROM approval_steps
				WHERE approver_id = ? AND decision = 'pending'
			)
		)
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, companyID.String(), managerID.String(), managerID.String())
}

// UpdateDecision persists one decision application: the mutated step plus the
// expense's status, auto-approved flag, and bumped version. The version check
// serializes concurrent approvers; the step's pending guard backs up the
// idempotence invariant at the storage layer.
func (r *ExpenseRepository) UpdateDecision(ctx context.Context, expense *entity.Expense, step *entity.ApprovalStep) error {
	exec := r.db.Executor(ctx)

	res, err := exec.ExecContext(ctx, `
		UPDATE approval_steps
		SET decision = ?, comment = ?, decided_at = ?
		WHERE id = ? AND decision = 'pending'
	`,
		step.Decision, step.Comment, step.DecidedAt, step.ID.String())
	if err != nil {
		r.logger.Error("Failed to update approval step", zap.Error(err))
		return fmt.Errorf("failed to update approval step: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read step update result: %w", err)
	} else if n == 0 {
		return port.ErrVersionConflict
	}

	res, err = exec.ExecContext(ctx, `
		UPDATE expenses
		SET status = ?, auto_approved = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`,
		expense.Status, expense.AutoApproved, expense.ID.String(), expense.Version)
	if err != nil {
		r.logger.Error("Failed to update expense", zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read expense update result: %w", err)
	} else if n == 0 {
		return port.ErrVersionConflict
	}

	expense.Version++
	return nil
}

func (r *ExpenseRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Expense, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*entity.Expense
	for rows.Next() {
		expense, err := r.scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachSteps(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *ExpenseRepository) scanExpense(row rowScanner) (*entity.Expense, error) {
	var expense entity.Expense
	var rawID, rawEmployeeID, rawCompanyID string
	var rawAmountOriginal, rawAmountCompany string
	var receiptPath sql.NullString
	var extracted sql.NullString

	err := row.Scan(
		&rawID,
		&rawEmployeeID,
		&rawCompanyID,
		&rawAmountOriginal,
		&expense.CurrencyOriginal,
		&rawAmountCompany,
		&expense.RateDefaulted,
		&expense.Category,
		&expense.Description,
		&expense.Date,
		&receiptPath,
		&extracted,
		&expense.Status,
		&expense.AutoApproved,
		&expense.Version,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	if expense.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("invalid expense id %q: %w", rawID, err)
	}
	if expense.EmployeeID, err = uuid.Parse(rawEmployeeID); err != nil {
		return nil, fmt.Errorf("invalid employee id %q: %w", rawEmployeeID, err)
	}
	if expense.CompanyID, err = uuid.Parse(rawCompanyID); err != nil {
		return nil, fmt.Errorf("invalid company id %q: %w", rawCompanyID, err)
	}
	if expense.AmountOriginal, err = decimal.NewFromString(rawAmountOriginal); err != nil {
		return nil, fmt.Errorf("invalid original amount %q: %w", rawAmountOriginal, err)
	}
	if expense.AmountCompanyCurrency, err = decimal.NewFromString(rawAmountCompany); err != nil {
		return nil, fmt.Errorf("invalid converted amount %q: %w", rawAmountCompany, err)
	}
	if receiptPath.Valid {
		expense.ReceiptImagePath = receiptPath.String
	}
	if extracted.Valid && extracted.String != "" {
		var fields entity.ExtractedFields
		if err := json.Unmarshal([]byte(extracted.String), &fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extracted fields: %w", err)
		}
		expense.Extracted = &fields
	}

	return &expense, nil
}

// attachSteps loads the approver queues for a batch of expenses in one query.
func (r *ExpenseRepository) attachSteps(ctx context.Context, expenses []*entity.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*entity.Expense, len(expenses))
	placeholders := make([]string, 0, len(expenses))
	args := make([]interface{}, 0, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
		placeholders = append(placeholders, "?")
		args = append(args, e.ID.String())
	}

	query := `
		SELECT id, expense_id, approver_id, role, sequence_step, decision, comment, decided_at
		FROM approval_steps
		WHERE expense_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY expense_id, sequence_step
	`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to load approval steps", zap.Error(err))
		return fmt.Errorf("failed to load approval steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step entity.ApprovalStep
		var rawID, rawExpenseID, rawApproverID string
		var comment sql.NullString
		var decidedAt sql.NullTime

		err := rows.Scan(
			&rawID,
			&rawExpenseID,
			&rawApproverID,
			&step.Role,
			&step.SequenceStep,
			&step.Decision,
			&comment,
			&decidedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan approval step: %w", err)
		}

		if step.ID, err = uuid.Parse(rawID); err != nil {
			return fmt.Errorf("invalid step id %q: %w", rawID, err)
		}
		if step.ExpenseID, err = uuid.Parse(rawExpenseID); err != nil {
			return fmt.Errorf("invalid step expense id %q: %w", rawExpenseID, err)
		}
		if step.ApproverID, err = uuid.Parse(rawApproverID); err != nil {
			return fmt.Errorf("invalid approver id %q: %w", rawApproverID, err)
		}
		if comment.Valid {
			step.Comment = comment.String
		}
		if decidedAt.Valid {
			step.DecidedAt = &decidedAt.Time
		}

		if expense, ok := byID[step.ExpenseID]; ok {
			expense.Approvers = append(expense.Approvers, step)
		}
	}
	return rows.Err()
}
