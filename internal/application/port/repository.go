package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

// CompanyRepository defines persistence operations for Company.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
}

// UserRepository defines persistence operations for User. FirstByRole is the
// role-indexed directory query the queue builder depends on; ordering by
// creation time keeps multi-holder roles deterministic.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.User, error)
	ListManagedBy(ctx context.Context, managerID uuid.UUID) ([]*entity.User, error)
	FirstByRole(ctx context.Context, companyID uuid.UUID, role string) (*entity.User, error)
}

// ExpenseRepository defines persistence operations for Expense and its
// approval steps. Create persists the expense and its queue atomically;
// UpdateDecision persists one step mutation together with the derived status
// under an optimistic version check.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.Expense, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*entity.Expense, error)

	// ListVisibleToManager returns expenses filed by the manager's reports
	// plus any expense carrying a pending approval step for the manager.
	ListVisibleToManager(ctx context.Context, companyID, managerID uuid.UUID) ([]*entity.Expense, error)

	// UpdateDecision writes the mutated step and the expense's status,
	// auto-approved flag, and bumped version. Returns ErrVersionConflict
	// when the stored version no longer matches expense.Version.
	UpdateDecision(ctx context.Context, expense *entity.Expense, step *entity.ApprovalStep) error
}

// AnalyticsRepository aggregates company expense data for dashboards.
type AnalyticsRepository interface {
	KPIs(ctx context.Context, companyID uuid.UUID) (*KPIReport, error)
	TimeSeries(ctx context.Context, companyID uuid.UUID) ([]TimeSeriesPoint, error)
	Categories(ctx context.Context, companyID uuid.UUID) ([]CategoryTotal, error)
	Merchants(ctx context.Context, companyID uuid.UUID, limit int) ([]MerchantTotal, error)
}

// TransactionManager executes a function within a database transaction. The
// transaction is carried in the context and reused by nested calls.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// KPIReport holds the company-wide dashboard headline numbers.
type KPIReport struct {
	TotalSpend             float64 `json:"total_spend"`
	PendingApprovals       int     `json:"pending_approvals"`
	AvgApprovalSeconds     float64 `json:"avg_approval_seconds"`
	AutoApprovedPercentage int     `json:"auto_approved_percentage"`
}

// TimeSeriesPoint is one day's spend in company currency.
type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// CategoryTotal is spend grouped by expense category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// MerchantTotal is spend grouped by extracted receipt merchant.
type MerchantTotal struct {
	Merchant string  `json:"merchant"`
	Total    float64 `json:"total"`
}
