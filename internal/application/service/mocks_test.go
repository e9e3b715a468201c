package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

type mockCompanyRepo struct {
	createFunc  func(ctx context.Context, company *entity.Company) error
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*entity.Company, error)
}

func (m *mockCompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, company)
	}
	return nil
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, port.ErrNotFound
}

type mockUserRepo struct {
	createFunc        func(ctx context.Context, user *entity.User) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	getByEmailFunc    func(ctx context.Context, email string) (*entity.User, error)
	listByCompanyFunc func(ctx context.Context, companyID uuid.UUID) ([]*entity.User, error)
	firstByRoleFunc   func(ctx context.Context, companyID uuid.UUID, role string) (*entity.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, port.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, port.ErrNotFound
}

func (m *mockUserRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.User, error) {
	if m.listByCompanyFunc != nil {
		return m.listByCompanyFunc(ctx, companyID)
	}
	return nil, nil
}

func (m *mockUserRepo) ListManagedBy(ctx context.Context, managerID uuid.UUID) ([]*entity.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FirstByRole(ctx context.Context, companyID uuid.UUID, role string) (*entity.User, error) {
	if m.firstByRoleFunc != nil {
		return m.firstByRoleFunc(ctx, companyID, role)
	}
	return nil, nil
}

type mockExpenseRepo struct {
	createFunc         func(ctx context.Context, expense *entity.Expense) error
	getByIDFunc        func(ctx context.Context, id uuid.UUID) (*entity.Expense, error)
	listByCompanyFunc  func(ctx context.Context, companyID uuid.UUID) ([]*entity.Expense, error)
	listByEmployeeFunc func(ctx context.Context, employeeID uuid.UUID) ([]*entity.Expense, error)
	updateDecisionFunc func(ctx context.Context, expense *entity.Expense, step *entity.ApprovalStep) error
}

func (m *mockExpenseRepo) Create(ctx context.Context, expense *entity.Expense) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, expense)
	}
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, port.ErrNotFound
}

func (m *mockExpenseRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.Expense, error) {
	if m.listByCompanyFunc != nil {
		return m.listByCompanyFunc(ctx, companyID)
	}
	return nil, nil
}

func (m *mockExpenseRepo) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*entity.Expense, error) {
	if m.listByEmployeeFunc != nil {
		return m.listByEmployeeFunc(ctx, employeeID)
	}
	return nil, nil
}

func (m *mockExpenseRepo) ListVisibleToManager(ctx context.Context, companyID, managerID uuid.UUID) ([]*entity.Expense, error) {
	return nil, nil
}

func (m *mockExpenseRepo) UpdateDecision(ctx context.Context, expense *entity.Expense, step *entity.ApprovalStep) error {
	if m.updateDecisionFunc != nil {
		return m.updateDecisionFunc(ctx, expense, step)
	}
	return nil
}

type mockRateProvider struct {
	rateFunc func(ctx context.Context, from, to string) (decimal.Decimal, bool)
}

func (m *mockRateProvider) Rate(ctx context.Context, from, to string) (decimal.Decimal, bool) {
	if m.rateFunc != nil {
		return m.rateFunc(ctx, from, to)
	}
	return decimal.NewFromInt(1), false
}

type mockCountryProvider struct {
	currencyForFunc func(ctx context.Context, country string) string
}

func (m *mockCountryProvider) Countries(ctx context.Context) []port.Country {
	return nil
}

func (m *mockCountryProvider) CurrencyFor(ctx context.Context, country string) string {
	if m.currencyForFunc != nil {
		return m.currencyForFunc(ctx, country)
	}
	return "USD"
}

type mockExtractor struct {
	extractFunc func(ctx context.Context, filePath string) (*entity.ExtractedFields, error)
}

func (m *mockExtractor) Extract(ctx context.Context, filePath string) (*entity.ExtractedFields, error) {
	if m.extractFunc != nil {
		return m.extractFunc(ctx, filePath)
	}
	return &entity.ExtractedFields{}, nil
}

type mockAnalyticsRepo struct {
	kpisFunc func(ctx context.Context, companyID uuid.UUID) (*port.KPIReport, error)
}

func (m *mockAnalyticsRepo) KPIs(ctx context.Context, companyID uuid.UUID) (*port.KPIReport, error) {
	if m.kpisFunc != nil {
		return m.kpisFunc(ctx, companyID)
	}
	return &port.KPIReport{}, nil
}

func (m *mockAnalyticsRepo) TimeSeries(ctx context.Context, companyID uuid.UUID) ([]port.TimeSeriesPoint, error) {
	return nil, nil
}

func (m *mockAnalyticsRepo) Categories(ctx context.Context, companyID uuid.UUID) ([]port.CategoryTotal, error) {
	return nil, nil
}

func (m *mockAnalyticsRepo) Merchants(ctx context.Context, companyID uuid.UUID, limit int) ([]port.MerchantTotal, error) {
	return nil, nil
}

// mockTxManager runs the function inline without a database.
type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
