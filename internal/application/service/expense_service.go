package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/domain/approval"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
	"github.com/expenzo/expenzo-server/pkg/utils"
)

// CreateExpenseInput is the submission form for a new expense claim.
type CreateExpenseInput struct {
	Amount           decimal.Decimal         `json:"amount"`
	Currency         string                  `json:"currency"`
	Category         string                  `json:"category"`
	Description      string                  `json:"description"`
	Date             time.Time               `json:"date"`
	ReceiptImagePath string                  `json:"receipt_image_path,omitempty"`
	Extracted        *entity.ExtractedFields `json:"extracted_fields,omitempty"`
}

// DecisionInput is one approver's action on an expense.
type DecisionInput struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}

// ExpenseService owns the expense lifecycle: submission with currency
// conversion and queue construction, decision processing, and role-scoped
// reads.
type ExpenseService interface {
	Create(ctx context.Context, actor *entity.User, in CreateExpenseInput) (*entity.Expense, error)

	// Decide applies one approver's decision and persists the mutated step
	// together with the derived status in a single transaction.
	Decide(ctx context.Context, actor *entity.User, expenseID uuid.UUID, in DecisionInput) (*entity.Expense, error)

	Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Expense, error)
	List(ctx context.Context, actor *entity.User) ([]*entity.Expense, error)

	// ExtractReceipt runs the vision extractor over an uploaded receipt. The
	// result pre-fills the submission form; it is never trusted as-is.
	ExtractReceipt(ctx context.Context, filePath string) (*entity.ExtractedFields, error)
}

type expenseServiceImpl struct {
	expenseRepo port.ExpenseRepository
	companyRepo port.CompanyRepository
	userRepo    port.UserRepository
	rates       port.RateProvider
	extractor   port.ReceiptExtractor
	txManager   port.TransactionManager
	logger      *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo port.ExpenseRepository,
	companyRepo port.CompanyRepository,
	userRepo port.UserRepository,
	rates port.RateProvider,
	extractor port.ReceiptExtractor,
	txManager port.TransactionManager,
	logger *zap.Logger,
) ExpenseService {
	return &expenseServiceImpl{
		expenseRepo: expenseRepo,
		companyRepo: companyRepo,
		userRepo:    userRepo,
		rates:       rates,
		extractor:   extractor,
		txManager:   txManager,
		logger:      logger,
	}
}

// roleDirectory adapts the user repository to the queue builder's lookup
// interface.
type roleDirectory struct {
	users port.UserRepository
}

func (d roleDirectory) ManagerOf(ctx context.Context, employee *entity.User) (*entity.User, error) {
	if employee.ManagerID == nil {
		return nil, nil
	}
	manager, err := d.users.GetByID(ctx, *employee.ManagerID)
	if errors.Is(err, port.ErrNotFound) {
		// Dangling manager reference, the queue just gets shorter.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return manager, nil
}

func (d roleDirectory) FirstByRole(ctx context.Context, companyID uuid.UUID, role string) (*entity.User, error) {
	return d.users.FirstByRole(ctx, companyID, role)
}

func (s *expenseServiceImpl) Create(ctx context.Context, actor *entity.User, in CreateExpenseInput) (*entity.Expense, error) {
	if err := utils.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := utils.ValidateCurrencyCode(in.Currency); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}

	rate, defaulted := s.rates.Rate(ctx, in.Currency, company.CurrencyCode)
	if defaulted {
		s.logger.Warn("Exchange rate defaulted to 1.0",
			zap.String("from", in.Currency),
			zap.String("to", company.CurrencyCode))
	}

	steps, err := approval.BuildQueue(ctx, actor, company, roleDirectory{users: s.userRepo})
	if err != nil {
		return nil, fmt.Errorf("build approver queue: %w", err)
	}

	now := time.Now()
	expense := &entity.Expense{
		ID:                    uuid.New(),
		EmployeeID:            actor.ID,
		CompanyID:             actor.CompanyID,
		AmountOriginal:        in.Amount,
		CurrencyOriginal:      in.Currency,
		AmountCompanyCurrency: in.Amount.Mul(rate),
		RateDefaulted:         defaulted,
		Category:              utils.SanitizeString(in.Category),
		Description:           utils.SanitizeString(in.Description),
		Date:                  in.Date,
		ReceiptImagePath:      in.ReceiptImagePath,
		Extracted:             in.Extracted,
		Approvers:             steps,
		Status:                entity.StatusPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	for i := range expense.Approvers {
		expense.Approvers[i].ExpenseID = expense.ID
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.expenseRepo.Create(txCtx, expense)
	})
	if err != nil {
		s.logger.Error("Failed to create expense", zap.Error(err), zap.String("employee_id", actor.ID.String()))
		return nil, err
	}

	s.logger.Info("Expense submitted",
		zap.String("id", expense.ID.String()),
		zap.String("employee_id", actor.ID.String()),
		zap.Int("approvers", len(steps)))
	return expense, nil
}

func (s *expenseServiceImpl) Decide(ctx context.Context, actor *entity.User, expenseID uuid.UUID, in DecisionInput) (*entity.Expense, error) {
	var expense *entity.Expense

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		expense, err = s.expenseRepo.GetByID(txCtx, expenseID)
		if err != nil {
			return err
		}
		if expense.CompanyID != actor.CompanyID {
			return port.ErrNotFound
		}

		company, err := s.companyRepo.GetByID(txCtx, expense.CompanyID)
		if err != nil {
			return fmt.Errorf("load company: %w", err)
		}

		outcome, err := approval.ApplyDecision(expense, company.ConditionalRules, actor.ID, in.Decision, utils.SanitizeString(in.Comment), time.Now())
		if err != nil {
			return err
		}

		if err := s.expenseRepo.UpdateDecision(txCtx, expense, outcome.Step); err != nil {
			return err
		}

		s.logger.Info("Decision applied",
			zap.String("expense_id", expense.ID.String()),
			zap.String("approver_id", actor.ID.String()),
			zap.String("decision", in.Decision),
			zap.String("status", outcome.Status),
			zap.Bool("auto_approved", outcome.AutoApproved))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseServiceImpl) Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense.CompanyID != actor.CompanyID {
		return nil, port.ErrNotFound
	}
	if actor.Role == entity.RoleEmployee && !s.canEmployeeView(actor, expense) {
		return nil, ErrAccessDenied
	}
	return expense, nil
}

// canEmployeeView allows an employee to see their own claims plus any claim
// where they sit in the approver queue.
func (s *expenseServiceImpl) canEmployeeView(actor *entity.User, expense *entity.Expense) bool {
	if expense.EmployeeID == actor.ID {
		return true
	}
	for i := range expense.Approvers {
		if expense.Approvers[i].ApproverID == actor.ID {
			return true
		}
	}
	return false
}

func (s *expenseServiceImpl) List(ctx context.Context, actor *entity.User) ([]*entity.Expense, error) {
	switch actor.Role {
	case entity.RoleEmployee:
		return s.expenseRepo.ListByEmployee(ctx, actor.ID)
	case entity.RoleManager:
		return s.expenseRepo.ListVisibleToManager(ctx, actor.CompanyID, actor.ID)
	default:
		return s.expenseRepo.ListByCompany(ctx, actor.CompanyID)
	}
}

func (s *expenseServiceImpl) ExtractReceipt(ctx context.Context, filePath string) (*entity.ExtractedFields, error) {
	fields, err := s.extractor.Extract(ctx, filePath)
	if err != nil {
		s.logger.Error("Receipt extraction failed", zap.Error(err), zap.String("path", filePath))
		return nil, fmt.Errorf("extract receipt: %w", err)
	}
	return fields, nil
}
