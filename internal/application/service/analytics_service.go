package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
	"github.com/expenzo/expenzo-server/internal/report"
)

// FunnelStage is one stage of the approval funnel: how many expenses carry a
// step for the stage's role and how those steps were decided.
type FunnelStage struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Total    int    `json:"total"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
	Pending  int    `json:"pending"`
}

// AnalyticsService serves the company dashboard aggregates and the xlsx
// expense export.
type AnalyticsService interface {
	KPIs(ctx context.Context, actor *entity.User) (*port.KPIReport, error)
	TimeSeries(ctx context.Context, actor *entity.User) ([]port.TimeSeriesPoint, error)
	Categories(ctx context.Context, actor *entity.User) ([]port.CategoryTotal, error)
	Merchants(ctx context.Context, actor *entity.User, limit int) ([]port.MerchantTotal, error)
	ApprovalFunnel(ctx context.Context, actor *entity.User) ([]FunnelStage, error)
	Export(ctx context.Context, actor *entity.User, w io.Writer) error
}

type analyticsServiceImpl struct {
	analyticsRepo port.AnalyticsRepository
	expenseRepo   port.ExpenseRepository
	companyRepo   port.CompanyRepository
	exporter      *report.Exporter
	logger        *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	analyticsRepo port.AnalyticsRepository,
	expenseRepo port.ExpenseRepository,
	companyRepo port.CompanyRepository,
	exporter *report.Exporter,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsServiceImpl{
		analyticsRepo: analyticsRepo,
		expenseRepo:   expenseRepo,
		companyRepo:   companyRepo,
		exporter:      exporter,
		logger:        logger,
	}
}

func (s *analyticsServiceImpl) KPIs(ctx context.Context, actor *entity.User) (*port.KPIReport, error) {
	return s.analyticsRepo.KPIs(ctx, actor.CompanyID)
}

func (s *analyticsServiceImpl) TimeSeries(ctx context.Context, actor *entity.User) ([]port.TimeSeriesPoint, error) {
	return s.analyticsRepo.TimeSeries(ctx, actor.CompanyID)
}

func (s *analyticsServiceImpl) Categories(ctx context.Context, actor *entity.User) ([]port.CategoryTotal, error) {
	return s.analyticsRepo.Categories(ctx, actor.CompanyID)
}

func (s *analyticsServiceImpl) Merchants(ctx context.Context, actor *entity.User, limit int) ([]port.MerchantTotal, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.analyticsRepo.Merchants(ctx, actor.CompanyID, limit)
}

// ApprovalFunnel walks the company's configured chain, with a synthetic
// manager stage up front, and tallies step outcomes per role across all
// expenses. Stages are counted independently; an auto-approved expense still
// shows its untouched later stages as pending.
func (s *analyticsServiceImpl) ApprovalFunnel(ctx context.Context, actor *entity.User) ([]FunnelStage, error) {
	company, err := s.companyRepo.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	expenses, err := s.expenseRepo.ListByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	stages := []FunnelStage{{Name: "Direct Manager", Role: entity.RoleManager}}
	for _, entry := range company.ApprovalSequence {
		stages = append(stages, FunnelStage{Name: entry.Name, Role: entry.Role})
	}

	byRole := make(map[string][]int)
	for i := range stages {
		byRole[stages[i].Role] = append(byRole[stages[i].Role], i)
	}

	for _, exp := range expenses {
		// Steps sharing a role (manager approver who also holds a chain
		// role) fill stage slots in queue order.
		used := make(map[string]int)
		for i := range exp.Approvers {
			step := &exp.Approvers[i]
			slots := byRole[step.Role]
			if used[step.Role] >= len(slots) {
				continue
			}
			stage := &stages[slots[used[step.Role]]]
			used[step.Role]++

			stage.Total++
			switch step.Decision {
			case entity.DecisionApproved:
				stage.Approved++
			case entity.DecisionRejected:
				stage.Rejected++
			default:
				stage.Pending++
			}
		}
	}

	return stages, nil
}

func (s *analyticsServiceImpl) Export(ctx context.Context, actor *entity.User, w io.Writer) error {
	company, err := s.companyRepo.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return fmt.Errorf("load company: %w", err)
	}
	expenses, err := s.expenseRepo.ListByCompany(ctx, actor.CompanyID)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	return s.exporter.Export(w, company.CurrencyCode, expenses)
}
