package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

// CompanyService exposes company configuration reads. Users only ever see
// their own company.
type CompanyService interface {
	Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Company, error)
}

type companyServiceImpl struct {
	companyRepo port.CompanyRepository
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo port.CompanyRepository) CompanyService {
	return &companyServiceImpl{companyRepo: companyRepo}
}

func (s *companyServiceImpl) Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Company, error) {
	if actor.CompanyID != id {
		return nil, port.ErrNotFound
	}
	return s.companyRepo.GetByID(ctx, id)
}
