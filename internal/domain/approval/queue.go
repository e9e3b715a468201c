package approval

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

// RoleDirectory resolves approver candidates during queue construction. It is
// a capability query against a role-indexed user store; the persistence layer
// provides the implementation.
type RoleDirectory interface {
	// ManagerOf returns the employee's assigned manager, or nil when the
	// employee has none or the reference is dangling.
	ManagerOf(ctx context.Context, employee *entity.User) (*entity.User, error)

	// FirstByRole returns the earliest-created active user holding the role
	// in the company, or nil when the role has no holder. Earliest-created
	// keeps multi-holder roles deterministic.
	FirstByRole(ctx context.Context, companyID uuid.UUID, role string) (*entity.User, error)
}

// BuildQueue constructs the ordered approver queue for one expense: the
// employee's manager first when flagged as an approver, then the company's
// configured sequence. Missing managers or role holders shorten the queue
// rather than failing; the result may be empty.
func BuildQueue(ctx context.Context, employee *entity.User, company *entity.Company, dir RoleDirectory) ([]entity.ApprovalStep, error) {
	var steps []entity.ApprovalStep
	seq := 1

	if employee.ManagerID != nil {
		manager, err := dir.ManagerOf(ctx, employee)
		if err != nil {
			return nil, fmt.Errorf("resolve manager: %w", err)
		}
		if manager != nil && manager.IsManagerApprover {
			steps = append(steps, entity.ApprovalStep{
				ID:           uuid.New(),
				ApproverID:   manager.ID,
				Role:         entity.RoleManager,
				SequenceStep: seq,
				Decision:     entity.DecisionPending,
			})
			seq++
		}
	}

	for _, entry := range company.ApprovalSequence {
		approver, err := dir.FirstByRole(ctx, company.ID, entry.Role)
		if err != nil {
			return nil, fmt.Errorf("resolve role %q: %w", entry.Role, err)
		}
		if approver == nil {
			continue
		}
		steps = append(steps, entity.ApprovalStep{
			ID:           uuid.New(),
			ApproverID:   approver.ID,
			Role:         entry.Role,
			SequenceStep: seq,
			Decision:     entity.DecisionPending,
		})
		seq++
	}

	return steps, nil
}
