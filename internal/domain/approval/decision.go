package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

// Outcome describes the result of one decision application.
type Outcome struct {
	// Step is the approval step that was mutated by this call.
	Step *entity.ApprovalStep

	// Status is the derived overall expense status.
	Status string

	// AutoApproved is true when a conditional rule short-circuited the
	// remaining queue. Later approvers stay permanently pending.
	AutoApproved bool
}

// ApplyDecision applies one approver's decision to the expense and derives
// the new overall status. The expense and the matched step are mutated in
// place; the caller persists both atomically.
//
// Status priority: a rejection is unconditionally terminal; otherwise a
// satisfied conditional rule approves the expense early; otherwise an empty
// pending set means the full chain agreed; otherwise the expense stays
// pending.
func ApplyDecision(expense *entity.Expense, rules []entity.ConditionalRule, actorID uuid.UUID, decision, comment string, now time.Time) (*Outcome, error) {
	if !entity.IsValidDecision(decision) {
		return nil, ErrInvalidDecision
	}
	if expense.IsFinal() {
		return nil, ErrExpenseFinalized
	}

	step := findActionableStep(expense, actorID)
	if step == nil {
		return nil, ErrNotApprover
	}

	step.Decision = decision
	step.Comment = comment
	step.DecidedAt = &now

	auto := ShouldAutoApprove(rules, expense.Approvers)

	switch {
	case decision == entity.DecisionRejected:
		expense.Status = entity.StatusRejected
	case auto:
		expense.Status = entity.StatusApproved
		expense.AutoApproved = true
	case expense.PendingSteps() == 0:
		expense.Status = entity.StatusApproved
	}

	return &Outcome{
		Step:         step,
		Status:       expense.Status,
		AutoApproved: expense.AutoApproved,
	}, nil
}

// findActionableStep locates the actor's pending step. A step that already
// left "pending" can never match again, which makes repeated calls by the
// same approver fail rather than double-count.
func findActionableStep(expense *entity.Expense, actorID uuid.UUID) *entity.ApprovalStep {
	for i := range expense.Approvers {
		s := &expense.Approvers[i]
		if s.ApproverID == actorID && s.Decision == entity.DecisionPending {
			return s
		}
	}
	return nil
}
