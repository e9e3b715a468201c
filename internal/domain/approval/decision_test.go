package approval

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

func pendingStep(approverID uuid.UUID, role string, seq int) entity.ApprovalStep {
	return entity.ApprovalStep{
		ID:           uuid.New(),
		ApproverID:   approverID,
		Role:         role,
		SequenceStep: seq,
		Decision:     entity.DecisionPending,
	}
}

func newExpense(steps ...entity.ApprovalStep) *entity.Expense {
	return &entity.Expense{
		ID:        uuid.New(),
		Status:    entity.StatusPending,
		Approvers: steps,
	}
}

func TestApplyDecision_SingleApproverApproves(t *testing.T) {
	manager := uuid.New()
	expense := newExpense(pendingStep(manager, entity.RoleManager, 1))
	now := time.Now()

	outcome, err := ApplyDecision(expense, nil, manager, entity.DecisionApproved, "ok", now)
	if err != nil {
		t.Fatalf("ApplyDecision() error = %v", err)
	}

	if expense.Status != entity.StatusApproved {
		t.Errorf("status = %q, want %q", expense.Status, entity.StatusApproved)
	}
	if outcome.AutoApproved {
		t.Error("AutoApproved = true, want false for unanimous chain")
	}
	if outcome.Step.Comment != "ok" {
		t.Errorf("comment = %q, want %q", outcome.Step.Comment, "ok")
	}
	if outcome.Step.DecidedAt == nil || !outcome.Step.DecidedAt.Equal(now) {
		t.Errorf("DecidedAt = %v, want %v", outcome.Step.DecidedAt, now)
	}
}

func TestApplyDecision_RejectionIsUnconditionallyTerminal(t *testing.T) {
	actor := uuid.New()
	other := uuid.New()
	expense := newExpense(
		pendingStep(actor, entity.RoleManager, 1),
		pendingStep(other, entity.RoleFinance, 2),
	)

	outcome, err := ApplyDecision(expense, nil, actor, entity.DecisionRejected, "over budget", time.Now())
	if err != nil {
		t.Fatalf("ApplyDecision() error = %v", err)
	}

	if expense.Status != entity.StatusRejected {
		t.Errorf("status = %q, want %q", expense.Status, entity.StatusRejected)
	}
	if outcome.Step.Decision != entity.DecisionRejected {
		t.Errorf("step decision = %q, want %q", outcome.Step.Decision, entity.DecisionRejected)
	}
	// The rejected status must imply at least one rejected step.
	rejected := 0
	for _, s := range expense.Approvers {
		if s.Decision == entity.DecisionRejected {
			rejected++
		}
	}
	if rejected == 0 {
		t.Error("rejected expense has no rejected step")
	}
}

func TestApplyDecision_RejectionWinsOverSatisfiedRule(t *testing.T) {
	approved := uuid.New()
	actor := uuid.New()
	third := uuid.New()

	expense := newExpense(
		pendingStep(approved, entity.RoleManager, 1),
		pendingStep(actor, entity.RoleFinance, 2),
		pendingStep(third, entity.RoleDirector, 3),
	)
	expense.Approvers[0].Decision = entity.DecisionApproved

	// 1/3 approved already satisfies the threshold, but the rejection still
	// ends the workflow.
	rules := []entity.ConditionalRule{{Type: entity.RuleTypePercentage, Threshold: 0.3}}

	_, err := ApplyDecision(expense, rules, actor, entity.DecisionRejected, "", time.Now())
	if err != nil {
		t.Fatalf("ApplyDecision() error = %v", err)
	}
	if expense.Status != entity.StatusRejected {
		t.Errorf("status = %q, want %q", expense.Status, entity.StatusRejected)
	}
	if expense.AutoApproved {
		t.Error("AutoApproved = true on a rejected expense")
	}
}

func TestApplyDecision_PercentageRuleShortCircuits(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	expense := newExpense(
		pendingStep(first, entity.RoleManager, 1),
		pendingStep(second, entity.RoleFinance, 2),
		pendingStep(third, entity.RoleDirector, 3),
	)
	rules := []entity.ConditionalRule{{Type: entity.RuleTypePercentage, Threshold: 0.6}}

	if _, err := ApplyDecision(expense, rules, first, entity.DecisionApproved, "", time.Now()); err != nil {
		t.Fatalf("first decision: %v", err)
	}
	if expense.Status != entity.StatusPending {
		t.Fatalf("status after 1/3 = %q, want pending", expense.Status)
	}

	outcome, err := ApplyDecision(expense, rules, second, entity.DecisionApproved, "", time.Now())
	if err != nil {
		t.Fatalf("second decision: %v", err)
	}

	// 2/3 ≈ 0.667 >= 0.6 even though the third approver never acted.
	if expense.Status != entity.StatusApproved {
		t.Errorf("status after 2/3 = %q, want approved", expense.Status)
	}
	if !outcome.AutoApproved {
		t.Error("AutoApproved = false, want true")
	}
	// The short-circuited step must not be mutated.
	last := expense.Approvers[2]
	if last.Decision != entity.DecisionPending || last.DecidedAt != nil {
		t.Errorf("short-circuited step mutated: decision=%q decidedAt=%v", last.Decision, last.DecidedAt)
	}
}

func TestApplyDecision_SpecificApproverRule(t *testing.T) {
	manager := uuid.New()
	finance := uuid.New()

	expense := newExpense(
		pendingStep(manager, entity.RoleManager, 1),
		pendingStep(finance, entity.RoleFinance, 2),
	)
	rules := []entity.ConditionalRule{{Type: entity.RuleTypeSpecific, ApproverRole: entity.RoleFinance}}

	// Finance approves before the manager has decided.
	outcome, err := ApplyDecision(expense, rules, finance, entity.DecisionApproved, "", time.Now())
	if err != nil {
		t.Fatalf("ApplyDecision() error = %v", err)
	}

	if expense.Status != entity.StatusApproved {
		t.Errorf("status = %q, want approved", expense.Status)
	}
	if !outcome.AutoApproved {
		t.Error("AutoApproved = false, want true")
	}
	if got := expense.Approvers[0].Decision; got != entity.DecisionPending {
		t.Errorf("manager step decision = %q, want pending", got)
	}
}

func TestApplyDecision_FullUnanimity(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	expense := newExpense(
		pendingStep(first, entity.RoleManager, 1),
		pendingStep(second, entity.RoleFinance, 2),
	)

	if _, err := ApplyDecision(expense, nil, first, entity.DecisionApproved, "", time.Now()); err != nil {
		t.Fatalf("first decision: %v", err)
	}
	if expense.Status != entity.StatusPending {
		t.Fatalf("status after first = %q, want pending", expense.Status)
	}
	outcome, err := ApplyDecision(expense, nil, second, entity.DecisionApproved, "", time.Now())
	if err != nil {
		t.Fatalf("second decision: %v", err)
	}

	if expense.Status != entity.StatusApproved {
		t.Errorf("status = %q, want approved", expense.Status)
	}
	if outcome.AutoApproved {
		t.Error("AutoApproved = true, want false")
	}
	for i, s := range expense.Approvers {
		if s.Decision != entity.DecisionApproved {
			t.Errorf("step %d decision = %q, want approved", i, s.Decision)
		}
	}
}

func TestApplyDecision_Idempotence(t *testing.T) {
	actor := uuid.New()
	others := []uuid.UUID{uuid.New(), uuid.New()}

	expense := newExpense(
		pendingStep(actor, entity.RoleManager, 1),
		pendingStep(others[0], entity.RoleFinance, 2),
		pendingStep(others[1], entity.RoleDirector, 3),
	)

	if _, err := ApplyDecision(expense, nil, actor, entity.DecisionApproved, "", time.Now()); err != nil {
		t.Fatalf("first decision: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, err := ApplyDecision(expense, nil, actor, entity.DecisionApproved, "", time.Now())
		if !errors.Is(err, ErrNotApprover) {
			t.Errorf("repeat call %d: error = %v, want ErrNotApprover", i+1, err)
		}
	}
	if got := expense.Approvers[0].Decision; got != entity.DecisionApproved {
		t.Errorf("step decision after repeats = %q, want approved", got)
	}
}

func TestApplyDecision_Errors(t *testing.T) {
	member := uuid.New()

	tests := []struct {
		name     string
		expense  *entity.Expense
		actor    uuid.UUID
		decision string
		wantErr  error
	}{
		{
			name:     "actor not in queue",
			expense:  newExpense(pendingStep(member, entity.RoleManager, 1)),
			actor:    uuid.New(),
			decision: entity.DecisionApproved,
			wantErr:  ErrNotApprover,
		},
		{
			name:     "invalid decision value",
			expense:  newExpense(pendingStep(member, entity.RoleManager, 1)),
			actor:    member,
			decision: "maybe",
			wantErr:  ErrInvalidDecision,
		},
		{
			name:     "pending is not a decision",
			expense:  newExpense(pendingStep(member, entity.RoleManager, 1)),
			actor:    member,
			decision: entity.DecisionPending,
			wantErr:  ErrInvalidDecision,
		},
		{
			name: "finalized expense admits no action",
			expense: func() *entity.Expense {
				e := newExpense(pendingStep(member, entity.RoleFinance, 1))
				e.Status = entity.StatusApproved
				return e
			}(),
			actor:    member,
			decision: entity.DecisionApproved,
			wantErr:  ErrExpenseFinalized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyDecision(tt.expense, nil, tt.actor, tt.decision, "", time.Now())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ApplyDecision() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
