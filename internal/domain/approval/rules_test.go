package approval

import (
	"testing"

	"github.com/google/uuid"

	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

func steps(decisions ...string) []entity.ApprovalStep {
	out := make([]entity.ApprovalStep, len(decisions))
	for i, d := range decisions {
		out[i] = entity.ApprovalStep{
			ID:           uuid.New(),
			ApproverID:   uuid.New(),
			Role:         entity.RoleManager,
			SequenceStep: i + 1,
			Decision:     d,
		}
	}
	return out
}

func TestShouldAutoApprove_Percentage(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		decisions []string
		want      bool
	}{
		{"two of three meets 0.6", 0.6, []string{"approved", "approved", "pending"}, true},
		{"one of three misses 0.6", 0.6, []string{"approved", "pending", "pending"}, false},
		{"exact threshold counts", 0.5, []string{"approved", "pending"}, true},
		{"rejection stays in denominator", 1.0, []string{"approved", "rejected"}, false},
		{"pending stays in denominator", 1.0, []string{"approved", "pending"}, false},
		{"all approved meets 1.0", 1.0, []string{"approved", "approved"}, true},
		{"empty queue never fires", 0.0, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := []entity.ConditionalRule{{Type: entity.RuleTypePercentage, Threshold: tt.threshold}}
			if got := ShouldAutoApprove(rules, steps(tt.decisions...)); got != tt.want {
				t.Errorf("ShouldAutoApprove() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldAutoApprove_Specific(t *testing.T) {
	financeApproved := steps("pending")
	financeApproved = append(financeApproved, entity.ApprovalStep{
		ID: uuid.New(), ApproverID: uuid.New(), Role: entity.RoleFinance,
		SequenceStep: 2, Decision: entity.DecisionApproved,
	})
	financePending := steps("approved")
	financePending = append(financePending, entity.ApprovalStep{
		ID: uuid.New(), ApproverID: uuid.New(), Role: entity.RoleFinance,
		SequenceStep: 2, Decision: entity.DecisionPending,
	})

	rules := []entity.ConditionalRule{{Type: entity.RuleTypeSpecific, ApproverRole: entity.RoleFinance}}

	if !ShouldAutoApprove(rules, financeApproved) {
		t.Error("finance approved: ShouldAutoApprove() = false, want true")
	}
	if ShouldAutoApprove(rules, financePending) {
		t.Error("finance pending: ShouldAutoApprove() = true, want false")
	}
}

func TestShouldAutoApprove_FirstMatchWins(t *testing.T) {
	// Both rules would eventually match; evaluation must stop at the first
	// satisfied one and unknown rule types are skipped.
	rules := []entity.ConditionalRule{
		{Type: "unknown"},
		{Type: entity.RuleTypePercentage, Threshold: 0.5},
		{Type: entity.RuleTypeSpecific, ApproverRole: entity.RoleManager},
	}
	if !ShouldAutoApprove(rules, steps("approved", "pending")) {
		t.Error("ShouldAutoApprove() = false, want true")
	}
	if ShouldAutoApprove(nil, steps("approved")) {
		t.Error("no rules: ShouldAutoApprove() = true, want false")
	}
}
