package approval

import "github.com/expenzo/expenzo-server/internal/domain/entity"

// ShouldAutoApprove evaluates the company's conditional rules in configured
// order against the full approver list and stops at the first satisfied rule.
// Rules are not required to be mutually exclusive.
func ShouldAutoApprove(rules []entity.ConditionalRule, steps []entity.ApprovalStep) bool {
	for _, rule := range rules {
		switch rule.Type {
		case entity.RuleTypePercentage:
			if percentageSatisfied(rule.Threshold, steps) {
				return true
			}
		case entity.RuleTypeSpecific:
			if specificSatisfied(rule.ApproverRole, steps) {
				return true
			}
		}
	}
	return false
}

// percentageSatisfied compares the approved fraction against the threshold.
// The denominator is every approver in the queue, so pending and rejected
// steps count against the fraction.
func percentageSatisfied(threshold float64, steps []entity.ApprovalStep) bool {
	if len(steps) == 0 {
		return false
	}
	approved := 0
	for i := range steps {
		if steps[i].Decision == entity.DecisionApproved {
			approved++
		}
	}
	return float64(approved)/float64(len(steps)) >= threshold
}

// specificSatisfied fires the moment any approver holding the role has
// approved, regardless of other approvers' states.
func specificSatisfied(role string, steps []entity.ApprovalStep) bool {
	for i := range steps {
		if steps[i].Role == role && steps[i].Decision == entity.DecisionApproved {
			return true
		}
	}
	return false
}
