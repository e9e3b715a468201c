package entity

import (
	"time"

	"github.com/google/uuid"
)

// Company holds the approval configuration every expense in the company is
// evaluated against.
type Company struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Country          string            `json:"country"`
	CurrencyCode     string            `json:"currency_code"`
	ApprovalSequence []SequenceEntry   `json:"approval_sequence"`
	ConditionalRules []ConditionalRule `json:"conditional_rules"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// SequenceEntry is one slot in the company-wide default approver chain.
// Steps are 1-based and contiguous as configured.
type SequenceEntry struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	SequenceStep int    `json:"sequence_step"`
}

// ConditionalRule can terminate an approval workflow early. Exactly one of
// Threshold (percentage rules) or ApproverRole (specific rules) is meaningful,
// selected by Type. Rules are evaluated in configured order, first match wins.
type ConditionalRule struct {
	Type string `json:"type"`

	// Threshold is the approved fraction in [0,1] required by a percentage
	// rule. The denominator is every approver ever added to the queue, not
	// just those who have decided.
	Threshold float64 `json:"threshold,omitempty"`

	// ApproverRole names the role whose single approval satisfies a
	// specific-approver rule.
	ApproverRole string `json:"approver_role,omitempty"`
}

// DefaultApprovalSequence is the chain seeded for companies created at signup.
func DefaultApprovalSequence() []SequenceEntry {
	return []SequenceEntry{
		{Name: "Manager", Role: RoleManager, SequenceStep: 1},
		{Name: "Finance", Role: RoleFinance, SequenceStep: 2},
	}
}

// DefaultConditionalRules seeds new companies with a 60% percentage rule.
func DefaultConditionalRules() []ConditionalRule {
	return []ConditionalRule{
		{Type: RuleTypePercentage, Threshold: 0.6},
	}
}
