package entity

// Status constants for Expense. Status is terminal once it leaves "pending".
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Decision constants for ApprovalStep
const (
	DecisionPending  = "pending"
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Role constants for User
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
	RoleFinance  = "finance"
	RoleDirector = "director"
)

// Conditional rule type constants
const (
	RuleTypePercentage = "percentage"
	RuleTypeSpecific   = "specific"
)

// ValidRoles lists the roles accepted at user creation. Companies may extend
// this set through their approval sequence, but the built-in roles cover the
// default chains.
var ValidRoles = map[string]bool{
	RoleAdmin:    true,
	RoleManager:  true,
	RoleEmployee: true,
	RoleFinance:  true,
	RoleDirector: true,
}

// IsValidDecision reports whether d is an actionable approval decision.
// "pending" is a state, not a decision an approver can submit.
func IsValidDecision(d string) bool {
	return d == DecisionApproved || d == DecisionRejected
}
