package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is the persisted aggregate of one claim: amounts, the approver
// queue, and the derived status. It is mutated only by the decision processor,
// one approval step (plus the overall status) per approval action.
type Expense struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	CompanyID  uuid.UUID `json:"company_id"`

	AmountOriginal   decimal.Decimal `json:"amount_original"`
	CurrencyOriginal string          `json:"currency_original"`

	// AmountCompanyCurrency is computed once at creation and never updated.
	AmountCompanyCurrency decimal.Decimal `json:"amount_company_currency"`

	// RateDefaulted records that the rate provider was unreachable at
	// submission and a 1:1 rate was substituted, so downstream analytics
	// are not silently skewed.
	RateDefaulted bool `json:"rate_defaulted"`

	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`

	ReceiptImagePath string           `json:"receipt_image_path,omitempty"`
	Extracted        *ExtractedFields `json:"extracted_fields,omitempty"`

	// Approvers is exclusively owned by the expense and ordered by
	// sequence step.
	Approvers []ApprovalStep `json:"approvers"`

	Status string `json:"status"`

	// AutoApproved is set when a conditional rule ended the workflow early,
	// leaving later approvers permanently pending.
	AutoApproved bool `json:"auto_approved"`

	// Version guards concurrent decision application; checked at persist
	// time and bumped on every decision.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApprovalStep is one approver's slot in an expense's queue. Its decision is
// mutated exactly once, when that approver acts.
type ApprovalStep struct {
	ID           uuid.UUID  `json:"id"`
	ExpenseID    uuid.UUID  `json:"expense_id"`
	ApproverID   uuid.UUID  `json:"approver_id"`
	Role         string     `json:"role"`
	SequenceStep int        `json:"sequence_step"`
	Decision     string     `json:"decision"`
	Comment      string     `json:"comment,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
}

// ExtractedFields carries receipt data captured by the extraction
// collaborator. The engine never validates these.
type ExtractedFields struct {
	Merchant    string           `json:"merchant,omitempty"`
	Date        string           `json:"date,omitempty"`
	Amount      string           `json:"amount,omitempty"`
	TaxLines    []string         `json:"tax_lines,omitempty"`
	Confidences FieldConfidences `json:"confidences"`
}

// FieldConfidences holds per-field extraction confidence in [0,1].
type FieldConfidences struct {
	Merchant float64 `json:"merchant"`
	Amount   float64 `json:"amount"`
	Date     float64 `json:"date"`
}

// IsFinal reports whether the expense has reached a terminal status.
func (e *Expense) IsFinal() bool {
	return e.Status == StatusApproved || e.Status == StatusRejected
}

// PendingSteps counts approvers that have not decided yet.
func (e *Expense) PendingSteps() int {
	n := 0
	for i := range e.Approvers {
		if e.Approvers[i].Decision == DecisionPending {
			n++
		}
	}
	return n
}
