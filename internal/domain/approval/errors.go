package approval

import "errors"

var (
	// ErrNotApprover is returned when the acting user has no pending
	// approval step on the expense: they are not in the queue, or they
	// already decided.
	ErrNotApprover = errors.New("user has no pending approval step on this expense")

	// ErrExpenseFinalized is returned when a decision is applied to an
	// expense whose status is already terminal.
	ErrExpenseFinalized = errors.New("expense already approved or rejected")

	// ErrInvalidDecision is returned for decisions other than approved or
	// rejected.
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
)
