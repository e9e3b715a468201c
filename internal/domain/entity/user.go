package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an employee, approver, or administrator within one company.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CompanyID    uuid.UUID `json:"company_id"`

	// ManagerID is a weak reference used only for approver lookup; deleting
	// the manager does not cascade.
	ManagerID *uuid.UUID `json:"manager_id,omitempty"`

	// IsManagerApprover controls whether this user's approval is inserted
	// into the queues of their reports. A manager without the flag is
	// skipped by the queue builder.
	IsManagerApprover bool `json:"is_manager_approver"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
