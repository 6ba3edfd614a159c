package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperatorStatus represents the state of an operator account.
type OperatorStatus string

const (
	OperatorStatusActive      OperatorStatus = "ACTIVE"
	OperatorStatusSuspended   OperatorStatus = "SUSPENDED"
	OperatorStatusDeactivated OperatorStatus = "DEACTIVATED"
)

// Operator represents a registered caller of the ledger API.
// CanWrite gates the mutating operations (record, flag, KYC updates);
// read and trace access only requires a valid login.
type Operator struct {
	ID           uuid.UUID      `json:"id"`
	Username     string         `json:"username"`
	PasswordHash string         `json:"-"` // Never expose
	AccessKey    string         `json:"access_key"`
	SecretKeyEnc string         `json:"-"` // Encrypted, never expose
	CanWrite     bool           `json:"can_write"`
	Status       OperatorStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsActive returns true if the operator account is active.
func (o *Operator) IsActive() bool {
	return o.Status == OperatorStatusActive
}
