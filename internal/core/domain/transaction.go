package domain

import "time"

// Transaction is a single ledger entry describing a movement of funds
// between two parties. The id is assigned by the caller and never reused.
// Once recorded, only the flag fields are mutable.
type Transaction struct {
	ID         string    `json:"id"`
	Sender     string    `json:"sender"`
	Receiver   string    `json:"receiver"`
	Amount     int64     `json:"amount"` // In smallest unit, never negative
	Flagged    bool      `json:"flagged"`
	FlagReason string    `json:"flag_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Exists reports whether the transaction has been recorded.
// A zero CreatedAt is the existence sentinel: lookups for unknown ids
// return the zero Transaction rather than an error.
func (t *Transaction) Exists() bool {
	return !t.CreatedAt.IsZero()
}

// IsSelfTransfer returns true if sender and receiver are the same party.
func (t *Transaction) IsSelfTransfer() bool {
	return t.Sender == t.Receiver
}
