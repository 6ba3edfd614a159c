package dto

import (
	"time"

	"flow-ledger/internal/core/domain"
)

// RegisterRequest is the request body for operator registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	OperatorID string `json:"operator_id"`
	AccessKey  string `json:"access_key"`
	SecretKey  string `json:"secret_key"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// RecordTransactionRequest is the request body for recording a
// transaction. Amount has no required tag: zero is a legal amount.
type RecordTransactionRequest struct {
	ID       string `json:"id" binding:"required,max=100,safe_id"`
	Sender   string `json:"sender" binding:"required,max=100"`
	Receiver string `json:"receiver" binding:"required,max=100"`
	Amount   int64  `json:"amount" binding:"gte=0"`
}

// FlagTransactionRequest is the request body for flagging a transaction.
type FlagTransactionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// SetKycRequest is the request body for updating a party's KYC tag.
type SetKycRequest struct {
	Tag string `json:"tag" binding:"required,max=100"`
}

// TransactionResponse is the response body for a single transaction.
// Unknown ids yield the zero record: empty fields and a null created_at.
type TransactionResponse struct {
	ID         string `json:"id"`
	Sender     string `json:"sender"`
	Receiver   string `json:"receiver"`
	Amount     int64  `json:"amount"`
	Flagged    bool   `json:"flagged"`
	FlagReason string `json:"flag_reason,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"` // RFC 3339; empty when the record does not exist
}

// TransactionIDsResponse wraps a list of transaction ids (party index,
// sent filter, flow trace).
type TransactionIDsResponse struct {
	Party string   `json:"party"`
	IDs   []string `json:"transaction_ids"`
}

// KycResponse is the response body for a party's KYC tag.
type KycResponse struct {
	Party string `json:"party"`
	Tag   string `json:"tag"`
}

// FromTransaction maps a domain transaction onto the wire shape.
func FromTransaction(t domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:         t.ID,
		Sender:     t.Sender,
		Receiver:   t.Receiver,
		Amount:     t.Amount,
		Flagged:    t.Flagged,
		FlagReason: t.FlagReason,
	}
	if t.Exists() {
		resp.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return resp
}
