package dto

import (
	"testing"
	"time"

	"flow-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestSafeStringRe(t *testing.T) {
	valid := []string{"tx-1", "tx_001", "alice.smith", "ABC123"}
	for _, s := range valid {
		assert.True(t, safeStringRe.MatchString(s), "%q should be valid", s)
	}

	invalid := []string{"", "tx 1", "tx;drop", "<script>", "a/b", "tx'1"}
	for _, s := range invalid {
		assert.False(t, safeStringRe.MatchString(s), "%q should be invalid", s)
	}
}

func TestSanitizeStruct(t *testing.T) {
	req := &RecordTransactionRequest{
		ID:       "  tx-1  ",
		Sender:   "<b>alice</b>",
		Receiver: "bob",
		Amount:   100,
	}

	SanitizeStruct(req)

	assert.Equal(t, "tx-1", req.ID)
	assert.Equal(t, "&lt;b&gt;alice&lt;/b&gt;", req.Sender)
	assert.Equal(t, "bob", req.Receiver)
	assert.Equal(t, int64(100), req.Amount)
}

func TestSanitizeStruct_NonPointer(t *testing.T) {
	// Must not panic on non-pointer input.
	SanitizeStruct(RecordTransactionRequest{ID: "x"})
	SanitizeStruct(nil)
}

func TestFromTransaction(t *testing.T) {
	now := time.Now().UTC()
	resp := FromTransaction(domain.Transaction{
		ID:        "tx-1",
		Sender:    "alice",
		Receiver:  "bob",
		Amount:    500,
		CreatedAt: now,
	})

	assert.Equal(t, "tx-1", resp.ID)
	assert.Equal(t, now.Format(time.RFC3339Nano), resp.CreatedAt)
}

func TestFromTransaction_ZeroRecord(t *testing.T) {
	resp := FromTransaction(domain.Transaction{})

	assert.Empty(t, resp.ID)
	assert.Empty(t, resp.CreatedAt)
	assert.Zero(t, resp.Amount)
	assert.False(t, resp.Flagged)
}
