package ports

import (
	"context"

	"flow-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// LedgerRepository defines persistence for transactions and the per-party
// index. Implementations must serialize mutations: Record and Flag are
// exclusive relative to each other and to all reads, so the zero-timestamp
// existence sentinel and party-index append order are never observed
// mid-mutation.
type LedgerRepository interface {
	// Record inserts the transaction and appends its id to both the
	// sender's and the receiver's party index. When sender == receiver the
	// id is appended twice (sender entry and receiver entry).
	// Returns ErrDuplicateTransaction if the id is already recorded.
	Record(ctx context.Context, tx *domain.Transaction) error

	// Get returns the stored transaction, or the zero Transaction when the
	// id is unknown. Unknown ids are not an error.
	Get(ctx context.Context, id string) (domain.Transaction, error)

	// Flag marks the transaction as flagged with the given reason,
	// overwriting any prior flag state. Returns ErrTransactionNotFound if
	// the id is unknown.
	Flag(ctx context.Context, id string, reason string) error

	// TransactionsOf returns the party's index: transaction ids in append
	// order. Unknown parties yield an empty slice.
	TransactionsOf(ctx context.Context, party string) ([]string, error)
}

// OperatorRepository defines persistence for operator accounts.
type OperatorRepository interface {
	Create(ctx context.Context, op *domain.Operator) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error)
	GetByAccessKey(ctx context.Context, accessKey string) (*domain.Operator, error)
	GetByUsername(ctx context.Context, username string) (*domain.Operator, error)
}

// KYCRepository stores per-party classification tags. Tags live outside the
// ledger proper and are never consulted by the flow tracer.
type KYCRepository interface {
	SetTag(ctx context.Context, party string, tag string) error
	// GetTag returns the party's tag, or "" when none is set.
	GetTag(ctx context.Context, party string) (string, error)
}
