package postgres

import (
	"context"
	"errors"
	"fmt"

	"flow-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// LedgerRepo implements ports.LedgerRepository on PostgreSQL. Transactions
// live in the transactions table; the per-party index is a separate
// party_transactions table whose bigserial seq column preserves append
// order across both parties of every record.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Record inserts the transaction and its two index rows atomically. The
// receiver's index row is written even for self-transfers, so a
// self-transfer appears twice in that party's index.
func (r *LedgerRepo) Record(ctx context.Context, t *domain.Transaction) error {
	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin record: %w", err)
	}
	defer dbTx.Rollback(ctx)

	insertTx := `INSERT INTO transactions (id, sender, receiver, amount, flagged, flag_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := dbTx.Exec(ctx, insertTx,
		t.ID, t.Sender, t.Receiver, t.Amount, t.Flagged, t.FlagReason, t.CreatedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateTransaction
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	insertIdx := `INSERT INTO party_transactions (party, transaction_id) VALUES ($1, $2)`
	if _, err := dbTx.Exec(ctx, insertIdx, t.Sender, t.ID); err != nil {
		return fmt.Errorf("index sender: %w", err)
	}
	if _, err := dbTx.Exec(ctx, insertIdx, t.Receiver, t.ID); err != nil {
		return fmt.Errorf("index receiver: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

// Get fetches a transaction by id. An unknown id yields the zero
// Transaction with no error.
func (r *LedgerRepo) Get(ctx context.Context, id string) (domain.Transaction, error) {
	query := `SELECT id, sender, receiver, amount, flagged, flag_reason, created_at
		FROM transactions WHERE id = $1`

	var t domain.Transaction
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Sender, &t.Receiver, &t.Amount, &t.Flagged, &t.FlagReason, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Transaction{}, nil
		}
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// Flag marks the transaction suspicious, overwriting any earlier reason.
func (r *LedgerRepo) Flag(ctx context.Context, id, reason string) error {
	query := `UPDATE transactions SET flagged = TRUE, flag_reason = $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, reason, id)
	if err != nil {
		return fmt.Errorf("flag transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// TransactionsOf returns the party's transaction ids in append order.
func (r *LedgerRepo) TransactionsOf(ctx context.Context, party string) ([]string, error) {
	query := `SELECT transaction_id FROM party_transactions WHERE party = $1 ORDER BY seq`

	rows, err := r.pool.Query(ctx, query, party)
	if err != nil {
		return nil, fmt.Errorf("transactions of party: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan transaction id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction ids: %w", err)
	}
	return ids, nil
}
