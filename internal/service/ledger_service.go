package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flow-ledger/internal/core/domain"
	"flow-ledger/internal/core/ports"
	"flow-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	repo   ports.LedgerRepository
	authz  ports.Authorizer
	events ports.EventPublisher
	log    zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	repo ports.LedgerRepository,
	authz ports.Authorizer,
	events ports.EventPublisher,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		repo:   repo,
		authz:  authz,
		events: events,
		log:    log,
	}
}

// Record appends a new transaction to the ledger. The write is gated by the
// authorizer; a rejected caller causes no mutation and no event.
func (s *LedgerServiceImpl) Record(ctx context.Context, req ports.RecordRequest) (*domain.Transaction, error) {
	if req.Amount < 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.ID == "" || req.Sender == "" || req.Receiver == "" {
		return nil, apperror.Validation("id, sender and receiver are required")
	}

	if !s.authz.IsAuthorized(ctx, req.Caller) {
		return nil, apperror.ErrUnauthorized()
	}

	txn := &domain.Transaction{
		ID:        req.ID,
		Sender:    req.Sender,
		Receiver:  req.Receiver,
		Amount:    req.Amount,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Record(ctx, txn); err != nil {
		if errors.Is(err, domain.ErrDuplicateTransaction) {
			return nil, apperror.ErrAlreadyExists(req.ID)
		}
		return nil, apperror.InternalError(fmt.Errorf("record transaction: %w", err))
	}

	// Best-effort notification, after the mutation is durable.
	s.events.RecordedEvent(ctx, domain.RecordedEvent{
		ID:        txn.ID,
		Sender:    txn.Sender,
		Receiver:  txn.Receiver,
		Amount:    txn.Amount,
		Timestamp: txn.CreatedAt,
	})

	s.log.Info().
		Str("tx_id", txn.ID).
		Str("sender", txn.Sender).
		Str("receiver", txn.Receiver).
		Int64("amount", txn.Amount).
		Str("caller", req.Caller).
		Msg("transaction recorded")

	return txn, nil
}

// Get returns the stored transaction, or the zero Transaction when the id
// is unknown. Reads never fail with a not-found error.
func (s *LedgerServiceImpl) Get(ctx context.Context, id string) (domain.Transaction, error) {
	txn, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Transaction{}, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	return txn, nil
}

// Flag marks an existing transaction as suspicious. Re-flagging is allowed
// and overwrites the reason.
func (s *LedgerServiceImpl) Flag(ctx context.Context, req ports.FlagRequest) (*domain.Transaction, error) {
	if !s.authz.IsAuthorized(ctx, req.Caller) {
		return nil, apperror.ErrUnauthorized()
	}

	if err := s.repo.Flag(ctx, req.ID, req.Reason); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return nil, apperror.ErrTransactionNotFound(req.ID)
		}
		return nil, apperror.InternalError(fmt.Errorf("flag transaction: %w", err))
	}

	s.events.FlaggedEvent(ctx, domain.FlaggedEvent{ID: req.ID, Reason: req.Reason})

	s.log.Info().
		Str("tx_id", req.ID).
		Str("reason", req.Reason).
		Str("caller", req.Caller).
		Msg("transaction flagged")

	txn, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get flagged transaction: %w", err))
	}
	return &txn, nil
}

// TransactionsOf returns the party's index in append order.
func (s *LedgerServiceImpl) TransactionsOf(ctx context.Context, party string) ([]string, error) {
	ids, err := s.repo.TransactionsOf(ctx, party)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("transactions of %s: %w", party, err))
	}
	return ids, nil
}

// SentBy filters the party's index down to transactions the party sent,
// preserving index order. Duplicate index entries (self-transfers) survive
// the filter; the tracer deduplicates downstream.
func (s *LedgerServiceImpl) SentBy(ctx context.Context, party string) ([]string, error) {
	ids, err := s.repo.TransactionsOf(ctx, party)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("transactions of %s: %w", party, err))
	}

	sent := make([]string, 0, len(ids))
	for _, id := range ids {
		txn, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get transaction %s: %w", id, err))
		}
		// Zero-value records have an empty sender and never match.
		if txn.Sender == party {
			sent = append(sent, id)
		}
	}
	return sent, nil
}
