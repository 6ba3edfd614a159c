package memory

import (
	"context"
	"sync"

	"flow-ledger/internal/core/domain"
)

// LedgerStore implements ports.LedgerRepository with in-process maps.
// A single RWMutex serializes all mutations against each other and against
// reads; there is no per-transaction locking.
type LedgerStore struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	partyIndex   map[string][]string // party -> tx ids, append order
}

// NewLedgerStore creates an empty in-memory ledger.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		transactions: make(map[string]*domain.Transaction),
		partyIndex:   make(map[string][]string),
	}
}

// Record inserts the transaction and appends its id to both party indexes.
// When sender == receiver the id is appended twice, once per role.
func (s *LedgerStore) Record(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.transactions[tx.ID]; ok && existing.Exists() {
		return domain.ErrDuplicateTransaction
	}

	stored := *tx
	s.transactions[tx.ID] = &stored
	s.partyIndex[tx.Sender] = append(s.partyIndex[tx.Sender], tx.ID)
	s.partyIndex[tx.Receiver] = append(s.partyIndex[tx.Receiver], tx.ID)
	return nil
}

// Get returns the stored transaction, or the zero Transaction when absent.
func (s *LedgerStore) Get(ctx context.Context, id string) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return domain.Transaction{}, nil
	}
	return *tx, nil
}

// Flag marks the transaction, overwriting any prior flag state.
func (s *LedgerStore) Flag(ctx context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok || !tx.Exists() {
		return domain.ErrTransactionNotFound
	}
	tx.Flagged = true
	tx.FlagReason = reason
	return nil
}

// TransactionsOf returns a copy of the party's index in append order.
func (s *LedgerStore) TransactionsOf(ctx context.Context, party string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.partyIndex[party]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}
