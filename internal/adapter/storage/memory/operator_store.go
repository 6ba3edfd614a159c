package memory

import (
	"context"
	"sync"

	"flow-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// OperatorStore implements ports.OperatorRepository with an in-process map.
type OperatorStore struct {
	mu        sync.RWMutex
	operators map[uuid.UUID]*domain.Operator
}

// NewOperatorStore creates an empty in-memory operator store.
func NewOperatorStore() *OperatorStore {
	return &OperatorStore{operators: make(map[uuid.UUID]*domain.Operator)}
}

func (s *OperatorStore) Create(ctx context.Context, op *domain.Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.operators {
		if existing.Username == op.Username {
			return domain.ErrDuplicateUsername
		}
	}
	stored := *op
	s.operators[op.ID] = &stored
	return nil
}

func (s *OperatorStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.operators[id]
	if !ok {
		return nil, nil
	}
	cp := *op
	return &cp, nil
}

func (s *OperatorStore) GetByAccessKey(ctx context.Context, accessKey string) (*domain.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, op := range s.operators {
		if op.AccessKey == accessKey {
			cp := *op
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *OperatorStore) GetByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, op := range s.operators {
		if op.Username == username {
			cp := *op
			return &cp, nil
		}
	}
	return nil, nil
}
