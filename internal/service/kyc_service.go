package service

import (
	"context"
	"fmt"

	"flow-ledger/internal/core/domain"
	"flow-ledger/internal/core/ports"
	"flow-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// KYCServiceImpl implements ports.KYCService. Tags are an independent
// key-value record per party; the flow tracer never reads them.
type KYCServiceImpl struct {
	repo   ports.KYCRepository
	authz  ports.Authorizer
	events ports.EventPublisher
	log    zerolog.Logger
}

// NewKYCService creates a new KYCServiceImpl.
func NewKYCService(
	repo ports.KYCRepository,
	authz ports.Authorizer,
	events ports.EventPublisher,
	log zerolog.Logger,
) *KYCServiceImpl {
	return &KYCServiceImpl{repo: repo, authz: authz, events: events, log: log}
}

// SetTag stores the party's classification tag. Gated like the ledger
// writes.
func (s *KYCServiceImpl) SetTag(ctx context.Context, caller, party, tag string) error {
	if !s.authz.IsAuthorized(ctx, caller) {
		return apperror.ErrUnauthorized()
	}
	if err := s.repo.SetTag(ctx, party, tag); err != nil {
		return apperror.InternalError(fmt.Errorf("set kyc tag: %w", err))
	}

	s.events.KycUpdatedEvent(ctx, domain.KycUpdatedEvent{Party: party, Tag: tag})

	s.log.Info().
		Str("party", party).
		Str("tag", tag).
		Str("caller", caller).
		Msg("kyc tag updated")
	return nil
}

// GetTag returns the party's tag, or "" when none is set.
func (s *KYCServiceImpl) GetTag(ctx context.Context, party string) (string, error) {
	tag, err := s.repo.GetTag(ctx, party)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("get kyc tag: %w", err))
	}
	return tag, nil
}
