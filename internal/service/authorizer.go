package service

import (
	"context"

	"flow-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// OperatorAuthorizer implements ports.Authorizer against the operator
// store: a caller may mutate the ledger when its account is active and
// carries the write capability. Swapping this implementation changes the
// write policy without touching the ledger core.
type OperatorAuthorizer struct {
	operators ports.OperatorRepository
	log       zerolog.Logger
}

// NewOperatorAuthorizer creates an OperatorAuthorizer.
func NewOperatorAuthorizer(operators ports.OperatorRepository, log zerolog.Logger) *OperatorAuthorizer {
	return &OperatorAuthorizer{operators: operators, log: log}
}

// IsAuthorized reports whether the named operator may write.
func (a *OperatorAuthorizer) IsAuthorized(ctx context.Context, caller string) bool {
	op, err := a.operators.GetByUsername(ctx, caller)
	if err != nil {
		a.log.Error().Err(err).Str("caller", caller).Msg("authorizer lookup failed")
		return false
	}
	if op == nil {
		return false
	}
	return op.IsActive() && op.CanWrite
}
