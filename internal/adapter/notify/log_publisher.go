package notify

import (
	"context"

	"flow-ledger/internal/core/domain"

	"github.com/rs/zerolog"
)

// LogPublisher implements ports.EventPublisher by writing events to the
// structured log. Used when NSQ is disabled.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher creates a log-only event publisher.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) RecordedEvent(_ context.Context, ev domain.RecordedEvent) {
	p.log.Info().
		Str("topic", domain.TopicRecorded).
		Str("id", ev.ID).
		Str("sender", ev.Sender).
		Str("receiver", ev.Receiver).
		Int64("amount", ev.Amount).
		Msg("event")
}

func (p *LogPublisher) FlaggedEvent(_ context.Context, ev domain.FlaggedEvent) {
	p.log.Info().
		Str("topic", domain.TopicFlagged).
		Str("id", ev.ID).
		Str("reason", ev.Reason).
		Msg("event")
}

func (p *LogPublisher) KycUpdatedEvent(_ context.Context, ev domain.KycUpdatedEvent) {
	p.log.Info().
		Str("topic", domain.TopicKycUpdated).
		Str("party", ev.Party).
		Str("tag", ev.Tag).
		Msg("event")
}
