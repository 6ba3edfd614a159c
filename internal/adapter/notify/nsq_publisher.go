// Package notify provides the fire-and-forget notification sinks behind
// ports.EventPublisher. Delivery failures are logged, never surfaced:
// notifications must not affect ledger semantics.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"flow-ledger/internal/core/domain"

	"github.com/nsqio/go-nsq"
	"github.com/rs/zerolog"
)

// NSQPublisher implements ports.EventPublisher on an NSQ daemon. Each event
// kind goes to its own topic as a JSON payload.
type NSQPublisher struct {
	producer *nsq.Producer
	log      zerolog.Logger
}

// NewNSQPublisher creates an NSQ producer and verifies connectivity.
func NewNSQPublisher(addr string, log zerolog.Logger) (*NSQPublisher, error) {
	cfg := nsq.NewConfig()
	producer, err := nsq.NewProducer(addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating nsq producer: %w", err)
	}
	if err := producer.Ping(); err != nil {
		return nil, fmt.Errorf("pinging nsq daemon: %w", err)
	}

	log.Info().Str("addr", addr).Msg("NSQ producer connected")
	return &NSQPublisher{producer: producer, log: log}, nil
}

// RecordedEvent publishes a recorded-transaction notification.
func (p *NSQPublisher) RecordedEvent(_ context.Context, ev domain.RecordedEvent) {
	p.publish(domain.TopicRecorded, ev)
}

// FlaggedEvent publishes a flagged-transaction notification.
func (p *NSQPublisher) FlaggedEvent(_ context.Context, ev domain.FlaggedEvent) {
	p.publish(domain.TopicFlagged, ev)
}

// KycUpdatedEvent publishes a KYC tag change notification.
func (p *NSQPublisher) KycUpdatedEvent(_ context.Context, ev domain.KycUpdatedEvent) {
	p.publish(domain.TopicKycUpdated, ev)
}

func (p *NSQPublisher) publish(topic string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error().Err(err).Str("topic", topic).Msg("marshal event failed")
		return
	}
	if err := p.producer.Publish(topic, body); err != nil {
		p.log.Error().Err(err).Str("topic", topic).Msg("publish event failed")
		return
	}
	p.log.Debug().Str("topic", topic).Msg("event published")
}

// Stop gracefully stops the producer.
func (p *NSQPublisher) Stop() {
	p.producer.Stop()
}
