// Package outbox_poller drains the transactional outbox: every accrual
// committed in Postgres is delivered to the Mongo audit trail and the Kafka
// event topic, at least once, without coupling the accrual transaction to
// either system's availability.
package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/portfolio-profit-engine/internal/data/mongo"
	"github.com/portfolio-profit-engine/internal/domain/outbox"
	"github.com/portfolio-profit-engine/internal/platform/messaging/producers"
)

// AuditPublisher delivers one outbox message downstream
type AuditPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

// AuditPublisherImpl writes the audit document to MongoDB and emits the
// accrual event to Kafka. Both sides are idempotent for redelivery: the audit
// write upserts on record ID and event consumers deduplicate on the message
// key.
type AuditPublisherImpl struct {
	auditRepo *mongo.AuditRepository
	events    producers.MessagePublisher
	logger    *slog.Logger
}

// NewAuditPublisher creates a new publisher
func NewAuditPublisher(
	auditRepo *mongo.AuditRepository,
	events producers.MessagePublisher,
	logger *slog.Logger,
) AuditPublisher {
	return &AuditPublisherImpl{
		auditRepo: auditRepo,
		events:    events,
		logger:    logger,
	}
}

// Publish processes one outbox message
func (p *AuditPublisherImpl) Publish(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetEvent()
	if err != nil {
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	if err := p.auditRepo.Upsert(ctx, event); err != nil {
		return fmt.Errorf("failed to write audit document for outbox %d: %w", message.ID, err)
	}

	if err := p.events.Publish(ctx, event.Record.ID.String(), event); err != nil {
		return fmt.Errorf("failed to publish accrual event for outbox %d: %w", message.ID, err)
	}

	p.logger.Info("Published accrual to audit trail and event topic",
		"outbox_id", message.ID,
		"record_id", event.Record.ID.String(),
		"portfolio_id", event.Record.PortfolioID.String(),
	)
	return nil
}
