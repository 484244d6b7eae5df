package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/portfolio-profit-engine/internal/config"
	"github.com/portfolio-profit-engine/internal/domain/outbox"
)

// Poller processes pending outbox messages
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        AuditPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher AuditPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox Poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			p.logger.Debug("Outbox Poller tick: processing pending messages")
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		p.logger.Debug("No pending outbox messages found.")
		return nil
	}

	p.logger.Info("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		if err := p.processMessage(ctx, msg); err != nil {
			p.logger.Error("Failed to process outbox message",
				"outbox_id", msg.ID,
				"portfolio_id", msg.PortfolioID.String(),
				"attempts", msg.Attempts,
				"error", err,
			)
		}
	}

	return nil
}

// processMessage delivers one message, retiring it after too many attempts
func (p *Poller) processMessage(ctx context.Context, msg *outbox.Message) error {
	if err := p.publisher.Publish(ctx, msg); err != nil {
		if incErr := p.outboxRepo.IncrementAttempts(ctx, msg.ID); incErr != nil {
			p.logger.Error("Also failed to increment outbox attempts", "outbox_id", msg.ID, "error", incErr)
		}

		if msg.Attempts+1 >= p.maxRetryAttempts {
			p.logger.Warn("Outbox message exceeded max retry attempts, marking FAILED_TO_PUBLISH",
				"outbox_id", msg.ID,
				"attempts", msg.Attempts+1,
			)
			if updErr := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusFailedToPublish); updErr != nil {
				p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH", "outbox_id", msg.ID, "error", updErr)
			}
		}
		return err
	}

	if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusProcessed); err != nil {
		// The publish succeeded; downstream sides are idempotent, so the
		// redelivery caused by this failure is harmless.
		return fmt.Errorf("published but failed to mark outbox %d as PROCESSED: %w", msg.ID, err)
	}

	return nil
}
