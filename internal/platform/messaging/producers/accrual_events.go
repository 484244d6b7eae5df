package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/portfolio-profit-engine/internal/config"
)

// AccrualEventProducer publishes posted-accrual events for downstream
// consumers (client notifications, analytics). Delivery is at-least-once;
// consumers deduplicate on the record ID carried in the message key.
type AccrualEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewAccrualEventProducer creates the producer and ensures the topic exists
func NewAccrualEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*AccrualEventProducer, error) {
	if cfg.AccrualTopic == "" {
		return nil, fmt.Errorf("kafka accrual topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for accrual event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.AccrualTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure accrual topic %s exists: %w", cfg.AccrualTopic, err)
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.AccrualTopic,
		Balancer: &kafka.Hash{}, // Keep one portfolio's accruals ordered on a partition
		// Synchronous writes: the outbox poller marks messages PROCESSED only
		// after a confirmed publish.
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}

	return &AccrualEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.AccrualTopic,
	}, nil
}

func (p *AccrualEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal accrual event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish accrual event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish accrual event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published accrual event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *AccrualEventProducer) Close() error {
	p.logger.Info("Closing accrual event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
