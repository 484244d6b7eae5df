// Package mongo provides the MongoDB implementation of the accrual audit
// trail: a denormalized, append-only copy of every posted accrual, fed by the
// outbox poller for reporting and reconciliation.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/portfolio-profit-engine/internal/domain/outbox"
)

const (
	// AuditCollectionName is the name of the audit collection in MongoDB
	AuditCollectionName = "accrual_audit"
)

// AuditRepository persists accrual audit documents in MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert stores the audit document for one posted accrual, keyed by record
// ID so a redelivered outbox message never produces a duplicate.
func (r *AuditRepository) Upsert(ctx context.Context, event *outbox.Event) error {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"record.record_id": event.Record.ID}
	update := bson.M{"$set": event}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		r.logger.Error("Failed to upsert accrual audit document",
			"record_id", event.Record.ID.String(),
			"error", err)
		return fmt.Errorf("failed to upsert accrual audit document: %w", err)
	}

	return nil
}

// GetByRecordID retrieves one audit document, or (nil, nil) when absent
func (r *AuditRepository) GetByRecordID(ctx context.Context, recordID uuid.UUID) (*outbox.Event, error) {
	collection := r.db.Collection(AuditCollectionName)

	var event outbox.Event
	err := collection.FindOne(ctx, bson.M{"record.record_id": recordID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get accrual audit document",
			"record_id", recordID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get accrual audit document: %w", err)
	}

	return &event, nil
}

// ListByPortfolio returns a portfolio's audit documents, newest first
func (r *AuditRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID, limit int64) ([]*outbox.Event, error) {
	collection := r.db.Collection(AuditCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "record.calculated_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, bson.M{"record.portfolio_id": portfolioID}, opts)
	if err != nil {
		r.logger.Error("Failed to list accrual audit documents",
			"portfolio_id", portfolioID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list accrual audit documents: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*outbox.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode accrual audit documents: %w", err)
	}

	return events, nil
}
