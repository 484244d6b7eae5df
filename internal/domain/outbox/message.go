package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/domain/ledger"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// Event is the payload carried by an outbox message: one posted accrual with
// its ledger transaction, as delivered to the audit trail and the event topic.
type Event struct {
	Record      accrual.Record `json:"record" bson:"record"`
	Transaction ledger.Entry   `json:"transaction" bson:"transaction"`
}

// Message stores a posted accrual for reliable downstream publishing.
// It is inserted in the same database transaction as the accrual itself.
type Message struct {
	ID            int64           `json:"id"`
	RecordID      uuid.UUID       `json:"record_id"`
	PortfolioID   uuid.UUID       `json:"portfolio_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

func NewMessage(record *accrual.Record, entry *ledger.Entry) (*Message, error) {
	payload, err := json.Marshal(Event{Record: *record, Transaction: *entry})
	if err != nil {
		return nil, err
	}

	return &Message{
		RecordID:    record.ID,
		PortfolioID: record.PortfolioID,
		Payload:     payload,
		Status:      StatusPending,
		Attempts:    0,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}

// GetEvent extracts the accrual event from the payload
func (m *Message) GetEvent() (*Event, error) {
	var event Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
