package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType defines ledger transaction categories
type EntryType string

const (
	EntryTypeDeposit    EntryType = "DEPOSIT"
	EntryTypeWithdrawal EntryType = "WITHDRAWAL"
	EntryTypePayout     EntryType = "PAYOUT"
	EntryTypeProfit     EntryType = "PROFIT"
)

// Entry is one append-only ledger transaction row. The accrual engine only
// ever writes PROFIT entries; deposits, withdrawals and payouts are written by
// the back-office workflows outside this engine.
type Entry struct {
	ID          uuid.UUID       `json:"id" bson:"transaction_id"`
	PortfolioID uuid.UUID       `json:"portfolio_id" bson:"portfolio_id"`
	UserID      uuid.UUID       `json:"user_id" bson:"user_id"`
	Type        EntryType       `json:"type" bson:"type"`
	Amount      decimal.Decimal `json:"amount" bson:"amount"`
	Description string          `json:"description" bson:"description"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
}

// NewProfitEntry builds the ledger transaction for one accrual posting.
// The percentage in the description is the rate actually applied, after
// resolution and proration.
func NewProfitEntry(portfolioID, userID uuid.UUID, amount, appliedPercent decimal.Decimal, month, year int) *Entry {
	return &Entry{
		ID:          uuid.New(),
		PortfolioID: portfolioID,
		UserID:      userID,
		Type:        EntryTypeProfit,
		Amount:      amount,
		Description: fmt.Sprintf("Profit %d/%d (%s%%)", month, year, appliedPercent.StringFixed(2)),
		CreatedAt:   time.Now().UTC(),
	}
}
