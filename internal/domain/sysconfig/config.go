package sysconfig

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Recognized configuration keys. These drive the accrual engine's cadence,
// rates, and proration policy; all of them are seeded at startup.
const (
	KeyAccrualDurationValue       = "ACCRUAL_DURATION_VALUE"
	KeyAccrualDurationUnit        = "ACCRUAL_DURATION_UNIT"
	KeyFixedRatePercent           = "FIXED_RATE_PERCENT"
	KeyCompoundingRatePercent     = "COMPOUNDING_RATE_PERCENT"
	KeyCalculationMode            = "CALCULATION_MODE"
	KeyUseFirstCycleProration     = "USE_FIRST_CYCLE_PRORATION"
	KeyProrationMethod            = "PRORATION_METHOD"
	KeyProrationSlabs             = "PRORATION_SLABS"
	KeyCutoffDay                  = "CUTOFF_DAY"
	KeyUseApprovalDateAsEntryDate = "USE_APPROVAL_DATE_AS_ENTRY_DATE"
	KeyPayoutWindowStartDay       = "PAYOUT_WINDOW_START_DAY"
	KeyPayoutWindowEndDay         = "PAYOUT_WINDOW_END_DAY"
)

// Entry is one persisted configuration row
type Entry struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Default pairs a key with its seeded value. Seeding never overwrites an
// existing row.
type Default struct {
	Key         string
	Value       string
	Description string
}

// Defaults returns the full set of keys seeded at startup
func Defaults() []Default {
	return []Default{
		{KeyAccrualDurationValue, "1", "Length of one accrual cycle (value)"},
		{KeyAccrualDurationUnit, "MONTHS", "Length of one accrual cycle (unit): MINUTES, HOURS, DAYS or MONTHS"},
		{KeyFixedRatePercent, "4.0", "Nominal monthly profit percentage for FIXED portfolios"},
		{KeyCompoundingRatePercent, "3.6", "Nominal monthly profit percentage for COMPOUNDING portfolios"},
		{KeyCalculationMode, "PRORATED", "PRORATED scales the monthly rate to the cycle length; FULL_CYCLE applies it unchanged"},
		{KeyUseFirstCycleProration, "true", "Enable first-cycle proration"},
		{KeyProrationMethod, "DAY_BASED", "Proration method: DAY_BASED or SLAB_BASED"},
		{KeyProrationSlabs, "10:1.0,20:0.66,31:0.33", "Slab tiers as maxEntryDay:fraction pairs"},
		{KeyCutoffDay, "15", "Entry after this day of month earns nothing in the first cycle when proration is disabled"},
		{KeyUseApprovalDateAsEntryDate, "true", "Use admin approval date as entry date instead of creation date"},
		{KeyPayoutWindowStartDay, "5", "Start day of the monthly payout window"},
		{KeyPayoutWindowEndDay, "10", "End day of the monthly payout window"},
	}
}

// Repository manages configuration row persistence
type Repository interface {
	// Find returns (nil, nil) when the key is absent
	Find(ctx context.Context, key string) (*Entry, error)
	Insert(ctx context.Context, entry *Entry) error
	UpdateValue(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]*Entry, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrConfigMissing indicates a required key was absent at resolve time.
// This is fatal for a batch tick, never softened into a default.
type ErrConfigMissing struct {
	Key string
}

func (e ErrConfigMissing) Error() string {
	return "config key not found: " + e.Key
}

// Is implements the errors.Is interface for ErrConfigMissing
func (e ErrConfigMissing) Is(target error) bool {
	t, ok := target.(ErrConfigMissing)
	if !ok {
		return false
	}
	if t.Key == "" {
		return true
	}
	return e.Key == t.Key
}
