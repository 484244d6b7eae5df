package accrual

import (
	"github.com/shopspring/decimal"

	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
)

// minutesPerNominalMonth is the proration denominator: a nominal 30-day month.
var minutesPerNominalMonth = decimal.NewFromInt(30 * 24 * 60)

// EffectiveRate converts a nominal monthly percentage into the percentage one
// cycle is worth, given the configured cycle length and calculation mode.
//
// FULL_CYCLE leaves the nominal rate untouched: every cycle, however short,
// earns a full month's profit. PRORATED scales the rate by the cycle's share
// of a nominal month, except for MONTHS cycles which are exact integer
// multiples of the monthly rate.
//
// Pure and stateless: callers re-derive it every batch run since the config
// may have changed in between.
func EffectiveRate(nominal decimal.Decimal, durationValue int, unit domain.DurationUnit, mode CalculationMode) decimal.Decimal {
	if mode == CalcFullCycle {
		return nominal
	}

	if unit == domain.UnitMonths {
		return nominal.Mul(decimal.NewFromInt(int64(durationValue)))
	}

	cycleMinutes := decimal.NewFromInt(domain.CycleMinutes(durationValue, unit))
	return nominal.Mul(cycleMinutes).Div(minutesPerNominalMonth)
}
