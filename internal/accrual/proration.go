package accrual

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
)

// Slab is one tier of slab-based proration: entries up to and including
// MaxEntryDay earn the given fraction of the cycle's profit.
type Slab struct {
	MaxEntryDay int
	Fraction    decimal.Decimal
}

// ParseSlabs parses the configured tier list, e.g. "10:1.0,20:0.66,31:0.33".
// Tiers are policy, not code: operators adjust them through the config store.
func ParseSlabs(raw string) ([]Slab, error) {
	parts := strings.Split(raw, ",")
	if len(parts) == 0 || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty slab definition")
	}

	slabs := make([]Slab, 0, len(parts))
	for _, part := range parts {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed slab %q, want maxEntryDay:fraction", part)
		}

		day, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil || day < 1 || day > 31 {
			return nil, fmt.Errorf("slab %q has invalid day boundary", part)
		}

		fraction, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("slab %q has invalid fraction: %w", part, err)
		}
		if fraction.IsNegative() || fraction.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("slab %q fraction must be within [0,1]", part)
		}

		slabs = append(slabs, Slab{MaxEntryDay: day, Fraction: fraction})
	}

	sort.Slice(slabs, func(i, j int) bool { return slabs[i].MaxEntryDay < slabs[j].MaxEntryDay })
	return slabs, nil
}

// FirstCycleFraction computes the proratable share of a portfolio's first
// cycle, given the entry day within the cycle's calendar month.
func FirstCycleFraction(method ProrationMethod, slabs []Slab, cycle domain.Cycle, entryDay int) decimal.Decimal {
	switch method {
	case ProrationSlabBased:
		return slabFraction(slabs, entryDay)
	default:
		return dayBasedFraction(cycle, entryDay)
	}
}

// dayBasedFraction returns (daysInMonth - entryDay + 1) / daysInMonth:
// the exact share of the month the portfolio was invested.
func dayBasedFraction(cycle domain.Cycle, entryDay int) decimal.Decimal {
	daysInMonth := cycle.DaysInMonth()
	remaining := daysInMonth - entryDay + 1
	if remaining <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(remaining)).Div(decimal.NewFromInt(int64(daysInMonth)))
}

// slabFraction returns the fraction of the first matching tier. An entry day
// beyond every tier boundary earns the last tier's fraction.
func slabFraction(slabs []Slab, entryDay int) decimal.Decimal {
	for _, slab := range slabs {
		if entryDay <= slab.MaxEntryDay {
			return slab.Fraction
		}
	}
	if len(slabs) == 0 {
		return decimal.Zero
	}
	return slabs[len(slabs)-1].Fraction
}
