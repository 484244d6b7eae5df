// Package accrual implements the profit accrual engine: the per-run settings
// snapshot, the rate resolver, proration policy, the per-portfolio engine,
// the batch coordinator, and the scheduler that drives it all.
package accrual

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/domain/sysconfig"
)

// CalculationMode defines how the nominal monthly rate maps onto one cycle
type CalculationMode string

const (
	// CalcProrated scales the monthly rate down to the configured cycle length
	CalcProrated CalculationMode = "PRORATED"
	// CalcFullCycle applies the full monthly rate every cycle, however short.
	// Used to accelerate testing and demo cadences.
	CalcFullCycle CalculationMode = "FULL_CYCLE"
)

// ProrationMethod defines how a partial first cycle is reduced
type ProrationMethod string

const (
	ProrationDayBased  ProrationMethod = "DAY_BASED"
	ProrationSlabBased ProrationMethod = "SLAB_BASED"
)

// ConfigReader is the slice of the configuration store the engine needs
type ConfigReader interface {
	Get(ctx context.Context, key string) (string, error)
	GetDecimal(ctx context.Context, key string) (decimal.Decimal, error)
	GetInt(ctx context.Context, key string) (int, error)
	GetBool(ctx context.Context, key string) (bool, error)
}

// Settings is one batch run's snapshot of the accrual configuration.
// It is re-resolved on every run because config may change between runs.
type Settings struct {
	DurationValue    int
	DurationUnit     domain.DurationUnit
	FixedRate        decimal.Decimal // Nominal monthly percent for FIXED portfolios
	CompoundingRate  decimal.Decimal // Nominal monthly percent for COMPOUNDING portfolios
	CalcMode         CalculationMode
	ProrationEnabled bool
	ProrationMethod  ProrationMethod
	Slabs            []Slab
	CutoffDay        int
	UseApprovalDate  bool
}

// ResolveSettings reads and validates the full accrual configuration.
// Any missing key or unparsable value makes the whole resolution fail; a batch
// never runs on partial configuration.
func ResolveSettings(ctx context.Context, cfg ConfigReader) (*Settings, error) {
	durationValue, err := cfg.GetInt(ctx, sysconfig.KeyAccrualDurationValue)
	if err != nil {
		return nil, err
	}
	if durationValue <= 0 {
		return nil, fmt.Errorf("config key %s must be positive, got %d", sysconfig.KeyAccrualDurationValue, durationValue)
	}

	rawUnit, err := cfg.Get(ctx, sysconfig.KeyAccrualDurationUnit)
	if err != nil {
		return nil, err
	}
	unit, err := domain.ParseDurationUnit(rawUnit)
	if err != nil {
		return nil, fmt.Errorf("config key %s: %w", sysconfig.KeyAccrualDurationUnit, err)
	}

	fixedRate, err := cfg.GetDecimal(ctx, sysconfig.KeyFixedRatePercent)
	if err != nil {
		return nil, err
	}
	compoundingRate, err := cfg.GetDecimal(ctx, sysconfig.KeyCompoundingRatePercent)
	if err != nil {
		return nil, err
	}

	rawCalcMode, err := cfg.Get(ctx, sysconfig.KeyCalculationMode)
	if err != nil {
		return nil, err
	}
	calcMode, err := parseCalculationMode(rawCalcMode)
	if err != nil {
		return nil, fmt.Errorf("config key %s: %w", sysconfig.KeyCalculationMode, err)
	}

	prorationEnabled, err := cfg.GetBool(ctx, sysconfig.KeyUseFirstCycleProration)
	if err != nil {
		return nil, err
	}

	rawMethod, err := cfg.Get(ctx, sysconfig.KeyProrationMethod)
	if err != nil {
		return nil, err
	}
	method, err := parseProrationMethod(rawMethod)
	if err != nil {
		return nil, fmt.Errorf("config key %s: %w", sysconfig.KeyProrationMethod, err)
	}

	rawSlabs, err := cfg.Get(ctx, sysconfig.KeyProrationSlabs)
	if err != nil {
		return nil, err
	}
	slabs, err := ParseSlabs(rawSlabs)
	if err != nil {
		return nil, fmt.Errorf("config key %s: %w", sysconfig.KeyProrationSlabs, err)
	}

	cutoffDay, err := cfg.GetInt(ctx, sysconfig.KeyCutoffDay)
	if err != nil {
		return nil, err
	}

	useApprovalDate, err := cfg.GetBool(ctx, sysconfig.KeyUseApprovalDateAsEntryDate)
	if err != nil {
		return nil, err
	}

	return &Settings{
		DurationValue:    durationValue,
		DurationUnit:     unit,
		FixedRate:        fixedRate,
		CompoundingRate:  compoundingRate,
		CalcMode:         calcMode,
		ProrationEnabled: prorationEnabled,
		ProrationMethod:  method,
		Slabs:            slabs,
		CutoffDay:        cutoffDay,
		UseApprovalDate:  useApprovalDate,
	}, nil
}

func parseCalculationMode(s string) (CalculationMode, error) {
	switch CalculationMode(strings.ToUpper(strings.TrimSpace(s))) {
	case CalcProrated:
		return CalcProrated, nil
	case CalcFullCycle:
		return CalcFullCycle, nil
	default:
		return "", fmt.Errorf("unknown calculation mode: %q", s)
	}
}

func parseProrationMethod(s string) (ProrationMethod, error) {
	switch ProrationMethod(strings.ToUpper(strings.TrimSpace(s))) {
	case ProrationDayBased:
		return ProrationDayBased, nil
	case ProrationSlabBased:
		return ProrationSlabBased, nil
	default:
		return "", fmt.Errorf("unknown proration method: %q", s)
	}
}
