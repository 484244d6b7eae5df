package accrual

import (
	"fmt"
	"strings"
	"time"
)

// DurationUnit defines the unit of one accrual cycle's length
type DurationUnit string

const (
	UnitMinutes DurationUnit = "MINUTES"
	UnitHours   DurationUnit = "HOURS"
	UnitDays    DurationUnit = "DAYS"
	UnitMonths  DurationUnit = "MONTHS"
)

// minutesPerNominalMonth is the proration base: a nominal 30-day month.
const minutesPerNominalMonth = 30 * 24 * 60

// ParseDurationUnit validates and normalizes a configured unit string
func ParseDurationUnit(s string) (DurationUnit, error) {
	switch DurationUnit(strings.ToUpper(strings.TrimSpace(s))) {
	case UnitMinutes:
		return UnitMinutes, nil
	case UnitHours:
		return UnitHours, nil
	case UnitDays:
		return UnitDays, nil
	case UnitMonths:
		return UnitMonths, nil
	default:
		return "", fmt.Errorf("unknown accrual duration unit: %q", s)
	}
}

// CycleMinutes returns the length of one cycle in minutes. MONTHS cycles use
// the nominal 30-day month as their minute base.
func CycleMinutes(value int, unit DurationUnit) int64 {
	v := int64(value)
	switch unit {
	case UnitMinutes:
		return v
	case UnitHours:
		return v * 60
	case UnitDays:
		return v * 24 * 60
	default:
		return v * minutesPerNominalMonth
	}
}

// NextRun returns when the next batch is due after the given last run
func NextRun(lastRun time.Time, value int, unit DurationUnit) time.Time {
	switch unit {
	case UnitMinutes:
		return lastRun.Add(time.Duration(value) * time.Minute)
	case UnitHours:
		return lastRun.Add(time.Duration(value) * time.Hour)
	case UnitDays:
		return lastRun.AddDate(0, 0, value)
	default:
		return lastRun.AddDate(0, value, 0)
	}
}

// Cycle identifies one accrual period. For MONTHS cadences the calendar
// month/year pair is the identity used for idempotency; sub-month cadences are
// identified by the reference timestamp alone.
type Cycle struct {
	Ref time.Time `json:"ref"`
}

// CycleAt builds the cycle containing the given instant
func CycleAt(t time.Time) Cycle {
	return Cycle{Ref: t.UTC()}
}

// Month returns the cycle's calendar month (1-12)
func (c Cycle) Month() int {
	return int(c.Ref.Month())
}

// Year returns the cycle's calendar year
func (c Cycle) Year() int {
	return c.Ref.Year()
}

// DaysInMonth returns the number of days in the cycle's calendar month
func (c Cycle) DaysInMonth() int {
	firstOfNext := time.Date(c.Ref.Year(), c.Ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// ContainsEntry reports whether the given entry date falls inside this
// cycle's calendar month, which makes it the portfolio's first cycle.
func (c Cycle) ContainsEntry(entryDate time.Time) bool {
	return entryDate.Year() == c.Ref.Year() && entryDate.Month() == c.Ref.Month()
}

func (c Cycle) String() string {
	return fmt.Sprintf("%d/%d", c.Month(), c.Year())
}
