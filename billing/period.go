package billing

import (
	"strconv"
	"time"
)

// =============================================================================
// BILLING PERIOD - The bucketing unit for expected and actual payments
// =============================================================================

// BillingPeriod is a contiguous calendar interval used to bucket expected
// fees and payment orders. Value object: generated per report request,
// never persisted.
type BillingPeriod struct {
	Label string
	Start Date
	End   Date
}

// Contains returns true if the date is within [Start, End].
func (p BillingPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

func (p BillingPeriod) String() string {
	return p.Label + " [" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// PERIOD GENERATOR
// =============================================================================

// PeriodsForYear produces the ordered billing periods covering the full
// calendar year for the given cycle. Periods are contiguous and
// non-overlapping, together spanning exactly Jan 1 - Dec 31.
//
// Pure function of (year, cycle); an unknown cycle falls back to monthly,
// matching the default applied when a course has no fee settings.
func PeriodsForYear(year int, cycle BillingCycle) []BillingPeriod {
	switch cycle {
	case CycleYearly:
		return []BillingPeriod{{
			Label: strconv.Itoa(year),
			Start: StartOfYear(year),
			End:   EndOfYear(year),
		}}

	case CycleQuarterly:
		periods := make([]BillingPeriod, 0, 4)
		for q := 1; q <= 4; q++ {
			periods = append(periods, BillingPeriod{
				Label: "Q" + strconv.Itoa(q),
				Start: StartOfQuarter(year, q),
				End:   EndOfQuarter(year, q),
			})
		}
		return periods

	default: // monthly
		periods := make([]BillingPeriod, 0, 12)
		for m := time.January; m <= time.December; m++ {
			periods = append(periods, BillingPeriod{
				Label: m.String()[:3],
				Start: StartOfMonth(year, m),
				End:   EndOfMonth(year, m),
			})
		}
		return periods
	}
}

// PeriodsFor resolves the cycle from fee settings (nil settings default to
// monthly) and generates the year's periods.
func PeriodsFor(year int, fees *FeeSettings) []BillingPeriod {
	cycle := DefaultCycle
	if fees != nil && fees.BillingCycle != "" {
		cycle = fees.BillingCycle
	}
	return PeriodsForYear(year, cycle)
}
