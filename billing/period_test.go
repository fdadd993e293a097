package billing_test

import (
	"testing"
	"time"

	"github.com/warp/billing-engine/billing"
)

// =============================================================================
// PERIOD GENERATION TESTS
// =============================================================================

func TestPeriodsForYear_Monthly_TwelvePeriods(t *testing.T) {
	periods := billing.PeriodsForYear(2025, billing.CycleMonthly)

	if len(periods) != 12 {
		t.Fatalf("expected 12 periods, got %d", len(periods))
	}
	if periods[0].Label != "Jan" {
		t.Errorf("expected first label Jan, got %s", periods[0].Label)
	}
	if periods[11].Label != "Dec" {
		t.Errorf("expected last label Dec, got %s", periods[11].Label)
	}
	if !periods[1].Start.Equal(billing.NewDate(2025, time.February, 1)) {
		t.Errorf("Feb should start on Feb 1, got %s", periods[1].Start)
	}
	if !periods[1].End.Equal(billing.NewDate(2025, time.February, 28)) {
		t.Errorf("Feb 2025 should end on Feb 28, got %s", periods[1].End)
	}
}

func TestPeriodsForYear_Monthly_LeapFebruary(t *testing.T) {
	periods := billing.PeriodsForYear(2024, billing.CycleMonthly)

	if !periods[1].End.Equal(billing.NewDate(2024, time.February, 29)) {
		t.Errorf("Feb 2024 should end on Feb 29, got %s", periods[1].End)
	}
}

func TestPeriodsForYear_Quarterly_FourPeriods(t *testing.T) {
	periods := billing.PeriodsForYear(2025, billing.CycleQuarterly)

	if len(periods) != 4 {
		t.Fatalf("expected 4 periods, got %d", len(periods))
	}

	wantLabels := []string{"Q1", "Q2", "Q3", "Q4"}
	for i, p := range periods {
		if p.Label != wantLabels[i] {
			t.Errorf("period %d: expected label %s, got %s", i, wantLabels[i], p.Label)
		}
	}
	if !periods[2].Start.Equal(billing.NewDate(2025, time.July, 1)) {
		t.Errorf("Q3 should start Jul 1, got %s", periods[2].Start)
	}
	if !periods[2].End.Equal(billing.NewDate(2025, time.September, 30)) {
		t.Errorf("Q3 should end Sep 30, got %s", periods[2].End)
	}
}

func TestPeriodsForYear_Yearly_OnePeriod(t *testing.T) {
	periods := billing.PeriodsForYear(2025, billing.CycleYearly)

	if len(periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(periods))
	}
	if periods[0].Label != "2025" {
		t.Errorf("expected label 2025, got %s", periods[0].Label)
	}
}

func TestPeriodsForYear_Coverage_ContiguousNoGapsNoOverlaps(t *testing.T) {
	// SPEC: for any year and cycle, the generated periods are contiguous,
	// non-overlapping, and together span exactly Jan 1 - Dec 31.
	cycles := []billing.BillingCycle{billing.CycleMonthly, billing.CycleQuarterly, billing.CycleYearly}
	years := []int{2023, 2024, 2025}

	for _, cycle := range cycles {
		for _, year := range years {
			periods := billing.PeriodsForYear(year, cycle)

			if !periods[0].Start.Equal(billing.StartOfYear(year)) {
				t.Errorf("%s %d: first period should start Jan 1, got %s", cycle, year, periods[0].Start)
			}
			if !periods[len(periods)-1].End.Equal(billing.EndOfYear(year)) {
				t.Errorf("%s %d: last period should end Dec 31, got %s", cycle, year, periods[len(periods)-1].End)
			}

			for i := 1; i < len(periods); i++ {
				if !periods[i].Start.Equal(periods[i-1].End.AddDays(1)) {
					t.Errorf("%s %d: gap/overlap between %s and %s", cycle, year, periods[i-1], periods[i])
				}
			}
		}
	}
}

func TestPeriodsFor_NoFeeSettings_DefaultsToMonthly(t *testing.T) {
	// GIVEN: A course with no fee settings configured
	// WHEN: Generating its billing periods
	// THEN: It defaults to 12 monthly periods
	periods := billing.PeriodsFor(2025, nil)

	if len(periods) != 12 {
		t.Fatalf("expected monthly default (12 periods), got %d", len(periods))
	}
}

func TestPeriodsForYear_UnknownCycle_FallsBackToMonthly(t *testing.T) {
	periods := billing.PeriodsForYear(2025, billing.BillingCycle("weekly"))

	if len(periods) != 12 {
		t.Fatalf("expected monthly fallback (12 periods), got %d", len(periods))
	}
}

func TestBillingPeriod_Contains_InclusiveBounds(t *testing.T) {
	p := billing.BillingPeriod{
		Label: "Mar",
		Start: billing.NewDate(2025, time.March, 1),
		End:   billing.NewDate(2025, time.March, 31),
	}

	if !p.Contains(p.Start) {
		t.Error("period should contain its own start date")
	}
	if !p.Contains(p.End) {
		t.Error("period should contain its own end date")
	}
	if p.Contains(billing.NewDate(2025, time.April, 1)) {
		t.Error("period should not contain the next period's start")
	}
}
