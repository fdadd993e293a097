package billing_test

import (
	"testing"
	"time"

	"github.com/warp/billing-engine/billing"
)

// asOf mid-year: March has started, later periods have not
func midJune() billing.Date { return billing.NewDate(2025, time.June, 15) }

func october2025() billing.BillingPeriod {
	return billing.BillingPeriod{
		Label: "Oct",
		Start: billing.NewDate(2025, time.October, 1),
		End:   billing.NewDate(2025, time.October, 31),
	}
}

// =============================================================================
// PRIORITY LADDER TESTS
// =============================================================================

func TestClassify_NoEnrollment(t *testing.T) {
	got := billing.Classify(nil, march2025(), myr(0), myr(0), midJune())

	if got != billing.StatusNoEnrollment {
		t.Errorf("expected no_enrollment, got %s", got)
	}
}

func TestClassify_EnrollmentStartsAfterPeriod_NotStarted(t *testing.T) {
	// SPEC scenario D: start date after period end wins regardless of fees
	e := activeEnrollment()
	e.StartDate = datePtr(billing.NewDate(2025, time.April, 1))

	got := billing.Classify(e, march2025(), myr(0), myr(100), midJune())

	if got != billing.StatusNotStarted {
		t.Errorf("expected not_started, got %s", got)
	}
}

func TestClassify_FullyPaid(t *testing.T) {
	got := billing.Classify(activeEnrollment(), march2025(), myr(80), myr(80), midJune())

	if got != billing.StatusPaid {
		t.Errorf("expected paid, got %s", got)
	}
}

func TestClassify_Overpaid_StillPaid(t *testing.T) {
	got := billing.Classify(activeEnrollment(), march2025(), myr(100), myr(80), midJune())

	if got != billing.StatusPaid {
		t.Errorf("expected paid, got %s", got)
	}
}

func TestClassify_PartialPayment(t *testing.T) {
	got := billing.Classify(activeEnrollment(), march2025(), myr(40), myr(80), midJune())

	if got != billing.StatusPartialPayment {
		t.Errorf("expected partial_payment, got %s", got)
	}
}

func TestClassify_PaymentBeatsCancellation(t *testing.T) {
	// SPEC: a cell with paid >= expected > 0 is always paid, even if the
	// subscription was cancelled within the period. Money received
	// overrides subscription state.
	e := activeEnrollment()
	e.SubscriptionCancelAt = datePtr(billing.NewDate(2025, time.March, 15))

	got := billing.Classify(e, march2025(), myr(80), myr(80), midJune())

	if got != billing.StatusPaid {
		t.Errorf("payment must precede cancellation check: expected paid, got %s", got)
	}
}

func TestClassify_PaymentBeatsWithdrawal(t *testing.T) {
	e := activeEnrollment()
	e.AcademicStatus = billing.AcademicWithdrawn

	got := billing.Classify(e, march2025(), myr(30), myr(0), midJune())

	if got != billing.StatusPartialPayment {
		t.Errorf("partial payment must precede academic status: got %s", got)
	}
}

func TestClassify_CancelledThisPeriod(t *testing.T) {
	// SPEC scenario C: cancel-at mid-period, no orders
	e := activeEnrollment()
	e.SubscriptionCancelAt = datePtr(billing.NewDate(2025, time.March, 15))

	got := billing.Classify(e, march2025(), myr(0), myr(80), midJune())

	if got != billing.StatusCancelledThisPeriod {
		t.Errorf("expected cancelled_this_period, got %s", got)
	}
}

func TestClassify_CancelledBeforePeriod(t *testing.T) {
	e := activeEnrollment()
	e.SubscriptionCancelAt = datePtr(billing.NewDate(2025, time.January, 20))

	got := billing.Classify(e, march2025(), myr(0), myr(0), midJune())

	if got != billing.StatusCancelledBefore {
		t.Errorf("expected cancelled_before, got %s", got)
	}
}

func TestClassify_AcademicStatuses(t *testing.T) {
	cases := []struct {
		academic billing.AcademicStatus
		want     billing.PaymentStatus
	}{
		{billing.AcademicWithdrawn, billing.StatusWithdrawn},
		{billing.AcademicSuspended, billing.StatusSuspended},
		{billing.AcademicCompleted, billing.StatusCompleted},
	}

	for _, tc := range cases {
		e := activeEnrollment()
		e.AcademicStatus = tc.academic

		got := billing.Classify(e, march2025(), myr(0), myr(0), midJune())

		if got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.academic, tc.want, got)
		}
	}
}

func TestClassify_NothingOwed_NoPaymentDue(t *testing.T) {
	got := billing.Classify(activeEnrollment(), march2025(), myr(0), myr(0), midJune())

	if got != billing.StatusNoPaymentDue {
		t.Errorf("expected no_payment_due, got %s", got)
	}
}

func TestClassify_FuturePeriod_ActiveSubscription_PendingPayment(t *testing.T) {
	got := billing.Classify(activeEnrollment(), october2025(), myr(0), myr(80), midJune())

	if got != billing.StatusPendingPayment {
		t.Errorf("expected pending_payment for future period, got %s", got)
	}
}

func TestClassify_FuturePeriod_InactiveSubscription_NotStarted(t *testing.T) {
	e := activeEnrollment()
	e.SubscriptionStatus = billing.SubscriptionPastDue

	got := billing.Classify(e, october2025(), myr(0), myr(80), midJune())

	if got != billing.StatusNotStarted {
		t.Errorf("expected not_started for future period without active subscription, got %s", got)
	}
}

func TestClassify_PeriodStarted_FeeOwed_NonePaid_Unpaid(t *testing.T) {
	// SPEC scenario A shape: period already started, fully unpaid
	got := billing.Classify(activeEnrollment(), march2025(), myr(0), myr(100), midJune())

	if got != billing.StatusUnpaid {
		t.Errorf("expected unpaid, got %s", got)
	}
}
