/*
expected.go - Expected amount rules

PURPOSE:
  Answers "what should this student have paid for this period?" given their
  enrollment and the course's fee configuration.

RULE ORDER (first match short-circuits to zero):
  1. No enrollment
  2. Enrollment's effective start is after the period end
  3. Subscription cancelled on or before the period start
  4. Academically withdrawn or suspended
  5. Otherwise: enrollment fee override if set and nonzero, else course fee,
     else zero

Enrollment-level overrides (discounts, promotions) take precedence over
course-level defaults. Cancellation and withdrawal zero out the obligation
regardless of fee configuration.

SEE ALSO:
  - status.go: Classification consuming the expected amount
  - grid.go: The aggregator calling into both
*/
package billing

// ExpectedAmount computes the fee owed for one period. Pure; never errors.
// A nil enrollment means the student has no course enrollment record yet
// and owes nothing.
func ExpectedAmount(enrollment *Enrollment, period BillingPeriod, fees *FeeSettings) Money {
	if enrollment == nil {
		return ZeroMoney()
	}

	if enrollment.EffectiveStart().After(period.End) {
		return ZeroMoney()
	}

	if enrollment.SubscriptionCancelAt != nil && enrollment.SubscriptionCancelAt.BeforeOrEqual(period.Start) {
		return ZeroMoney()
	}

	if enrollment.AcademicStatus == AcademicWithdrawn || enrollment.AcademicStatus == AcademicSuspended {
		return ZeroMoney()
	}

	if enrollment.EnrollmentFee != nil && !enrollment.EnrollmentFee.IsZero() {
		return *enrollment.EnrollmentFee
	}
	if fees != nil {
		return fees.FeeAmount
	}
	return ZeroMoney()
}
