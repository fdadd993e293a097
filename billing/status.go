/*
status.go - Payment status classification

PURPOSE:
  Classifies one (student, period) cell into a single PaymentStatus. The
  status drives report coloring and the consecutive-unpaid alert.

PRIORITY LADDER (first match wins - deliberate business rule):
  1. No enrollment                         -> no_enrollment
  2. Enrollment starts after period end    -> not_started
  3. Money received:
       paid >= expected > 0                -> paid
       paid > 0                            -> partial_payment
  4. Subscription cancelled:
       within the period                   -> cancelled_this_period
       strictly before period start        -> cancelled_before
  5. Academic standing:
       withdrawn / suspended / completed
  6. Nothing owed                          -> no_payment_due
  7. Period not started yet:
       active subscription                 -> pending_payment
       otherwise                           -> not_started
  8. Period started, fee owed, none paid   -> unpaid

The payment-first rule (3) means actual money received always overrides
subscription and academic state: a cancelled subscription that was
nonetheless paid still shows as paid. Whether such a payment should be
refunded instead is a collections decision, not the engine's.

SEE ALSO:
  - expected.go: Computes the expected amount the ladder consumes
  - detector.go: Consecutive-unpaid detection over classified statuses
*/
package billing

// PaymentStatus is the classification of one (student, period) cell.
type PaymentStatus string

const (
	StatusNoEnrollment        PaymentStatus = "no_enrollment"
	StatusNotStarted          PaymentStatus = "not_started"
	StatusPaid                PaymentStatus = "paid"
	StatusPartialPayment      PaymentStatus = "partial_payment"
	StatusCancelledThisPeriod PaymentStatus = "cancelled_this_period"
	StatusCancelledBefore     PaymentStatus = "cancelled_before"
	StatusWithdrawn           PaymentStatus = "withdrawn"
	StatusSuspended           PaymentStatus = "suspended"
	StatusCompleted           PaymentStatus = "completed"
	StatusNoPaymentDue        PaymentStatus = "no_payment_due"
	StatusPendingPayment      PaymentStatus = "pending_payment"
	StatusUnpaid              PaymentStatus = "unpaid"
)

// Classify runs the priority ladder for one cell. asOf anchors the
// "period in the future" check so report computation stays deterministic.
func Classify(enrollment *Enrollment, period BillingPeriod, paid, expected Money, asOf Date) PaymentStatus {
	if enrollment == nil {
		return StatusNoEnrollment
	}

	if enrollment.EffectiveStart().After(period.End) {
		return StatusNotStarted
	}

	// Payment-first: money received overrides subscription/academic state.
	if expected.IsPositive() && paid.GreaterThanOrEqual(expected) {
		return StatusPaid
	}
	if paid.IsPositive() {
		return StatusPartialPayment
	}

	if cancelAt := enrollment.SubscriptionCancelAt; cancelAt != nil {
		if period.Contains(*cancelAt) {
			return StatusCancelledThisPeriod
		}
		if cancelAt.Before(period.Start) {
			return StatusCancelledBefore
		}
	}

	switch enrollment.AcademicStatus {
	case AcademicWithdrawn:
		return StatusWithdrawn
	case AcademicSuspended:
		return StatusSuspended
	case AcademicCompleted:
		return StatusCompleted
	}

	if !expected.IsPositive() {
		return StatusNoPaymentDue
	}

	if period.Start.After(asOf) {
		if enrollment.SubscriptionStatus == SubscriptionActive {
			return StatusPendingPayment
		}
		return StatusNotStarted
	}

	return StatusUnpaid
}
