/*
Package billing provides the payment period reconciliation engine.

PURPOSE:
  This package contains the types and algorithms for reconciling expected
  tuition fees against actual payment orders, per student and per billing
  period. Given a year's billing periods, a student's enrollment, and the
  orders recorded against those periods, the engine computes a PaymentCell
  for every (student, period) combination and classifies its status.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A decimal amount with a currency (e.g., 150.00 MYR)
  - Enrollment: A student's standing in a course (fees, subscription state)
  - Order: A payment record attributed to a billing period
  - FeeSettings: Course-level billing cycle and default fee

DESIGN PRINCIPLES:
  1. Purity: The engine never mutates its inputs and keeps no state
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Type Safety: Strong typing for IDs prevents mixing student/course IDs
  4. Closed Enumerations: Subscription, academic, and payment statuses are
     typed constants so the classifier's priority ladder stays exhaustive

USAGE:
  periods := billing.PeriodsForYear(2025, billing.CycleMonthly)
  grid := billing.BuildGrid(billing.GridInput{
      Periods:     periods,
      Enrollments: enrollments,
      Orders:      orders,
      Fees:        fees,
      AsOf:        billing.Today(),
  })

SEE ALSO:
  - period.go: Billing period generation
  - expected.go: Expected amount rules
  - status.go: Payment status classification
  - grid.go: The (student x period) aggregator
*/
package billing

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StudentID string
type CourseID string
type OrderID string

// =============================================================================
// BILLING CYCLE
// =============================================================================

// BillingCycle determines how a course's year is split into billing periods.
type BillingCycle string

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
)

// DefaultCycle is used when a course has no fee settings.
const DefaultCycle = CycleMonthly

// PeriodsPerYear returns how many periods the cycle produces for one year.
func (c BillingCycle) PeriodsPerYear() int {
	switch c {
	case CycleQuarterly:
		return 4
	case CycleYearly:
		return 1
	default:
		return 12
	}
}

// =============================================================================
// ENROLLMENT - A student's standing in a course (read-only to this engine)
// =============================================================================

// SubscriptionStatus tracks the payment subscription lifecycle.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// AcademicStatus tracks the student's academic standing in the course.
type AcademicStatus string

const (
	AcademicActive    AcademicStatus = "active"
	AcademicWithdrawn AcademicStatus = "withdrawn"
	AcademicSuspended AcademicStatus = "suspended"
	AcademicCompleted AcademicStatus = "completed"
)

// Enrollment is consumed read-only; its lifecycle is owned by enrollment
// management outside this engine. One enrollment per (student, course).
type Enrollment struct {
	StudentID StudentID
	CourseID  CourseID

	// EnrollmentDate is when the enrollment record was created; StartDate,
	// when set, overrides it as the date obligations begin.
	EnrollmentDate Date
	StartDate      *Date

	// EnrollmentFee overrides the course fee when set and nonzero
	// (discounts, promotions).
	EnrollmentFee *Money

	SubscriptionStatus   SubscriptionStatus
	SubscriptionCancelAt *Date

	AcademicStatus AcademicStatus
}

// EffectiveStart returns the date the enrollment's obligations begin.
func (e *Enrollment) EffectiveStart() Date {
	if e.StartDate != nil && !e.StartDate.IsZero() {
		return *e.StartDate
	}
	return e.EnrollmentDate
}

// =============================================================================
// ORDER - A payment record attributed to a billing period
// =============================================================================

// OrderStatus is the payment processor's view of an order.
type OrderStatus string

const (
	OrderPaid     OrderStatus = "paid"
	OrderPending  OrderStatus = "pending"
	OrderFailed   OrderStatus = "failed"
	OrderRefunded OrderStatus = "refunded"
)

// Order is owned by payment processing, outside this engine. Multiple
// orders may exist per period (rare; normally one).
type Order struct {
	ID          OrderID
	StudentID   StudentID
	CourseID    CourseID
	PeriodStart Date
	PeriodEnd   Date
	Amount      Money
	Status      OrderStatus
}

// =============================================================================
// FEE SETTINGS - Course-level billing configuration
// =============================================================================

// FeeSettings is the fallback fee source when an enrollment carries no
// override fee.
type FeeSettings struct {
	CourseID     CourseID
	BillingCycle BillingCycle
	FeeAmount    Money
}
