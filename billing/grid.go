/*
grid.go - The (student x period) payment reconciliation grid

PURPOSE:
  Computes the full PaymentCell grid for a student set and a year's billing
  periods. This is the central calculation that answers "who has paid what,
  and who is falling behind?"

KEY INSIGHT:
  A period's payment is identified by the ORDER's period start date landing
  inside the calendar period (inclusive bounds). This ensures each monthly
  payment counts exactly once even when a course's billing cycle misaligns
  with calendar months.

CELL COMPONENTS:
  Expected:  What the student should pay for the period (expected.go)
  Paid:      Sum of orders with status paid
  Pending:   Sum of orders with status pending
  Unpaid:    max(0, Expected - Paid) - invariant maintained here
  Status:    One classification from the priority ladder (status.go)

FAILURE HANDLING:
  A student with no enrollment record degrades to no_enrollment cells with
  zero expected amounts. Never an error - a student may sit in a class
  without a course enrollment record yet.

SEE ALSO:
  - report.go: The repository-backed service producing full reports
  - detector.go: Consecutive-unpaid detection over a grid row
*/
package billing

// =============================================================================
// PAYMENT CELL - Derived, ephemeral output per (student, period)
// =============================================================================

// PaymentCell is the engine's output for one (student, period). Computed
// fresh on every report; never persisted.
type PaymentCell struct {
	Period   BillingPeriod
	Expected Money
	Paid     Money
	Pending  Money
	Unpaid   Money
	Status   PaymentStatus
	Orders   []Order
}

// Grid maps studentID -> periodLabel -> cell.
type Grid map[StudentID]map[string]PaymentCell

// Row returns one student's cells in the given period order.
func (g Grid) Row(studentID StudentID, periods []BillingPeriod) []PaymentCell {
	cells := make([]PaymentCell, 0, len(periods))
	for _, p := range periods {
		cells = append(cells, g[studentID][p.Label])
	}
	return cells
}

// Statuses returns one student's statuses in chronological period order,
// the shape HasConsecutiveUnpaid consumes.
func (g Grid) Statuses(studentID StudentID, periods []BillingPeriod) []PaymentStatus {
	statuses := make([]PaymentStatus, 0, len(periods))
	for _, p := range periods {
		statuses = append(statuses, g[studentID][p.Label].Status)
	}
	return statuses
}

// =============================================================================
// GRID AGGREGATOR
// =============================================================================

// GridInput carries everything BuildGrid needs, already fetched. The
// aggregator itself performs no I/O and mutates nothing.
type GridInput struct {
	Periods     []BillingPeriod
	StudentIDs  []StudentID
	Enrollments map[StudentID]*Enrollment
	Orders      []Order
	Fees        *FeeSettings
	AsOf        Date
}

// BuildGrid computes the full PaymentCell grid. Deterministic and
// idempotent: identical inputs yield identical grids.
func BuildGrid(in GridInput) Grid {
	// Bucket orders once: studentID -> period label -> orders.
	buckets := make(map[StudentID]map[string][]Order)
	for _, order := range in.Orders {
		for _, p := range in.Periods {
			if !p.Contains(order.PeriodStart) {
				continue
			}
			byPeriod, ok := buckets[order.StudentID]
			if !ok {
				byPeriod = make(map[string][]Order)
				buckets[order.StudentID] = byPeriod
			}
			byPeriod[p.Label] = append(byPeriod[p.Label], order)
			break
		}
	}

	grid := make(Grid, len(in.StudentIDs))
	for _, studentID := range in.StudentIDs {
		enrollment := in.Enrollments[studentID]
		row := make(map[string]PaymentCell, len(in.Periods))
		for _, p := range in.Periods {
			row[p.Label] = buildCell(enrollment, p, buckets[studentID][p.Label], in.Fees, in.AsOf)
		}
		grid[studentID] = row
	}
	return grid
}

func buildCell(enrollment *Enrollment, period BillingPeriod, orders []Order, fees *FeeSettings, asOf Date) PaymentCell {
	paid := ZeroMoney()
	pending := ZeroMoney()
	for _, order := range orders {
		switch order.Status {
		case OrderPaid:
			paid = paid.Add(order.Amount)
		case OrderPending:
			pending = pending.Add(order.Amount)
		}
	}

	expected := ExpectedAmount(enrollment, period, fees)
	unpaid := expected.Sub(paid).Max(ZeroMoney())

	return PaymentCell{
		Period:   period,
		Expected: expected,
		Paid:     paid,
		Pending:  pending,
		Unpaid:   unpaid,
		Status:   Classify(enrollment, period, paid, expected, asOf),
		Orders:   orders,
	}
}
