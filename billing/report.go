/*
report.go - Repository-backed report service

PURPOSE:
  Wires the pure grid aggregator to the repository boundary. One report =
  one fee settings read + one bulk enrollment read + one bulk order read,
  then in-memory computation. No per-cell queries.

SEE ALSO:
  - grid.go: The pure aggregator
  - repository.go: The data access boundary
*/
package billing

import "context"

// PaymentReport is the full output for one course and year.
type PaymentReport struct {
	CourseID CourseID
	Year     int
	Cycle    BillingCycle
	Periods  []BillingPeriod
	Cells    Grid

	// Flagged marks students with DefaultUnpaidThreshold or more
	// consecutive unpaid/partial periods.
	Flagged map[StudentID]bool
}

// ReportService computes payment reports against a Repository.
type ReportService struct {
	Repo      Repository
	Threshold int // consecutive-unpaid threshold; 0 means DefaultUnpaidThreshold
}

func NewReportService(repo Repository) *ReportService {
	return &ReportService{Repo: repo, Threshold: DefaultUnpaidThreshold}
}

// BuildReport computes the grid and consecutive-unpaid flags for the
// student set. asOf anchors the future-period classification.
func (s *ReportService) BuildReport(ctx context.Context, courseID CourseID, year int, studentIDs []StudentID, asOf Date) (*PaymentReport, error) {
	if year < 1970 || year > 9999 {
		return nil, ErrInvalidYear
	}

	fees, err := s.Repo.FeeSettingsFor(ctx, courseID)
	if err != nil {
		return nil, err
	}

	cycle := DefaultCycle
	if fees != nil && fees.BillingCycle != "" {
		cycle = fees.BillingCycle
	}
	periods := PeriodsForYear(year, cycle)

	enrollments, err := s.Repo.EnrollmentsFor(ctx, courseID, studentIDs)
	if err != nil {
		return nil, err
	}

	orders, err := s.Repo.OrdersFor(ctx, studentIDs, courseID, year)
	if err != nil {
		return nil, err
	}

	grid := BuildGrid(GridInput{
		Periods:     periods,
		StudentIDs:  studentIDs,
		Enrollments: enrollments,
		Orders:      orders,
		Fees:        fees,
		AsOf:        asOf,
	})

	threshold := s.Threshold
	if threshold <= 0 {
		threshold = DefaultUnpaidThreshold
	}

	flagged := make(map[StudentID]bool, len(studentIDs))
	for _, id := range studentIDs {
		flagged[id] = HasConsecutiveUnpaid(grid.Statuses(id, periods), threshold)
	}

	return &PaymentReport{
		CourseID: courseID,
		Year:     year,
		Cycle:    cycle,
		Periods:  periods,
		Cells:    grid,
		Flagged:  flagged,
	}, nil
}
