/*
repository.go - Data access boundary for the engine

PURPOSE:
  The engine is pure computation over already-fetched data; these narrow
  interfaces are its only view of storage. Implementations can back them
  with SQLite, PostgreSQL, or in-memory maps - the engine does not care.

CONTRACT:
  - Absent records are (nil, nil), never an error. A student with no
    enrollment record is a normal classification outcome, not a failure.
  - OrdersFor is a single bulk read for the whole student set and year.
    The grid is computed from that one result; no per-cell queries.
  - Reads within one report computation must come from a consistent
    snapshot; the engine never writes.

IMPLEMENTATIONS:
  - store/sqlite: Production store
  - billing/store: In-memory store for tests and dev
*/
package billing

import "context"

// EnrollmentRepository resolves enrollments for a course.
type EnrollmentRepository interface {
	// EnrollmentFor returns the enrollment for one student, or (nil, nil)
	// if the student has no enrollment record for the course.
	EnrollmentFor(ctx context.Context, studentID StudentID, courseID CourseID) (*Enrollment, error)

	// EnrollmentsFor returns enrollments for the student set in one read.
	// Students without an enrollment record are simply absent from the map.
	EnrollmentsFor(ctx context.Context, courseID CourseID, studentIDs []StudentID) (map[StudentID]*Enrollment, error)
}

// OrderRepository resolves payment orders for a course.
type OrderRepository interface {
	// OrdersFor returns all orders for the student set whose period start
	// falls within the given year, in one read.
	OrdersFor(ctx context.Context, studentIDs []StudentID, courseID CourseID, year int) ([]Order, error)
}

// FeeSettingsRepository resolves course billing configuration.
type FeeSettingsRepository interface {
	// FeeSettingsFor returns the course's fee settings, or (nil, nil) if
	// none are configured (callers default to a monthly cycle, zero fee).
	FeeSettingsFor(ctx context.Context, courseID CourseID) (*FeeSettings, error)
}

// Repository bundles the three lookups a report needs.
type Repository interface {
	EnrollmentRepository
	OrderRepository
	FeeSettingsRepository
}
