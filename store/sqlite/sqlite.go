/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements billing.Repository plus the reference-data writes the API
  needs (students, enrollments, orders, fee settings) and the collection
  alert log. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  students:            Student records
  enrollments:         One row per (student, course), fee override and
                       subscription/academic state
  orders:              Payment orders attributed to billing periods
  course_fee_settings: Billing cycle and default fee per course
  collection_alerts:   Consecutive-unpaid flags recorded by the scanner

BULK READS:
  OrdersFor and EnrollmentsFor are single queries over the full student
  set. The report grid is computed from those results in memory - the
  store never gets per-cell queries.

AMOUNT STORAGE:
  Money values are stored as TEXT and parsed with decimal. Malformed
  stored amounts parse to zero and contribute nothing to sums.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := billing.NewReportService(store)

SEE ALSO:
  - billing/repository.go: Interface definitions
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/billing-engine/billing"
)

// Store implements billing.Repository and the write side using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check that Store implements billing.Repository
var _ billing.Repository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Students
	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		created_at TEXT NOT NULL
	);

	-- Enrollments: one row per (student, course)
	CREATE TABLE IF NOT EXISTS enrollments (
		student_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		enrollment_date TEXT NOT NULL,
		start_date TEXT,
		enrollment_fee TEXT,
		fee_currency TEXT NOT NULL DEFAULT 'MYR',
		subscription_status TEXT NOT NULL DEFAULT 'active',
		subscription_cancel_at TEXT,
		academic_status TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (student_id, course_id)
	);

	CREATE INDEX IF NOT EXISTS idx_enrollments_course
		ON enrollments(course_id);

	-- Orders
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'MYR',
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Hot path: bulk fetch by course + student set + period year
	CREATE INDEX IF NOT EXISTS idx_orders_course_student_period
		ON orders(course_id, student_id, period_start);

	-- Course fee settings
	CREATE TABLE IF NOT EXISTS course_fee_settings (
		course_id TEXT PRIMARY KEY,
		billing_cycle TEXT NOT NULL DEFAULT 'monthly',
		fee_amount TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT 'MYR',
		updated_at TEXT NOT NULL
	);

	-- Collection alerts: one per (student, course, year)
	CREATE TABLE IF NOT EXISTS collection_alerts (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		streak INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_unique
		ON collection_alerts(student_id, course_id, year);
	CREATE INDEX IF NOT EXISTS idx_alerts_course_year
		ON collection_alerts(course_id, year);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STUDENTS
// =============================================================================

// Student is a reference record; the engine only needs its ID.
type Student struct {
	ID        billing.StudentID
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
}

// SaveStudent inserts or updates a student.
func (s *Store) SaveStudent(ctx context.Context, st Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO students (id, name, phone, email, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			phone = excluded.phone, email = excluded.email
	`
	_, err := s.db.ExecContext(ctx, query,
		st.ID, st.Name, st.Phone, st.Email,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetStudent returns a student by ID.
func (s *Store) GetStudent(ctx context.Context, id billing.StudentID) (*Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, email, created_at FROM students WHERE id = ?`, id)

	var st Student
	var createdAt string
	err := row.Scan(&st.ID, &st.Name, &st.Phone, &st.Email, &createdAt)
	if err == sql.ErrNoRows {
		return nil, billing.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &st, nil
}

// ListStudents returns all students ordered by name.
func (s *Store) ListStudents(ctx context.Context) ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, email, created_at FROM students ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var st Student
		var createdAt string
		if err := rows.Scan(&st.ID, &st.Name, &st.Phone, &st.Email, &createdAt); err != nil {
			return nil, err
		}
		st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		students = append(students, st)
	}
	return students, rows.Err()
}

// =============================================================================
// ENROLLMENTS
// =============================================================================

// SaveEnrollment inserts or updates the enrollment for (student, course).
func (s *Store) SaveEnrollment(ctx context.Context, e billing.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var startDate, cancelAt, fee any
	currency := string(billing.DefaultCurrency)
	if e.StartDate != nil {
		startDate = e.StartDate.String()
	}
	if e.SubscriptionCancelAt != nil {
		cancelAt = e.SubscriptionCancelAt.String()
	}
	if e.EnrollmentFee != nil {
		fee = e.EnrollmentFee.Value.String()
		currency = string(e.EnrollmentFee.Currency)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO enrollments
		(student_id, course_id, enrollment_date, start_date, enrollment_fee,
		 fee_currency, subscription_status, subscription_cancel_at,
		 academic_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(student_id, course_id) DO UPDATE SET
			enrollment_date = excluded.enrollment_date,
			start_date = excluded.start_date,
			enrollment_fee = excluded.enrollment_fee,
			fee_currency = excluded.fee_currency,
			subscription_status = excluded.subscription_status,
			subscription_cancel_at = excluded.subscription_cancel_at,
			academic_status = excluded.academic_status,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		e.StudentID, e.CourseID, e.EnrollmentDate.String(), startDate, fee,
		currency, e.SubscriptionStatus, cancelAt, e.AcademicStatus, now, now,
	)
	return err
}

// EnrollmentFor returns the enrollment for one student, or (nil, nil).
func (s *Store) EnrollmentFor(ctx context.Context, studentID billing.StudentID, courseID billing.CourseID) (*billing.Enrollment, error) {
	enrollments, err := s.EnrollmentsFor(ctx, courseID, []billing.StudentID{studentID})
	if err != nil {
		return nil, err
	}
	return enrollments[studentID], nil
}

// EnrollmentsFor returns enrollments for the student set in one query.
func (s *Store) EnrollmentsFor(ctx context.Context, courseID billing.CourseID, studentIDs []billing.StudentID) (map[billing.StudentID]*billing.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[billing.StudentID]*billing.Enrollment)
	if len(studentIDs) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT student_id, course_id, enrollment_date, start_date,
		       enrollment_fee, fee_currency, subscription_status,
		       subscription_cancel_at, academic_status
		FROM enrollments
		WHERE course_id = ? AND student_id IN (%s)
	`, placeholders(len(studentIDs)))

	args := make([]any, 0, len(studentIDs)+1)
	args = append(args, courseID)
	for _, id := range studentIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out[e.StudentID] = e
	}
	return out, rows.Err()
}

// EnrolledStudents returns the IDs of all students enrolled in a course.
func (s *Store) EnrolledStudents(ctx context.Context, courseID billing.CourseID) ([]billing.StudentID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id FROM enrollments WHERE course_id = ? ORDER BY student_id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []billing.StudentID
	for rows.Next() {
		var id billing.StudentID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Courses returns every course seen in enrollments or fee settings.
func (s *Store) Courses(ctx context.Context) ([]billing.CourseID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT course_id FROM enrollments
		UNION
		SELECT course_id FROM course_fee_settings
		ORDER BY course_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []billing.CourseID
	for rows.Next() {
		var id billing.CourseID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanEnrollment(rows *sql.Rows) (*billing.Enrollment, error) {
	var e billing.Enrollment
	var enrollmentDate string
	var startDate, fee, cancelAt sql.NullString
	var currency string

	err := rows.Scan(&e.StudentID, &e.CourseID, &enrollmentDate, &startDate,
		&fee, &currency, &e.SubscriptionStatus, &cancelAt, &e.AcademicStatus)
	if err != nil {
		return nil, err
	}

	e.EnrollmentDate, err = billing.ParseDate(enrollmentDate)
	if err != nil {
		return nil, fmt.Errorf("bad enrollment_date for %s: %w", e.StudentID, err)
	}
	if startDate.Valid && startDate.String != "" {
		d, err := billing.ParseDate(startDate.String)
		if err != nil {
			return nil, fmt.Errorf("bad start_date for %s: %w", e.StudentID, err)
		}
		e.StartDate = &d
	}
	if cancelAt.Valid && cancelAt.String != "" {
		d, err := billing.ParseDate(cancelAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad subscription_cancel_at for %s: %w", e.StudentID, err)
		}
		e.SubscriptionCancelAt = &d
	}
	if fee.Valid && fee.String != "" {
		m := billing.Money{
			Value:    billing.MustParseDecimal(fee.String),
			Currency: billing.Currency(currency),
		}
		e.EnrollmentFee = &m
	}
	return &e, nil
}

// =============================================================================
// ORDERS
// =============================================================================

// InsertOrder records a payment order. Duplicate IDs are rejected.
func (s *Store) InsertOrder(ctx context.Context, o billing.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO orders
		(id, student_id, course_id, period_start, period_end, amount, currency, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		o.ID, o.StudentID, o.CourseID,
		o.PeriodStart.String(), o.PeriodEnd.String(),
		o.Amount.Value.String(), o.Amount.Currency, o.Status,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return billing.ErrDuplicateOrder
	}
	return err
}

// OrdersFor returns all orders for the student set whose period start
// falls within the given year. Single bulk query.
func (s *Store) OrdersFor(ctx context.Context, studentIDs []billing.StudentID, courseID billing.CourseID, year int) ([]billing.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(studentIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, student_id, course_id, period_start, period_end, amount, currency, status
		FROM orders
		WHERE course_id = ? AND period_start >= ? AND period_start <= ?
		  AND student_id IN (%s)
		ORDER BY period_start, id
	`, placeholders(len(studentIDs)))

	args := make([]any, 0, len(studentIDs)+3)
	args = append(args, courseID,
		billing.StartOfYear(year).String(), billing.EndOfYear(year).String())
	for _, id := range studentIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []billing.Order
	for rows.Next() {
		var o billing.Order
		var periodStart, periodEnd, amount, currency string
		if err := rows.Scan(&o.ID, &o.StudentID, &o.CourseID,
			&periodStart, &periodEnd, &amount, &currency, &o.Status); err != nil {
			return nil, err
		}
		if o.PeriodStart, err = billing.ParseDate(periodStart); err != nil {
			return nil, fmt.Errorf("bad period_start for order %s: %w", o.ID, err)
		}
		if o.PeriodEnd, err = billing.ParseDate(periodEnd); err != nil {
			return nil, fmt.Errorf("bad period_end for order %s: %w", o.ID, err)
		}
		o.Amount = billing.Money{
			Value:    billing.MustParseDecimal(amount),
			Currency: billing.Currency(currency),
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// =============================================================================
// FEE SETTINGS
// =============================================================================

// SaveFeeSettings inserts or updates a course's billing configuration.
func (s *Store) SaveFeeSettings(ctx context.Context, f billing.FeeSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch f.BillingCycle {
	case billing.CycleMonthly, billing.CycleQuarterly, billing.CycleYearly:
	default:
		return &billing.InvalidCycleError{CourseID: f.CourseID, Cycle: string(f.BillingCycle)}
	}

	query := `
		INSERT INTO course_fee_settings (course_id, billing_cycle, fee_amount, currency, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(course_id) DO UPDATE SET
			billing_cycle = excluded.billing_cycle,
			fee_amount = excluded.fee_amount,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		f.CourseID, f.BillingCycle, f.FeeAmount.Value.String(), f.FeeAmount.Currency,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// FeeSettingsFor returns the course's fee settings, or (nil, nil).
func (s *Store) FeeSettingsFor(ctx context.Context, courseID billing.CourseID) (*billing.FeeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT course_id, billing_cycle, fee_amount, currency
		 FROM course_fee_settings WHERE course_id = ?`, courseID)

	var f billing.FeeSettings
	var amount, currency string
	err := row.Scan(&f.CourseID, &f.BillingCycle, &amount, &currency)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.FeeAmount = billing.Money{
		Value:    billing.MustParseDecimal(amount),
		Currency: billing.Currency(currency),
	}
	return &f, nil
}

// =============================================================================
// COLLECTION ALERTS
// =============================================================================

// Alert records a consecutive-unpaid flag for collections follow-up.
// Notification delivery (WhatsApp, email) is handled outside this service.
type Alert struct {
	ID        string
	StudentID billing.StudentID
	CourseID  billing.CourseID
	Year      int
	Streak    int
	CreatedAt time.Time
}

// RecordAlert inserts an alert if none exists for (student, course, year).
// Returns true if a new alert was recorded.
func (s *Store) RecordAlert(ctx context.Context, a Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO collection_alerts
		(id, student_id, course_id, year, streak, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.StudentID, a.CourseID, a.Year, a.Streak,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListAlerts returns recorded alerts for a course and year.
func (s *Store) ListAlerts(ctx context.Context, courseID billing.CourseID, year int) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, course_id, year, streak, created_at
		FROM collection_alerts
		WHERE course_id = ? AND year = ?
		ORDER BY student_id
	`, courseID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var createdAt string
		if err := rows.Scan(&a.ID, &a.StudentID, &a.CourseID, &a.Year, &a.Streak, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
