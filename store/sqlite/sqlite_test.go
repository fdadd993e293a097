package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEnrollment(studentID billing.StudentID) billing.Enrollment {
	return billing.Enrollment{
		StudentID:          studentID,
		CourseID:           "course-1",
		EnrollmentDate:     billing.NewDate(2025, time.January, 1),
		SubscriptionStatus: billing.SubscriptionActive,
		AcademicStatus:     billing.AcademicActive,
	}
}

func testOrder(id billing.OrderID, studentID billing.StudentID, month time.Month) billing.Order {
	return billing.Order{
		ID:          id,
		StudentID:   studentID,
		CourseID:    "course-1",
		PeriodStart: billing.StartOfMonth(2025, month),
		PeriodEnd:   billing.EndOfMonth(2025, month),
		Amount:      billing.NewMoney(150, billing.CurrencyMYR),
		Status:      billing.OrderPaid,
	}
}

// =============================================================================
// STUDENT TESTS
// =============================================================================

func TestStudents_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SaveStudent(ctx, sqlite.Student{ID: "std-1", Name: "Aina Rahman", Phone: "+60-12"})
	require.NoError(t, err)

	got, err := store.GetStudent(ctx, "std-1")
	require.NoError(t, err)
	assert.Equal(t, "Aina Rahman", got.Name)
	assert.Equal(t, "+60-12", got.Phone)
}

func TestStudents_GetMissing_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetStudent(context.Background(), "nope")
	assert.ErrorIs(t, err, billing.ErrStudentNotFound)
}

func TestStudents_SaveTwice_Updates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveStudent(ctx, sqlite.Student{ID: "std-1", Name: "Old Name"}))
	require.NoError(t, store.SaveStudent(ctx, sqlite.Student{ID: "std-1", Name: "New Name"}))

	got, err := store.GetStudent(ctx, "std-1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)

	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

// =============================================================================
// ENROLLMENT TESTS
// =============================================================================

func TestEnrollments_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fee := billing.NewMoney(120.50, billing.CurrencyMYR)
	startDate := billing.NewDate(2025, time.February, 1)
	cancelAt := billing.NewDate(2025, time.September, 15)

	e := testEnrollment("std-1")
	e.EnrollmentFee = &fee
	e.StartDate = &startDate
	e.SubscriptionCancelAt = &cancelAt
	e.SubscriptionStatus = billing.SubscriptionCanceled
	e.AcademicStatus = billing.AcademicActive

	require.NoError(t, store.SaveEnrollment(ctx, e))

	got, err := store.EnrollmentFor(ctx, "std-1", "course-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, got.EnrollmentDate.Equal(e.EnrollmentDate))
	require.NotNil(t, got.StartDate)
	assert.True(t, got.StartDate.Equal(startDate))
	require.NotNil(t, got.SubscriptionCancelAt)
	assert.True(t, got.SubscriptionCancelAt.Equal(cancelAt))
	require.NotNil(t, got.EnrollmentFee)
	assert.True(t, got.EnrollmentFee.Value.Equal(fee.Value))
	assert.Equal(t, billing.CurrencyMYR, got.EnrollmentFee.Currency)
	assert.Equal(t, billing.SubscriptionCanceled, got.SubscriptionStatus)
}

func TestEnrollments_MissingIsNilNotError(t *testing.T) {
	store := newTestStore(t)

	got, err := store.EnrollmentFor(context.Background(), "std-1", "course-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEnrollments_BulkFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEnrollment(ctx, testEnrollment("std-1")))
	require.NoError(t, store.SaveEnrollment(ctx, testEnrollment("std-2")))

	got, err := store.EnrollmentsFor(ctx, "course-1", []billing.StudentID{"std-1", "std-2", "std-3"})
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.NotNil(t, got["std-1"])
	assert.NotNil(t, got["std-2"])
	assert.Nil(t, got["std-3"], "absent enrollment should be missing from the map")
}

func TestEnrollments_UpsertReplacesState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	e := testEnrollment("std-1")
	require.NoError(t, store.SaveEnrollment(ctx, e))

	e.AcademicStatus = billing.AcademicWithdrawn
	require.NoError(t, store.SaveEnrollment(ctx, e))

	got, err := store.EnrollmentFor(ctx, "std-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, billing.AcademicWithdrawn, got.AcademicStatus)
}

func TestEnrolledStudents_And_Courses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEnrollment(ctx, testEnrollment("std-2")))
	require.NoError(t, store.SaveEnrollment(ctx, testEnrollment("std-1")))
	require.NoError(t, store.SaveFeeSettings(ctx, billing.FeeSettings{
		CourseID:     "course-2",
		BillingCycle: billing.CycleMonthly,
		FeeAmount:    billing.NewMoney(80, billing.CurrencyMYR),
	}))

	students, err := store.EnrolledStudents(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, []billing.StudentID{"std-1", "std-2"}, students)

	courses, err := store.Courses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []billing.CourseID{"course-1", "course-2"}, courses)
}

// =============================================================================
// ORDER TESTS
// =============================================================================

func TestOrders_InsertAndBulkFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertOrder(ctx, testOrder("ord-1", "std-1", time.January)))
	require.NoError(t, store.InsertOrder(ctx, testOrder("ord-2", "std-1", time.February)))
	require.NoError(t, store.InsertOrder(ctx, testOrder("ord-3", "std-2", time.January)))

	// Order from another year must be filtered out
	old := testOrder("ord-old", "std-1", time.March)
	old.PeriodStart = billing.StartOfMonth(2024, time.March)
	old.PeriodEnd = billing.EndOfMonth(2024, time.March)
	require.NoError(t, store.InsertOrder(ctx, old))

	orders, err := store.OrdersFor(ctx, []billing.StudentID{"std-1", "std-2"}, "course-1", 2025)
	require.NoError(t, err)

	require.Len(t, orders, 3)
	for _, o := range orders {
		assert.Equal(t, 2025, o.PeriodStart.Year())
		assert.True(t, o.Amount.Value.Equal(billing.NewMoney(150, billing.CurrencyMYR).Value))
	}
}

func TestOrders_DuplicateID_Rejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertOrder(ctx, testOrder("ord-1", "std-1", time.January)))

	err := store.InsertOrder(ctx, testOrder("ord-1", "std-1", time.February))
	assert.ErrorIs(t, err, billing.ErrDuplicateOrder)
}

func TestOrders_EmptyStudentSet_Empty(t *testing.T) {
	store := newTestStore(t)

	orders, err := store.OrdersFor(context.Background(), nil, "course-1", 2025)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

// =============================================================================
// FEE SETTINGS TESTS
// =============================================================================

func TestFeeSettings_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SaveFeeSettings(ctx, billing.FeeSettings{
		CourseID:     "course-1",
		BillingCycle: billing.CycleQuarterly,
		FeeAmount:    billing.NewMoney(450, billing.CurrencyMYR),
	})
	require.NoError(t, err)

	got, err := store.FeeSettingsFor(ctx, "course-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, billing.CycleQuarterly, got.BillingCycle)
	assert.True(t, got.FeeAmount.Value.Equal(billing.NewMoney(450, billing.CurrencyMYR).Value))
}

func TestFeeSettings_MissingIsNilNotError(t *testing.T) {
	store := newTestStore(t)

	got, err := store.FeeSettingsFor(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFeeSettings_InvalidCycle_Rejected(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveFeeSettings(context.Background(), billing.FeeSettings{
		CourseID:     "course-1",
		BillingCycle: billing.BillingCycle("weekly"),
		FeeAmount:    billing.NewMoney(80, billing.CurrencyMYR),
	})
	assert.ErrorIs(t, err, billing.ErrInvalidCycle)
}

// =============================================================================
// ALERT TESTS
// =============================================================================

func TestAlerts_RecordIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alert := sqlite.Alert{
		ID:        "alert-std-1-course-1-2025",
		StudentID: "std-1",
		CourseID:  "course-1",
		Year:      2025,
		Streak:    3,
	}

	isNew, err := store.RecordAlert(ctx, alert)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.RecordAlert(ctx, alert)
	require.NoError(t, err)
	assert.False(t, isNew, "second record for same (student, course, year) is a no-op")

	alerts, err := store.ListAlerts(ctx, "course-1", 2025)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 3, alerts[0].Streak)
}

func TestAlerts_ListFiltersByCourseAndYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.RecordAlert(ctx, sqlite.Alert{ID: "a1", StudentID: "std-1", CourseID: "course-1", Year: 2025, Streak: 2})
	require.NoError(t, err)
	_, err = store.RecordAlert(ctx, sqlite.Alert{ID: "a2", StudentID: "std-1", CourseID: "course-1", Year: 2024, Streak: 2})
	require.NoError(t, err)
	_, err = store.RecordAlert(ctx, sqlite.Alert{ID: "a3", StudentID: "std-1", CourseID: "course-2", Year: 2025, Streak: 2})
	require.NoError(t, err)

	alerts, err := store.ListAlerts(ctx, "course-1", 2025)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}
