/*
scenarios.go - Demo dataset loaders

PURPOSE:
  Seeds the store with small, recognizable datasets so the payment report
  grid can be explored without wiring up a real enrollment system. Each
  scenario builds a class around the current year.

SCENARIOS:
  standard-class: A monthly-billed class where most students keep up -
                  one fully paid, one partial, one joined mid-year.
  at-risk-class:  Students falling behind - unpaid streaks that trip the
                  consecutive-unpaid detector, plus a cancelled
                  subscription.

SEE ALSO:
  - handlers.go: ListScenarios / LoadScenario endpoints
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/store/sqlite"
)

// Scenario is a loadable demo dataset.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Load        func(ctx context.Context, store *sqlite.Store, year int) error
}

// Scenarios lists all available demo datasets.
func Scenarios() []Scenario {
	return []Scenario{
		{
			ID:          "standard-class",
			Name:        "Standard Class",
			Description: "Monthly-billed class: one student fully paid, one partial, one joined mid-year",
			Load:        loadStandardClass,
		},
		{
			ID:          "at-risk-class",
			Name:        "At-Risk Class",
			Description: "Unpaid streaks that trigger collection alerts, plus a cancelled subscription",
			Load:        loadAtRiskClass,
		},
	}
}

// ListScenarios returns available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	var dtos []ScenarioDTO
	for _, s := range Scenarios() {
		dtos = append(dtos, ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario seeds the store with the selected scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for _, s := range Scenarios() {
		if s.ID != req.ID {
			continue
		}
		if err := s.Load(r.Context(), h.Store, billing.Today().Year()); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
			return
		}
		writeJSON(w, http.StatusOK, ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description})
		return
	}
	writeError(w, http.StatusNotFound, "Unknown scenario", nil)
}

// =============================================================================
// SCENARIO DATA
// =============================================================================

func loadStandardClass(ctx context.Context, store *sqlite.Store, year int) error {
	courseID := billing.CourseID("math-101")

	if err := store.SaveFeeSettings(ctx, billing.FeeSettings{
		CourseID:     courseID,
		BillingCycle: billing.CycleMonthly,
		FeeAmount:    billing.NewMoney(150, billing.DefaultCurrency),
	}); err != nil {
		return err
	}

	students := []sqlite.Student{
		{ID: "std-aina", Name: "Aina Rahman", Phone: "+60-12-000-0001"},
		{ID: "std-ben", Name: "Ben Ooi", Phone: "+60-12-000-0002"},
		{ID: "std-mei", Name: "Mei Ling Tan", Phone: "+60-12-000-0003"},
	}
	for _, s := range students {
		if err := store.SaveStudent(ctx, s); err != nil {
			return err
		}
	}

	janFirst := billing.StartOfYear(year)
	julFirst := billing.NewDate(year, time.July, 1)

	enrollments := []billing.Enrollment{
		// Aina: on course fee, pays every month
		{StudentID: "std-aina", CourseID: courseID, EnrollmentDate: janFirst,
			SubscriptionStatus: billing.SubscriptionActive, AcademicStatus: billing.AcademicActive},
		// Ben: discounted fee override, pays irregularly
		{StudentID: "std-ben", CourseID: courseID, EnrollmentDate: janFirst,
			EnrollmentFee:      moneyPtr(billing.NewMoney(120, billing.DefaultCurrency)),
			SubscriptionStatus: billing.SubscriptionActive, AcademicStatus: billing.AcademicActive},
		// Mei: joined mid-year
		{StudentID: "std-mei", CourseID: courseID, EnrollmentDate: julFirst,
			SubscriptionStatus: billing.SubscriptionActive, AcademicStatus: billing.AcademicActive},
	}
	for _, e := range enrollments {
		if err := store.SaveEnrollment(ctx, e); err != nil {
			return err
		}
	}

	// Aina paid Jan-Jun, Ben paid Jan fully and Feb partially
	for m := time.January; m <= time.June; m++ {
		if err := seedOrder(ctx, store, "std-aina", courseID, year, m, 150, billing.OrderPaid); err != nil {
			return err
		}
	}
	if err := seedOrder(ctx, store, "std-ben", courseID, year, time.January, 120, billing.OrderPaid); err != nil {
		return err
	}
	return seedOrder(ctx, store, "std-ben", courseID, year, time.February, 60, billing.OrderPaid)
}

func loadAtRiskClass(ctx context.Context, store *sqlite.Store, year int) error {
	courseID := billing.CourseID("english-201")

	if err := store.SaveFeeSettings(ctx, billing.FeeSettings{
		CourseID:     courseID,
		BillingCycle: billing.CycleMonthly,
		FeeAmount:    billing.NewMoney(80, billing.DefaultCurrency),
	}); err != nil {
		return err
	}

	students := []sqlite.Student{
		{ID: "std-dan", Name: "Daniel Lim", Phone: "+60-12-000-0010"},
		{ID: "std-fara", Name: "Farah Aziz", Phone: "+60-12-000-0011"},
	}
	for _, s := range students {
		if err := store.SaveStudent(ctx, s); err != nil {
			return err
		}
	}

	janFirst := billing.StartOfYear(year)
	cancelAt := billing.NewDate(year, time.April, 15)

	enrollments := []billing.Enrollment{
		// Daniel: paid January only, unpaid since
		{StudentID: "std-dan", CourseID: courseID, EnrollmentDate: janFirst,
			SubscriptionStatus: billing.SubscriptionPastDue, AcademicStatus: billing.AcademicActive},
		// Farah: cancelled mid-April after paying Q1
		{StudentID: "std-fara", CourseID: courseID, EnrollmentDate: janFirst,
			SubscriptionStatus: billing.SubscriptionCanceled, SubscriptionCancelAt: &cancelAt,
			AcademicStatus: billing.AcademicActive},
	}
	for _, e := range enrollments {
		if err := store.SaveEnrollment(ctx, e); err != nil {
			return err
		}
	}

	if err := seedOrder(ctx, store, "std-dan", courseID, year, time.January, 80, billing.OrderPaid); err != nil {
		return err
	}
	for m := time.January; m <= time.March; m++ {
		if err := seedOrder(ctx, store, "std-fara", courseID, year, m, 80, billing.OrderPaid); err != nil {
			return err
		}
	}
	return nil
}

func seedOrder(ctx context.Context, store *sqlite.Store, studentID billing.StudentID, courseID billing.CourseID, year int, month time.Month, amount float64, status billing.OrderStatus) error {
	err := store.InsertOrder(ctx, billing.Order{
		ID:          billing.OrderID(fmt.Sprintf("ord-%s-%s-%d-%02d", studentID, courseID, year, month)),
		StudentID:   studentID,
		CourseID:    courseID,
		PeriodStart: billing.StartOfMonth(year, month),
		PeriodEnd:   billing.EndOfMonth(year, month),
		Amount:      billing.NewMoney(amount, billing.DefaultCurrency),
		Status:      status,
	})
	if err == billing.ErrDuplicateOrder {
		return nil // scenario reloaded, order already seeded
	}
	return err
}

func moneyPtr(m billing.Money) *billing.Money {
	return &m
}
