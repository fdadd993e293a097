// Package store provides in-memory repository implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/billing-engine/billing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	enrollments map[enrollmentKey]billing.Enrollment
	orders      map[billing.OrderID]billing.Order
	fees        map[billing.CourseID]billing.FeeSettings
}

type enrollmentKey struct {
	StudentID billing.StudentID
	CourseID  billing.CourseID
}

func NewMemory() *Memory {
	return &Memory{
		enrollments: make(map[enrollmentKey]billing.Enrollment),
		orders:      make(map[billing.OrderID]billing.Order),
		fees:        make(map[billing.CourseID]billing.FeeSettings),
	}
}

// Compile-time check that Memory implements billing.Repository
var _ billing.Repository = (*Memory)(nil)

// =============================================================================
// WRITES (test/dev setup)
// =============================================================================

func (m *Memory) PutEnrollment(e billing.Enrollment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments[enrollmentKey{StudentID: e.StudentID, CourseID: e.CourseID}] = e
}

func (m *Memory) PutOrder(o billing.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[o.ID]; exists {
		return billing.ErrDuplicateOrder
	}
	m.orders[o.ID] = o
	return nil
}

func (m *Memory) PutFeeSettings(f billing.FeeSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fees[f.CourseID] = f
}

// =============================================================================
// billing.Repository
// =============================================================================

func (m *Memory) EnrollmentFor(_ context.Context, studentID billing.StudentID, courseID billing.CourseID) (*billing.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.enrollments[enrollmentKey{StudentID: studentID, CourseID: courseID}]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) EnrollmentsFor(_ context.Context, courseID billing.CourseID, studentIDs []billing.StudentID) (map[billing.StudentID]*billing.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[billing.StudentID]*billing.Enrollment)
	for _, id := range studentIDs {
		if e, ok := m.enrollments[enrollmentKey{StudentID: id, CourseID: courseID}]; ok {
			e := e
			out[id] = &e
		}
	}
	return out, nil
}

func (m *Memory) OrdersFor(_ context.Context, studentIDs []billing.StudentID, courseID billing.CourseID, year int) ([]billing.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := make(map[billing.StudentID]bool, len(studentIDs))
	for _, id := range studentIDs {
		want[id] = true
	}

	var out []billing.Order
	for _, o := range m.orders {
		if o.CourseID != courseID || !want[o.StudentID] {
			continue
		}
		if o.PeriodStart.Year() != year {
			continue
		}
		out = append(out, o)
	}

	// Stable order for deterministic grids
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.Before(out[j].PeriodStart)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) FeeSettingsFor(_ context.Context, courseID billing.CourseID) (*billing.FeeSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.fees[courseID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}
