/*
scanner_test.go - Tests for the collection alert scanner

The scanner's clock is pinned via the Now override so streak assertions
do not depend on when the tests run.
*/
package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/api"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/store/sqlite"
)

func newTestScanner(t *testing.T) (*api.AlertScanner, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	scanner := api.NewAlertScanner(store)
	scanner.Now = func() billing.Date { return billing.NewDate(2025, time.June, 15) }
	return scanner, store
}

func TestScanOnce_FlagsStudentBehindOnPayments(t *testing.T) {
	scanner, store := newTestScanner(t)
	seedClass2025(t, store)

	recorded := scanner.ScanOnce(context.Background())
	assert.Equal(t, 1, recorded, "only std-behind should be flagged")

	alerts, err := store.ListAlerts(context.Background(), "course-1", 2025)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, billing.StudentID("std-behind"), alerts[0].StudentID)
	// Unpaid February through June as of June 15
	assert.Equal(t, 5, alerts[0].Streak)
}

func TestScanOnce_Idempotent(t *testing.T) {
	scanner, store := newTestScanner(t)
	seedClass2025(t, store)

	require.Equal(t, 1, scanner.ScanOnce(context.Background()))
	assert.Equal(t, 0, scanner.ScanOnce(context.Background()), "repeat scan records nothing new")

	alerts, err := store.ListAlerts(context.Background(), "course-1", 2025)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestScanOnce_EmptyStore(t *testing.T) {
	scanner, _ := newTestScanner(t)
	assert.Equal(t, 0, scanner.ScanOnce(context.Background()))
}
