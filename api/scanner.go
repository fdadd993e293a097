/*
scanner.go - Automated collection alert scanner

PURPOSE:
  Periodically recomputes the current year's payment grid for every course
  and records a collection alert for each student with two or more
  consecutive unpaid/partial periods. Collectors read the alerts from the
  API; sending the actual notification (WhatsApp, email) is handled by a
  separate delivery system.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Alert recording is idempotent: one alert per (student, course, year),
    so repeated scans do not duplicate
  - A scan failure on one course is logged and does not stop the others

CONFIGURATION:
  - CheckInterval: How often to scan (default: 1 hour)
  - Enabled: Whether the scanner is active (default: true)

USAGE:
  scanner := NewAlertScanner(store)
  scanner.Start()
  // ... later
  scanner.Stop()

SEE ALSO:
  - handlers.go: ListAlerts endpoint
  - billing/detector.go: The consecutive-unpaid rule
*/
package api

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/store/sqlite"
)

// AlertScanner records consecutive-unpaid alerts on a schedule.
type AlertScanner struct {
	Store         *sqlite.Store
	Reports       *billing.ReportService
	CheckInterval time.Duration
	Enabled       bool

	// Now is overridable for tests; defaults to billing.Today.
	Now func() billing.Date

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAlertScanner creates a new scanner.
func NewAlertScanner(store *sqlite.Store) *AlertScanner {
	return &AlertScanner{
		Store:         store,
		Reports:       billing.NewReportService(store),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Now:           billing.Today,
		stop:          make(chan bool),
	}
}

// Start begins the scanner.
func (as *AlertScanner) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		log.Println("[AlertScanner] Disabled, not starting")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)

	go as.run()

	log.Printf("[AlertScanner] Started with check interval: %v", as.CheckInterval)
}

// Stop stops the scanner.
func (as *AlertScanner) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		log.Println("[AlertScanner] Stopped")
	}
}

func (as *AlertScanner) run() {
	defer as.wg.Done()

	// Scan once on startup, then on the ticker
	as.ScanOnce(context.Background())

	for {
		select {
		case <-as.ticker.C:
			as.ScanOnce(context.Background())
		case <-as.stop:
			return
		}
	}
}

// ScanOnce walks every course and records alerts for flagged students.
// Returns how many new alerts were recorded.
func (as *AlertScanner) ScanOnce(ctx context.Context) int {
	asOf := as.Now()
	year := asOf.Year()

	courses, err := as.Store.Courses(ctx)
	if err != nil {
		log.Printf("[AlertScanner] Failed to list courses: %v", err)
		return 0
	}

	recorded := 0
	for _, courseID := range courses {
		n, err := as.scanCourse(ctx, courseID, year, asOf)
		if err != nil {
			log.Printf("[AlertScanner] Course %s: %v", courseID, err)
			continue
		}
		recorded += n
	}

	if recorded > 0 {
		log.Printf("[AlertScanner] Recorded %d new alert(s) for %d", recorded, year)
	}
	return recorded
}

func (as *AlertScanner) scanCourse(ctx context.Context, courseID billing.CourseID, year int, asOf billing.Date) (int, error) {
	studentIDs, err := as.Store.EnrolledStudents(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if len(studentIDs) == 0 {
		return 0, nil
	}

	report, err := as.Reports.BuildReport(ctx, courseID, year, studentIDs, asOf)
	if err != nil {
		return 0, err
	}

	recorded := 0
	for _, studentID := range studentIDs {
		if !report.Flagged[studentID] {
			continue
		}
		streak := billing.LongestUnpaidRun(report.Cells.Statuses(studentID, report.Periods))
		isNew, err := as.Store.RecordAlert(ctx, sqlite.Alert{
			ID:        fmt.Sprintf("alert-%s-%s-%d", studentID, courseID, year),
			StudentID: studentID,
			CourseID:  courseID,
			Year:      year,
			Streak:    streak,
		})
		if err != nil {
			return recorded, err
		}
		if isNew {
			recorded++
		}
	}
	return recorded, nil
}
