/*
handlers.go - HTTP API handlers for the payment reconciliation service

PURPOSE:
  Exposes the billing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine and store.

ENDPOINTS:
  Students:
    GET    /api/students                          List students
    POST   /api/students                          Create/update student
    GET    /api/students/{id}                     Get student
    GET    /api/students/{id}/orders              Order history

  Courses:
    GET    /api/courses/{courseID}/enrollments    List enrollments
    PUT    /api/courses/{courseID}/enrollments    Create/update enrollment
    GET    /api/courses/{courseID}/fees           Get fee settings
    PUT    /api/courses/{courseID}/fees           Set fee settings
    GET    /api/courses/{courseID}/payment-report Payment grid for a year
    GET    /api/courses/{courseID}/alerts         Recorded collection alerts

  Orders:
    POST   /api/orders                            Record a payment order

  Scenarios:
    GET    /api/scenarios                         List demo scenarios
    POST   /api/scenarios/load                    Load a demo scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate order)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Reports *billing.ReportService
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:   store,
		Reports: billing.NewReportService(store),
	}
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns all students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}

	dtos := make([]StudentDTO, len(students))
	for i, s := range students {
		dtos[i] = toStudentDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStudent creates or updates a student.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	st := sqlite.Student{
		ID:    billing.StudentID(req.ID),
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	}
	if err := h.Store.SaveStudent(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save student", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentDTO(st))
}

// GetStudent returns a single student.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id := billing.StudentID(chi.URLParam(r, "id"))

	st, err := h.Store.GetStudent(r.Context(), id)
	if err != nil {
		if billing.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Student not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(*st))
}

// ListStudentOrders returns a student's orders for a course and year.
func (h *Handler) ListStudentOrders(w http.ResponseWriter, r *http.Request) {
	studentID := billing.StudentID(chi.URLParam(r, "id"))
	courseID := billing.CourseID(r.URL.Query().Get("course_id"))
	if courseID == "" {
		writeError(w, http.StatusBadRequest, "course_id is required", nil)
		return
	}
	year, err := yearParam(r, billing.Today().Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	orders, err := h.Store.OrdersFor(r.Context(), []billing.StudentID{studentID}, courseID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list orders", err)
		return
	}

	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ENROLLMENT HANDLERS
// =============================================================================

// ListEnrollments returns all enrollments for a course.
func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	courseID := billing.CourseID(chi.URLParam(r, "courseID"))
	ctx := r.Context()

	studentIDs, err := h.Store.EnrolledStudents(ctx, courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list enrollments", err)
		return
	}

	enrollments, err := h.Store.EnrollmentsFor(ctx, courseID, studentIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list enrollments", err)
		return
	}

	dtos := make([]EnrollmentDTO, 0, len(studentIDs))
	for _, id := range studentIDs {
		if e := enrollments[id]; e != nil {
			dtos = append(dtos, toEnrollmentDTO(*e))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveEnrollment creates or updates a student's enrollment in a course.
func (h *Handler) SaveEnrollment(w http.ResponseWriter, r *http.Request) {
	courseID := billing.CourseID(chi.URLParam(r, "courseID"))

	var req SaveEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.StudentID == "" {
		writeError(w, http.StatusBadRequest, "student_id is required", nil)
		return
	}

	enrollment, err := fromEnrollmentRequest(courseID, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid enrollment", err)
		return
	}

	if err := h.Store.SaveEnrollment(r.Context(), *enrollment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save enrollment", err)
		return
	}
	writeJSON(w, http.StatusOK, toEnrollmentDTO(*enrollment))
}

// =============================================================================
// ORDER HANDLERS
// =============================================================================

// CreateOrder records a payment order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	order, err := fromOrderRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order", err)
		return
	}

	if err := h.Store.InsertOrder(r.Context(), *order); err != nil {
		if errors.Is(err, billing.ErrDuplicateOrder) {
			writeError(w, http.StatusConflict, "Order already exists", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to record order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(*order))
}

// =============================================================================
// FEE SETTINGS HANDLERS
// =============================================================================

// GetFeeSettings returns a course's billing configuration.
func (h *Handler) GetFeeSettings(w http.ResponseWriter, r *http.Request) {
	courseID := billing.CourseID(chi.URLParam(r, "courseID"))

	fees, err := h.Store.FeeSettingsFor(r.Context(), courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get fee settings", err)
		return
	}
	if fees == nil {
		writeError(w, http.StatusNotFound, "No fee settings for course", nil)
		return
	}
	writeJSON(w, http.StatusOK, toFeeSettingsDTO(*fees))
}

// SaveFeeSettings sets a course's billing configuration.
func (h *Handler) SaveFeeSettings(w http.ResponseWriter, r *http.Request) {
	courseID := billing.CourseID(chi.URLParam(r, "courseID"))

	var req SaveFeeSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.FeeAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fee_amount", err)
		return
	}

	fees := billing.FeeSettings{
		CourseID:     courseID,
		BillingCycle: billing.BillingCycle(req.BillingCycle),
		FeeAmount:    billing.Money{Value: amount, Currency: currencyOrDefault(req.Currency)},
	}
	if err := h.Store.SaveFeeSettings(r.Context(), fees); err != nil {
		if billing.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Invalid fee settings", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save fee settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toFeeSettingsDTO(fees))
}

// =============================================================================
// PAYMENT REPORT HANDLER
// =============================================================================

// GetPaymentReport returns the full payment grid for a course and year.
// GET /api/courses/{courseID}/payment-report?year=2025&as_of=2025-06-15
func (h *Handler) GetPaymentReport(w http.ResponseWriter, r *http.Request) {
	courseID := billing.CourseID(chi.URLParam(r, "courseID"))
	ctx := r.Context()

	year, err := yearParam(r, billing.Today().Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	asOf := billing.Today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		if asOf, err = billing.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
			return
		}
	}

	studentIDs, err := h.Store.EnrolledStudents(ctx, courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}

	report, err := h.Reports.BuildReport(ctx, courseID, year, studentIDs, asOf)
	if err != nil {
		if billing.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Invalid report request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	names := make(map[billing.StudentID]string)
	if students, err := h.Store.ListStudents(ctx); err == nil {
		for _, s := range students {
			names[s.ID] = s.Name
		}
	}

	writeJSON(w, http.StatusOK, toReportDTO(report, studentIDs, names, asOf))
}

// =============================================================================
// ALERT HANDLERS
// =============================================================================

// ListAlerts returns recorded collection alerts for a course and year.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	courseID := billing.CourseID(chi.URLParam(r, "courseID"))

	year, err := yearParam(r, billing.Today().Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	alerts, err := h.Store.ListAlerts(r.Context(), courseID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list alerts", err)
		return
	}

	dtos := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = AlertDTO{
			ID:        a.ID,
			StudentID: string(a.StudentID),
			CourseID:  string(a.CourseID),
			Year:      a.Year,
			Streak:    a.Streak,
			CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func toStudentDTO(s sqlite.Student) StudentDTO {
	dto := StudentDTO{
		ID:    string(s.ID),
		Name:  s.Name,
		Phone: s.Phone,
		Email: s.Email,
	}
	if !s.CreatedAt.IsZero() {
		dto.CreatedAt = s.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return dto
}

func toEnrollmentDTO(e billing.Enrollment) EnrollmentDTO {
	dto := EnrollmentDTO{
		StudentID:          string(e.StudentID),
		CourseID:           string(e.CourseID),
		EnrollmentDate:     e.EnrollmentDate.String(),
		Currency:           string(billing.DefaultCurrency),
		SubscriptionStatus: string(e.SubscriptionStatus),
		AcademicStatus:     string(e.AcademicStatus),
	}
	if e.StartDate != nil {
		dto.StartDate = strPtr(e.StartDate.String())
	}
	if e.SubscriptionCancelAt != nil {
		dto.SubscriptionCancelAt = strPtr(e.SubscriptionCancelAt.String())
	}
	if e.EnrollmentFee != nil {
		dto.EnrollmentFee = strPtr(e.EnrollmentFee.Value.StringFixed(2))
		dto.Currency = string(e.EnrollmentFee.Currency)
	}
	return dto
}

func fromEnrollmentRequest(courseID billing.CourseID, req SaveEnrollmentRequest) (*billing.Enrollment, error) {
	enrollmentDate, err := billing.ParseDate(req.EnrollmentDate)
	if err != nil {
		return nil, err
	}

	e := billing.Enrollment{
		StudentID:          billing.StudentID(req.StudentID),
		CourseID:           courseID,
		EnrollmentDate:     enrollmentDate,
		SubscriptionStatus: billing.SubscriptionActive,
		AcademicStatus:     billing.AcademicActive,
	}
	if req.SubscriptionStatus != "" {
		e.SubscriptionStatus = billing.SubscriptionStatus(req.SubscriptionStatus)
	}
	if req.AcademicStatus != "" {
		e.AcademicStatus = billing.AcademicStatus(req.AcademicStatus)
	}
	if req.StartDate != nil && *req.StartDate != "" {
		d, err := billing.ParseDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		e.StartDate = &d
	}
	if req.SubscriptionCancelAt != nil && *req.SubscriptionCancelAt != "" {
		d, err := billing.ParseDate(*req.SubscriptionCancelAt)
		if err != nil {
			return nil, err
		}
		e.SubscriptionCancelAt = &d
	}
	if req.EnrollmentFee != nil && *req.EnrollmentFee != "" {
		v, err := decimal.NewFromString(*req.EnrollmentFee)
		if err != nil {
			return nil, err
		}
		m := billing.Money{Value: v, Currency: currencyOrDefault(req.Currency)}
		e.EnrollmentFee = &m
	}
	return &e, nil
}

func toOrderDTO(o billing.Order) OrderDTO {
	return OrderDTO{
		ID:          string(o.ID),
		StudentID:   string(o.StudentID),
		CourseID:    string(o.CourseID),
		PeriodStart: o.PeriodStart.String(),
		PeriodEnd:   o.PeriodEnd.String(),
		Amount:      o.Amount.Value.StringFixed(2),
		Currency:    string(o.Amount.Currency),
		Status:      string(o.Status),
	}
}

func fromOrderRequest(req CreateOrderRequest) (*billing.Order, error) {
	periodStart, err := billing.ParseDate(req.PeriodStart)
	if err != nil {
		return nil, err
	}
	periodEnd, err := billing.ParseDate(req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, err
	}

	return &billing.Order{
		ID:          billing.OrderID(req.ID),
		StudentID:   billing.StudentID(req.StudentID),
		CourseID:    billing.CourseID(req.CourseID),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Amount:      billing.Money{Value: amount, Currency: currencyOrDefault(req.Currency)},
		Status:      billing.OrderStatus(req.Status),
	}, nil
}

func toFeeSettingsDTO(f billing.FeeSettings) FeeSettingsDTO {
	return FeeSettingsDTO{
		CourseID:     string(f.CourseID),
		BillingCycle: string(f.BillingCycle),
		FeeAmount:    f.FeeAmount.Value.StringFixed(2),
		Currency:     string(f.FeeAmount.Currency),
	}
}

func toReportDTO(report *billing.PaymentReport, studentIDs []billing.StudentID, names map[billing.StudentID]string, asOf billing.Date) PaymentReportDTO {
	periods := make([]PeriodDTO, len(report.Periods))
	for i, p := range report.Periods {
		periods[i] = PeriodDTO{Label: p.Label, Start: p.Start.String(), End: p.End.String()}
	}

	students := make([]StudentReportDTO, 0, len(studentIDs))
	for _, id := range studentIDs {
		row := report.Cells.Row(id, report.Periods)
		cells := make([]PaymentCellDTO, len(row))
		for i, cell := range row {
			dto := PaymentCellDTO{
				Period:   cell.Period.Label,
				Expected: cell.Expected.Value.StringFixed(2),
				Paid:     cell.Paid.Value.StringFixed(2),
				Pending:  cell.Pending.Value.StringFixed(2),
				Unpaid:   cell.Unpaid.Value.StringFixed(2),
				Status:   string(cell.Status),
			}
			for _, o := range cell.Orders {
				dto.Orders = append(dto.Orders, toOrderDTO(o))
			}
			cells[i] = dto
		}
		students = append(students, StudentReportDTO{
			StudentID: string(id),
			Name:      names[id],
			Flagged:   report.Flagged[id],
			Cells:     cells,
		})
	}

	return PaymentReportDTO{
		CourseID: string(report.CourseID),
		Year:     report.Year,
		Cycle:    string(report.Cycle),
		AsOf:     asOf.String(),
		Periods:  periods,
		Students: students,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func yearParam(r *http.Request, fallback int) (int, error) {
	s := r.URL.Query().Get("year")
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}

func currencyOrDefault(s string) billing.Currency {
	if s == "" {
		return billing.DefaultCurrency
	}
	return billing.Currency(s)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func strPtr(s string) *string {
	return &s
}
