/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

CONVENTIONS:
  - Dates travel as "2006-01-02" strings
  - Money travels as decimal strings ("150.00") plus a currency field
  - Report cells are arrays aligned with the periods array, in
    chronological order

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// =============================================================================
// STUDENTS
// =============================================================================

// StudentDTO represents a student in API responses.
type StudentDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateStudentRequest is the request to create or update a student.
type CreateStudentRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// =============================================================================
// ENROLLMENTS
// =============================================================================

// EnrollmentDTO represents an enrollment in API responses.
type EnrollmentDTO struct {
	StudentID            string  `json:"student_id"`
	CourseID             string  `json:"course_id"`
	EnrollmentDate       string  `json:"enrollment_date"`
	StartDate            *string `json:"start_date,omitempty"`
	EnrollmentFee        *string `json:"enrollment_fee,omitempty"`
	Currency             string  `json:"currency"`
	SubscriptionStatus   string  `json:"subscription_status"`
	SubscriptionCancelAt *string `json:"subscription_cancel_at,omitempty"`
	AcademicStatus       string  `json:"academic_status"`
}

// SaveEnrollmentRequest is the request to create or update an enrollment.
type SaveEnrollmentRequest struct {
	StudentID            string  `json:"student_id"`
	EnrollmentDate       string  `json:"enrollment_date"`
	StartDate            *string `json:"start_date,omitempty"`
	EnrollmentFee        *string `json:"enrollment_fee,omitempty"`
	Currency             string  `json:"currency,omitempty"`
	SubscriptionStatus   string  `json:"subscription_status,omitempty"`
	SubscriptionCancelAt *string `json:"subscription_cancel_at,omitempty"`
	AcademicStatus       string  `json:"academic_status,omitempty"`
}

// =============================================================================
// ORDERS
// =============================================================================

// OrderDTO represents a payment order in API responses.
type OrderDTO struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	CourseID    string `json:"course_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

// CreateOrderRequest is the request to record a payment order.
type CreateOrderRequest struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	CourseID    string `json:"course_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	Status      string `json:"status"`
}

// =============================================================================
// FEE SETTINGS
// =============================================================================

// FeeSettingsDTO represents course billing configuration.
type FeeSettingsDTO struct {
	CourseID     string `json:"course_id"`
	BillingCycle string `json:"billing_cycle"`
	FeeAmount    string `json:"fee_amount"`
	Currency     string `json:"currency"`
}

// SaveFeeSettingsRequest is the request to configure course billing.
type SaveFeeSettingsRequest struct {
	BillingCycle string `json:"billing_cycle"`
	FeeAmount    string `json:"fee_amount"`
	Currency     string `json:"currency,omitempty"`
}

// =============================================================================
// PAYMENT REPORT
// =============================================================================

// PeriodDTO is one billing period column of the report.
type PeriodDTO struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// PaymentCellDTO is one (student, period) cell of the report.
type PaymentCellDTO struct {
	Period   string     `json:"period"`
	Expected string     `json:"expected"`
	Paid     string     `json:"paid"`
	Pending  string     `json:"pending"`
	Unpaid   string     `json:"unpaid"`
	Status   string     `json:"status"`
	Orders   []OrderDTO `json:"orders,omitempty"`
}

// StudentReportDTO is one student row: cells aligned with the report's
// periods array, plus the consecutive-unpaid flag.
type StudentReportDTO struct {
	StudentID string           `json:"student_id"`
	Name      string           `json:"name,omitempty"`
	Flagged   bool             `json:"flagged"`
	Cells     []PaymentCellDTO `json:"cells"`
}

// PaymentReportDTO is the full report response.
type PaymentReportDTO struct {
	CourseID string             `json:"course_id"`
	Year     int                `json:"year"`
	Cycle    string             `json:"cycle"`
	AsOf     string             `json:"as_of"`
	Periods  []PeriodDTO        `json:"periods"`
	Students []StudentReportDTO `json:"students"`
}

// =============================================================================
// ALERTS
// =============================================================================

// AlertDTO represents a recorded collection alert.
type AlertDTO struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Year      int    `json:"year"`
	Streak    int    `json:"streak"`
	CreatedAt string `json:"created_at"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a loadable demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
