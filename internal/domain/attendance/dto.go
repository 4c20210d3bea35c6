package attendance

import (
	"strings"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/timecalc"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// ScanRequest is sent by the QR scanner. Payload is the badge content:
// "EMPID" or "EMPID|123456" when the badge carries a one-time code.
type ScanRequest struct {
	Payload  string `json:"payload"`
	DeviceID string `json:"device_id"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Payload) {
		errs = append(errs, validator.ValidationError{
			Field:   "payload",
			Message: "payload is required",
		})
	}

	if validator.IsEmpty(r.DeviceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "device_id",
			Message: "device_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// BadgeCode splits the payload into the employee badge code and the optional
// one-time code.
func (r *ScanRequest) BadgeCode() (code string, otp string) {
	payload := strings.TrimSpace(r.Payload)
	code, otp, _ = strings.Cut(payload, "|")
	return strings.TrimSpace(code), strings.TrimSpace(otp)
}

type ScanAction string

const (
	ActionCheckIn  ScanAction = "check_in"
	ActionCheckOut ScanAction = "check_out"
)

type ScanResponse struct {
	Action ScanAction          `json:"action"`
	Time   string              `json:"time"`
	Record DailyRecordResponse `json:"record"`
}

type DailyRecordResponse struct {
	EmployeeID string         `json:"employee_id"`
	EmpID      string         `json:"emp_id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Category   string         `json:"category,omitempty"`
	ImageURL   *string        `json:"image,omitempty"`
	Date       string         `json:"date"`
	CheckIn    *string        `json:"check_in"`
	CheckOut   *string        `json:"check_out"`
	Hours      timecalc.Hours `json:"hours"`
	Status     Status         `json:"status"`
}

// NewDailyRecordResponse renders a record, optionally with its employee.
func NewDailyRecordResponse(rec DailyRecord, emp *EmployeeSummary) DailyRecordResponse {
	resp := DailyRecordResponse{
		EmployeeID: rec.EmployeeID,
		Date:       rec.Date,
		CheckIn:    rec.CheckIn,
		CheckOut:   rec.CheckOut,
		Hours:      rec.Hours(),
		Status:     rec.Status(),
	}
	if emp != nil {
		resp.EmpID = emp.EmpID
		resp.Name = emp.Name
		resp.Category = emp.Category
		resp.ImageURL = emp.ImageURL
	}
	return resp
}

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !IsValidStatus(*f.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: absent, present, completed, unknown",
		})
	}
	if f.Status != nil && Status(*f.Status) == StatusAbsent && (f.Date == nil || *f.Date == "") {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status absent can only be filtered for a single date",
		})
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.StartDate != nil && f.EndDate != nil && *f.StartDate != "" && *f.EndDate != "" && *f.StartDate > *f.EndDate {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MonthFilter selects one calendar month.
type MonthFilter struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (f *MonthFilter) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(f.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidYear(f.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 9999"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAttendanceResponse struct {
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
	Records    []DailyRecordResponse `json:"records"`
}

type MyAttendanceResponse struct {
	Month       int                   `json:"month"`
	Year        int                   `json:"year"`
	PresentDays int                   `json:"present_days"`
	TotalHours  string                `json:"total_hours"`
	Records     []DailyRecordResponse `json:"records"`
}

// ExportRow is one CSV line of the attendance export.
type ExportRow struct {
	Date     string `csv:"Date"`
	EmpID    string `csv:"Employee ID"`
	Name     string `csv:"Name"`
	Category string `csv:"Category"`
	CheckIn  string `csv:"Check In"`
	CheckOut string `csv:"Check Out"`
	Hours    string `csv:"Hours"`
	Status   string `csv:"Status"`
}

// NewExportRow flattens a rendered record for CSV output.
func NewExportRow(r DailyRecordResponse) ExportRow {
	deref := func(s *string) string {
		if s == nil {
			return timecalc.Sentinel
		}
		return *s
	}
	return ExportRow{
		Date:     r.Date,
		EmpID:    r.EmpID,
		Name:     r.Name,
		Category: r.Category,
		CheckIn:  deref(r.CheckIn),
		CheckOut: deref(r.CheckOut),
		Hours:    r.Hours.String(),
		Status:   string(r.Status),
	}
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
