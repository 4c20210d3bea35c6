package employee

import (
	"strings"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	EmpID     string  `json:"emp_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	ImageURL  *string `json:"image,omitempty"`
	DailyRate float64 `json:"daily_rate"`
	BadgeOTP  bool    `json:"badge_otp"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmpID = strings.TrimSpace(r.EmpID)
	if !validator.IsValidEmployeeCode(r.EmpID) {
		errs = append(errs, validator.ValidationError{
			Field:   "emp_id",
			Message: ErrInvalidEmployeeCode.Error(),
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if !validator.IsValidAmount(r.DailyRate) {
		errs = append(errs, validator.ValidationError{
			Field:   "daily_rate",
			Message: "daily_rate must be a non-negative amount no greater than 999999999999.99",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateDailyRateRequest struct {
	ID        string  `json:"-"`
	DailyRate float64 `json:"daily_rate"`
}

func (r *UpdateDailyRateRequest) Validate() error {
	if !validator.IsValidAmount(r.DailyRate) {
		return validator.ValidationErrors{{
			Field:   "daily_rate",
			Message: "daily_rate must be a non-negative amount no greater than 999999999999.99",
		}}
	}
	return nil
}

type EmployeeFilter struct {
	Search   *string `json:"search,omitempty"`
	Category *string `json:"category,omitempty"`
	Page     int     `json:"page"`
	Limit    int     `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID         string          `json:"id"`
	EmpID      string          `json:"emp_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	ImageURL   *string         `json:"image,omitempty"`
	DailyRate  decimal.Decimal `json:"daily_rate"`
	BadgeOTP   bool            `json:"badge_otp"`
	OTPAuthURL *string         `json:"otpauth_url,omitempty"` // only returned once, on creation
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		EmpID:     e.EmpID,
		Name:      e.Name,
		Category:  e.Category,
		ImageURL:  e.ImageURL,
		DailyRate: e.DailyRate,
		BadgeOTP:  e.HasBadgeOTP(),
	}
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Employees  []EmployeeResponse `json:"employees"`
}
