package payroll

import (
	"sort"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// PeriodRequest is the month/year pair in payroll query strings.
type PeriodRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 9999"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r PeriodRequest) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

// AdjustmentRequest is the body of the salary adjustment form. Amounts arrive
// as plain numbers and are validated before they become decimals.
type AdjustmentRequest struct {
	EmployeeID  string             `json:"-"`
	Month       int                `json:"-"`
	Year        int                `json:"-"`
	BasicSalary *float64           `json:"basic_salary,omitempty"`
	Allowances  map[string]float64 `json:"allowances"`
	Deductions  map[string]float64 `json:"deductions"`
	Notes       *string            `json:"notes,omitempty"`
}

func (r *AdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}

	period := PeriodRequest{Month: r.Month, Year: r.Year}
	if err := period.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	if r.BasicSalary != nil && !validator.IsValidAmount(*r.BasicSalary) {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be a non-negative amount no greater than 999999999999.99"})
	}

	errs = append(errs, validateAmounts("allowances", AllowanceBuckets, r.Allowances)...)
	errs = append(errs, validateAmounts("deductions", DeductionBuckets, r.Deductions)...)

	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "notes", Message: "must not exceed 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateAmounts(field string, buckets []string, values map[string]float64) validator.ValidationErrors {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs validator.ValidationErrors
	for _, name := range names {
		if !isBucket(buckets, name) {
			errs = append(errs, validator.ValidationError{Field: field + "." + name, Message: "unknown bucket"})
			continue
		}
		if !validator.IsValidAmount(values[name]) {
			errs = append(errs, validator.ValidationError{Field: field + "." + name, Message: "must be a non-negative amount no greater than 999999999999.99"})
		}
	}
	return errs
}

// ToAdjustment converts a validated request into the stored form.
func (r *AdjustmentRequest) ToAdjustment() SalaryAdjustment {
	adj := SalaryAdjustment{
		EmployeeID:  r.EmployeeID,
		PeriodMonth: r.Month,
		PeriodYear:  r.Year,
		Allowances:  toDecimals(r.Allowances),
		Deductions:  toDecimals(r.Deductions),
		Notes:       r.Notes,
	}
	if r.BasicSalary != nil {
		basic := decimal.NewFromFloat(*r.BasicSalary).Round(2)
		adj.BasicSalary = &basic
	}
	return adj
}

func toDecimals(values map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(values))
	for name, v := range values {
		out[name] = decimal.NewFromFloat(v).Round(2)
	}
	return out
}

type Result string

const (
	ResultOK              Result = "ok"
	ResultNegativeBalance Result = "negative_balance"
)

// PayrollEntry is one employee's pay for one month.
type PayrollEntry struct {
	EmployeeID      string                     `json:"employee_id"`
	EmpID           string                     `json:"emp_id"`
	Name            string                     `json:"name"`
	Category        string                     `json:"category"`
	Month           int                        `json:"month"`
	Year            int                        `json:"year"`
	DailyRate       decimal.Decimal            `json:"daily_rate"`
	PresentDays     int                        `json:"present_days"`
	TotalHours      decimal.Decimal            `json:"total_hours"`
	BasicSalary     decimal.Decimal            `json:"basic_salary"`
	Allowances      map[string]decimal.Decimal `json:"allowances"`
	Deductions      map[string]decimal.Decimal `json:"deductions"`
	TotalAllowances decimal.Decimal            `json:"total_allowances"`
	TotalDeductions decimal.Decimal            `json:"total_deductions"`
	FinalSalary     decimal.Decimal            `json:"final_salary"`
	Notes           *string                    `json:"notes,omitempty"`
	Adjusted        bool                       `json:"adjusted"`
	Result          Result                     `json:"result"`
}

// NewPayrollEntry fills the money fields of an entry from a calculation.
// adj may be nil.
func NewPayrollEntry(period Period, salary Salary, adj *SalaryAdjustment, negative bool) PayrollEntry {
	entry := PayrollEntry{
		Month:           period.Month,
		Year:            period.Year,
		DailyRate:       salary.DailyRate,
		PresentDays:     salary.PresentDays,
		TotalHours:      salary.TotalHours,
		BasicSalary:     salary.BasicSalary,
		Allowances:      map[string]decimal.Decimal{},
		Deductions:      map[string]decimal.Decimal{},
		TotalAllowances: salary.TotalAllowances,
		TotalDeductions: salary.TotalDeductions,
		FinalSalary:     salary.FinalSalary,
		Result:          ResultOK,
	}
	if negative {
		entry.Result = ResultNegativeBalance
	}
	if adj != nil {
		entry.Adjusted = true
		entry.Notes = adj.Notes
		for name, v := range adj.Allowances {
			entry.Allowances[name] = v
		}
		for name, v := range adj.Deductions {
			entry.Deductions[name] = v
		}
	}
	return entry
}

type PayrollSummary struct {
	TotalEmployees       int             `json:"total_employees"`
	TotalBasicSalary     decimal.Decimal `json:"total_basic_salary"`
	TotalAllowances      decimal.Decimal `json:"total_allowances"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`
	TotalFinalSalary     decimal.Decimal `json:"total_final_salary"`
	NegativeBalanceCount int             `json:"negative_balance_count"`
}

type ListPayrollResponse struct {
	Month   int            `json:"month"`
	Year    int            `json:"year"`
	Summary PayrollSummary `json:"summary"`
	Entries []PayrollEntry `json:"entries"`
}

// Summarize totals a month's entries.
func Summarize(entries []PayrollEntry) PayrollSummary {
	s := PayrollSummary{
		TotalEmployees:   len(entries),
		TotalBasicSalary: decimal.Zero,
		TotalAllowances:  decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalFinalSalary: decimal.Zero,
	}
	for _, e := range entries {
		s.TotalBasicSalary = s.TotalBasicSalary.Add(e.BasicSalary)
		s.TotalAllowances = s.TotalAllowances.Add(e.TotalAllowances)
		s.TotalDeductions = s.TotalDeductions.Add(e.TotalDeductions)
		s.TotalFinalSalary = s.TotalFinalSalary.Add(e.FinalSalary)
		if e.Result == ResultNegativeBalance {
			s.NegativeBalanceCount++
		}
	}
	return s
}
