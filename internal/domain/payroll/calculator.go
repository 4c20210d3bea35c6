package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Salary is the monthly pay breakdown for one employee.
type Salary struct {
	PresentDays     int
	TotalHours      decimal.Decimal
	DailyRate       decimal.Decimal
	BasicSalary     decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	FinalSalary     decimal.Decimal
}

// NegativeBalanceError is returned by Calculate when deductions exceed
// earnings. The breakdown is still available to the caller.
type NegativeBalanceError struct {
	Salary Salary
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("%s: final salary %s", ErrNegativeBalance.Error(), e.Salary.FinalSalary.StringFixed(2))
}

func (e *NegativeBalanceError) Is(target error) bool {
	return target == ErrNegativeBalance
}

// Calculate derives an employee's pay for period from its daily records.
// Records outside the period are ignored. A present day is one with a
// check-in; hours are only counted for days with both times, and days whose
// hours cannot be computed add nothing.
//
// When the final salary is negative the breakdown is returned together with
// a *NegativeBalanceError.
func Calculate(period Period, dailyRate decimal.Decimal, records []attendance.DailyRecord, adj *SalaryAdjustment) (Salary, error) {
	if err := validateInputs(dailyRate, adj); err != nil {
		return Salary{}, err
	}

	salary := Salary{
		TotalHours: decimal.Zero,
		DailyRate:  dailyRate,
	}

	for _, rec := range records {
		if !period.Contains(rec.Date) {
			continue
		}
		if rec.CheckIn != nil {
			salary.PresentDays++
		}
		if hours := rec.Hours(); hours.Known() {
			salary.TotalHours = salary.TotalHours.Add(decimal.NewFromFloat(hours.Value()).Round(2))
		}
	}

	salary.BasicSalary = dailyRate.Mul(decimal.NewFromInt(int64(salary.PresentDays)))
	salary.TotalAllowances = decimal.Zero
	salary.TotalDeductions = decimal.Zero

	if adj != nil {
		if adj.BasicSalary != nil {
			salary.BasicSalary = *adj.BasicSalary
		}
		salary.TotalAllowances = adj.TotalAllowances()
		salary.TotalDeductions = adj.TotalDeductions()
	}

	salary.FinalSalary = salary.BasicSalary.Add(salary.TotalAllowances).Sub(salary.TotalDeductions)

	if salary.FinalSalary.IsNegative() {
		return salary, &NegativeBalanceError{Salary: salary}
	}
	return salary, nil
}

func validateInputs(dailyRate decimal.Decimal, adj *SalaryAdjustment) error {
	var errs validator.ValidationErrors

	if dailyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "daily_rate", Message: "must be non-negative"})
	}

	if adj != nil {
		if adj.BasicSalary != nil && adj.BasicSalary.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
		}
		errs = append(errs, validateBuckets("allowances", AllowanceBuckets, adj.Allowances)...)
		errs = append(errs, validateBuckets("deductions", DeductionBuckets, adj.Deductions)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateBuckets(field string, buckets []string, values map[string]decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for _, name := range buckets {
		if v, ok := values[name]; ok && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + "." + name, Message: "must be non-negative"})
		}
	}
	return errs
}
