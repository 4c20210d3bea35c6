package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Allowance and deduction buckets, in display order.
var (
	AllowanceBuckets = []string{"transport", "food", "bonus", "overtime", "medical", "performance", "other"}
	DeductionBuckets = []string{"epf", "etf", "insurance", "advance", "loan", "uniform", "damage", "other"}
)

func isBucket(buckets []string, name string) bool {
	for _, b := range buckets {
		if b == name {
			return true
		}
	}
	return false
}

// Period is one calendar month.
type Period struct {
	Month int
	Year  int
}

// DateRange returns the first and last day of the period as YYYY-MM-DD.
func (p Period) DateRange() (start, end string) {
	first := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}

// Contains reports whether a YYYY-MM-DD date falls within the period.
func (p Period) Contains(date string) bool {
	start, end := p.DateRange()
	return len(date) == len(start) && date >= start && date <= end
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// SalaryAdjustment holds the manually entered changes to one employee's pay
// for one month. Missing buckets count as zero.
type SalaryAdjustment struct {
	ID          string
	EmployeeID  string
	PeriodMonth int
	PeriodYear  int
	BasicSalary *decimal.Decimal // overrides presentDays x dailyRate when set
	Allowances  map[string]decimal.Decimal
	Deductions  map[string]decimal.Decimal
	Notes       *string
	UpdatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a SalaryAdjustment) Period() Period {
	return Period{Month: a.PeriodMonth, Year: a.PeriodYear}
}

// TotalAllowances sums the known allowance buckets.
func (a SalaryAdjustment) TotalAllowances() decimal.Decimal {
	return sumBuckets(AllowanceBuckets, a.Allowances)
}

// TotalDeductions sums the known deduction buckets.
func (a SalaryAdjustment) TotalDeductions() decimal.Decimal {
	return sumBuckets(DeductionBuckets, a.Deductions)
}

func sumBuckets(buckets []string, values map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, name := range buckets {
		if v, ok := values[name]; ok {
			total = total.Add(v)
		}
	}
	return total
}
