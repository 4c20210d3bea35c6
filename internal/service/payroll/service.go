package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/export"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/session"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	company        string
	now            func() time.Time
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	company string,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		company:        company,
		now:            time.Now,
	}
}

// ========== CALCULATION ==========

// entry derives one employee's pay. adj may be nil. A negative balance is
// reported through the entry's Result, not as an error.
func (s *PayrollServiceImpl) entry(period payroll.Period, emp employee.Employee, records []attendance.DailyRecord, adj *payroll.SalaryAdjustment) (payroll.PayrollEntry, error) {
	salary, err := payroll.Calculate(period, emp.DailyRate, records, adj)
	negative := errors.Is(err, payroll.ErrNegativeBalance)
	if err != nil && !negative {
		return payroll.PayrollEntry{}, err
	}

	entry := payroll.NewPayrollEntry(period, salary, adj, negative)
	entry.EmployeeID = emp.ID
	entry.EmpID = emp.EmpID
	entry.Name = emp.Name
	entry.Category = emp.Category
	return entry, nil
}

func (s *PayrollServiceImpl) monthRecords(ctx context.Context, employeeID *string, period payroll.Period) ([]attendance.DailyRecord, error) {
	start, end := period.DateRange()
	events, err := s.attendanceRepo.List(ctx, attendance.EventQuery{EmployeeID: employeeID, StartDate: start, EndDate: end})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", period, err)
	}
	return attendance.Reduce(events), nil
}

func (s *PayrollServiceImpl) adjustment(ctx context.Context, employeeID string, period payroll.Period) (*payroll.SalaryAdjustment, error) {
	adj, err := s.payrollRepo.GetAdjustment(ctx, employeeID, period)
	if err != nil {
		if errors.Is(err, payroll.ErrAdjustmentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &adj, nil
}

// GetMonthly implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetMonthly(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
	req := payroll.PeriodRequest{Month: period.Month, Year: period.Year}
	if err := req.Validate(); err != nil {
		return payroll.PayrollEntry{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.PayrollEntry{}, err
	}

	records, err := s.monthRecords(ctx, &emp.ID, period)
	if err != nil {
		return payroll.PayrollEntry{}, err
	}

	adj, err := s.adjustment(ctx, emp.ID, period)
	if err != nil {
		return payroll.PayrollEntry{}, err
	}

	return s.entry(period, emp, records, adj)
}

// ListMonthly implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListMonthly(ctx context.Context, period payroll.Period) (payroll.ListPayrollResponse, error) {
	req := payroll.PeriodRequest{Month: period.Month, Year: period.Year}
	if err := req.Validate(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	employees, err := s.employeeRepo.ListAll(ctx)
	if err != nil {
		return payroll.ListPayrollResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	records, err := s.monthRecords(ctx, nil, period)
	if err != nil {
		return payroll.ListPayrollResponse{}, err
	}
	byEmployee := make(map[string][]attendance.DailyRecord, len(employees))
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = append(byEmployee[rec.EmployeeID], rec)
	}

	adjustments, err := s.payrollRepo.ListAdjustments(ctx, period)
	if err != nil {
		return payroll.ListPayrollResponse{}, fmt.Errorf("failed to list adjustments: %w", err)
	}
	adjByEmployee := make(map[string]*payroll.SalaryAdjustment, len(adjustments))
	for i := range adjustments {
		adjByEmployee[adjustments[i].EmployeeID] = &adjustments[i]
	}

	entries := make([]payroll.PayrollEntry, 0, len(employees))
	for _, emp := range employees {
		entry, err := s.entry(period, emp, byEmployee[emp.ID], adjByEmployee[emp.ID])
		if err != nil {
			return payroll.ListPayrollResponse{}, fmt.Errorf("employee %s: %w", emp.EmpID, err)
		}
		entries = append(entries, entry)
	}

	return payroll.ListPayrollResponse{
		Month:   period.Month,
		Year:    period.Year,
		Summary: payroll.Summarize(entries),
		Entries: entries,
	}, nil
}

// ========== ADJUSTMENTS ==========

// SaveAdjustment implements payroll.PayrollService.
func (s *PayrollServiceImpl) SaveAdjustment(ctx context.Context, sess *session.Session, req payroll.AdjustmentRequest) (payroll.PayrollEntry, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollEntry{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.PayrollEntry{}, err
	}

	adj := req.ToAdjustment()
	if sess != nil {
		adj.UpdatedBy = &sess.UserID
	}

	saved, err := s.payrollRepo.UpsertAdjustment(ctx, adj)
	if err != nil {
		return payroll.PayrollEntry{}, fmt.Errorf("failed to save adjustment: %w", err)
	}

	period := saved.Period()
	records, err := s.monthRecords(ctx, &emp.ID, period)
	if err != nil {
		return payroll.PayrollEntry{}, err
	}

	entry, err := s.entry(period, emp, records, &saved)
	if err != nil {
		return payroll.PayrollEntry{}, err
	}

	slog.Info("salary adjustment saved",
		"employee_id", emp.ID,
		"period", period.String(),
		"final_salary", entry.FinalSalary.StringFixed(2),
		"result", entry.Result,
	)
	return entry, nil
}

// ========== DOCUMENTS ==========

// Payslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) Payslip(ctx context.Context, employeeID string, period payroll.Period) ([]byte, error) {
	entry, err := s.GetMonthly(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}
	if entry.Result == payroll.ResultNegativeBalance {
		return nil, fmt.Errorf("payslip for %s not issued: %w", entry.EmpID, payroll.ErrNegativeBalance)
	}

	slip := export.Payslip{
		Company:       s.company,
		Period:        time.Date(period.Year, time.Month(period.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006"),
		EmpID:         entry.EmpID,
		Name:          entry.Name,
		Category:      entry.Category,
		PresentDays:   entry.PresentDays,
		TotalHours:    entry.TotalHours.StringFixed(2),
		DailyRate:     entry.DailyRate.StringFixed(2),
		BasicSalary:   entry.BasicSalary.StringFixed(2),
		Allowances:    payslipLines(payroll.AllowanceBuckets, entry.Allowances),
		Deductions:    payslipLines(payroll.DeductionBuckets, entry.Deductions),
		TotalEarnings: entry.BasicSalary.Add(entry.TotalAllowances).StringFixed(2),
		TotalDeduct:   entry.TotalDeductions.StringFixed(2),
		NetSalary:     entry.FinalSalary.StringFixed(2),
		GeneratedAt:   s.now(),
	}
	if entry.Notes != nil {
		slip.Notes = *entry.Notes
	}

	return export.PayslipPDF(slip)
}

// payslipLines lists the non-zero buckets in their fixed order.
func payslipLines(buckets []string, values map[string]decimal.Decimal) []export.PayslipLine {
	var lines []export.PayslipLine
	for _, name := range buckets {
		v, ok := values[name]
		if !ok || v.IsZero() {
			continue
		}
		lines = append(lines, export.PayslipLine{Label: bucketLabel(name), Amount: v.StringFixed(2)})
	}
	return lines
}

// bucketLabel turns "epf" into "EPF" and "transport" into "Transport".
func bucketLabel(name string) string {
	if len(name) <= 3 {
		return strings.ToUpper(name)
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

var workbookHeader = []string{
	"Employee ID", "Name", "Category", "Present Days", "Total Hours", "Daily Rate",
	"Basic Salary", "Total Allowances", "Total Deductions", "Final Salary", "Result",
}

// ExportWorkbook implements payroll.PayrollService.
func (s *PayrollServiceImpl) ExportWorkbook(ctx context.Context, period payroll.Period) ([]byte, error) {
	list, err := s.ListMonthly(ctx, period)
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(list.Entries))
	for _, e := range list.Entries {
		rows = append(rows, []interface{}{
			e.EmpID,
			e.Name,
			e.Category,
			e.PresentDays,
			e.TotalHours.InexactFloat64(),
			e.DailyRate.InexactFloat64(),
			e.BasicSalary.InexactFloat64(),
			e.TotalAllowances.InexactFloat64(),
			e.TotalDeductions.InexactFloat64(),
			e.FinalSalary.InexactFloat64(),
			string(e.Result),
		})
	}

	return export.Workbook("Payroll "+period.String(), workbookHeader, rows)
}
