package payroll

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/session"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeEmployeeRepo struct {
	employee.EmployeeRepository
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListAll(ctx context.Context) ([]employee.Employee, error) {
	return f.employees, nil
}

type fakeAttendanceRepo struct {
	attendance.AttendanceRepository
	events []attendance.Event
}

func (f *fakeAttendanceRepo) List(ctx context.Context, q attendance.EventQuery) ([]attendance.Event, error) {
	var out []attendance.Event
	for _, e := range f.events {
		if q.EmployeeID != nil && e.EmployeeID != *q.EmployeeID {
			continue
		}
		if e.Date < q.StartDate || e.Date > q.EndDate {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeAttendanceRepo) workDay(employeeID, date, in, out string) {
	f.events = append(f.events, attendance.Event{EmployeeID: employeeID, Date: date, CheckIn: &in, CheckOut: &out})
}

type fakePayrollRepo struct {
	adjustments map[string]payroll.SalaryAdjustment
}

func key(employeeID string, p payroll.Period) string {
	return employeeID + "/" + p.String()
}

func (f *fakePayrollRepo) GetAdjustment(ctx context.Context, employeeID string, period payroll.Period) (payroll.SalaryAdjustment, error) {
	adj, ok := f.adjustments[key(employeeID, period)]
	if !ok {
		return payroll.SalaryAdjustment{}, payroll.ErrAdjustmentNotFound
	}
	return adj, nil
}

func (f *fakePayrollRepo) ListAdjustments(ctx context.Context, period payroll.Period) ([]payroll.SalaryAdjustment, error) {
	var out []payroll.SalaryAdjustment
	for _, adj := range f.adjustments {
		if adj.Period() == period {
			out = append(out, adj)
		}
	}
	return out, nil
}

func (f *fakePayrollRepo) UpsertAdjustment(ctx context.Context, adj payroll.SalaryAdjustment) (payroll.SalaryAdjustment, error) {
	adj.ID = "adj-" + adj.EmployeeID
	f.adjustments[key(adj.EmployeeID, adj.Period())] = adj
	return adj, nil
}

var july = payroll.Period{Month: 7, Year: 2025}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// newFixture seeds EMP001 with 20 full days and a 1800 allowance, and EMP002
// with one day and a 2000 loan deduction.
func newFixture() (*PayrollServiceImpl, *fakePayrollRepo) {
	employees := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "e-1", EmpID: "EMP001", Name: "Nimal", Category: "Sales", DailyRate: d(1000)},
		{ID: "e-2", EmpID: "EMP002", Name: "Kamala", Category: "Stores", DailyRate: d(500)},
	}}

	events := &fakeAttendanceRepo{}
	for day := 1; day <= 20; day++ {
		events.workDay("e-1", fmt.Sprintf("2025-07-%02d", day), "09:00:00", "17:00:00")
	}
	events.workDay("e-1", "2025-08-01", "09:00:00", "17:00:00")
	events.workDay("e-2", "2025-07-01", "09:00:00", "13:30:00")

	adjustments := &fakePayrollRepo{adjustments: map[string]payroll.SalaryAdjustment{}}
	adjustments.adjustments[key("e-1", july)] = payroll.SalaryAdjustment{
		EmployeeID: "e-1", PeriodMonth: 7, PeriodYear: 2025,
		Allowances: map[string]decimal.Decimal{"transport": d(1000), "food": d(800)},
	}
	adjustments.adjustments[key("e-2", july)] = payroll.SalaryAdjustment{
		EmployeeID: "e-2", PeriodMonth: 7, PeriodYear: 2025,
		Deductions: map[string]decimal.Decimal{"loan": d(2000)},
	}

	svc := NewPayrollService(adjustments, employees, events, "AutoParts").(*PayrollServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC) }
	return svc, adjustments
}

func TestGetMonthly(t *testing.T) {
	svc, _ := newFixture()

	entry, err := svc.GetMonthly(context.Background(), "e-1", july)
	require.NoError(t, err)
	assert.Equal(t, "EMP001", entry.EmpID)
	assert.Equal(t, 20, entry.PresentDays)
	assert.Equal(t, "160.00", entry.TotalHours.StringFixed(2))
	assert.Equal(t, "20000.00", entry.BasicSalary.StringFixed(2))
	assert.Equal(t, "1800.00", entry.TotalAllowances.StringFixed(2))
	assert.Equal(t, "21800.00", entry.FinalSalary.StringFixed(2))
	assert.True(t, entry.Adjusted)
	assert.Equal(t, payroll.ResultOK, entry.Result)

	entry, err = svc.GetMonthly(context.Background(), "e-1", payroll.Period{Month: 6, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 0, entry.PresentDays)
	assert.True(t, entry.FinalSalary.IsZero())
	assert.False(t, entry.Adjusted)

	_, err = svc.GetMonthly(context.Background(), "e-404", july)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = svc.GetMonthly(context.Background(), "e-1", payroll.Period{Month: 0, Year: 2025})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestGetMonthly_NegativeBalanceIsReportedNotFailed(t *testing.T) {
	svc, _ := newFixture()

	entry, err := svc.GetMonthly(context.Background(), "e-2", july)
	require.NoError(t, err)
	assert.Equal(t, payroll.ResultNegativeBalance, entry.Result)
	assert.Equal(t, "-1500.00", entry.FinalSalary.StringFixed(2))
	assert.Equal(t, "4.50", entry.TotalHours.StringFixed(2))
}

func TestListMonthly(t *testing.T) {
	svc, _ := newFixture()

	list, err := svc.ListMonthly(context.Background(), july)
	require.NoError(t, err)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, 2, list.Summary.TotalEmployees)
	assert.Equal(t, 1, list.Summary.NegativeBalanceCount)
	assert.Equal(t, "20500.00", list.Summary.TotalBasicSalary.StringFixed(2))
	assert.Equal(t, "20300.00", list.Summary.TotalFinalSalary.StringFixed(2))
}

func TestSaveAdjustment(t *testing.T) {
	svc, repo := newFixture()
	seller := &session.Session{UserID: "u-seller", Role: user.RoleSeller}
	basic := 3000.0
	notes := "advance settled"

	_, err := svc.SaveAdjustment(context.Background(), seller, payroll.AdjustmentRequest{
		EmployeeID: "e-2", Month: 7, Year: 2025,
		Deductions: map[string]float64{"parking": 10},
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "deductions.parking", verrs[0].Field)

	entry, err := svc.SaveAdjustment(context.Background(), seller, payroll.AdjustmentRequest{
		EmployeeID:  "e-2",
		Month:       7,
		Year:        2025,
		BasicSalary: &basic,
		Deductions:  map[string]float64{"loan": 200.004},
		Notes:       &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "2800.00", entry.FinalSalary.StringFixed(2))
	assert.Equal(t, payroll.ResultOK, entry.Result)
	assert.Equal(t, notes, *entry.Notes)

	stored := repo.adjustments[key("e-2", july)]
	require.NotNil(t, stored.UpdatedBy)
	assert.Equal(t, "u-seller", *stored.UpdatedBy)
	assert.Equal(t, "200.00", stored.Deductions["loan"].StringFixed(2))

	_, err = svc.SaveAdjustment(context.Background(), seller, payroll.AdjustmentRequest{EmployeeID: "e-404", Month: 7, Year: 2025})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestPayslip(t *testing.T) {
	svc, _ := newFixture()

	pdf, err := svc.Payslip(context.Background(), "e-1", july)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, err = svc.Payslip(context.Background(), "e-2", july)
	assert.ErrorIs(t, err, payroll.ErrNegativeBalance)
}

func TestBucketLabel(t *testing.T) {
	assert.Equal(t, "EPF", bucketLabel("epf"))
	assert.Equal(t, "Transport", bucketLabel("transport"))

	lines := payslipLines(payroll.AllowanceBuckets, map[string]decimal.Decimal{"food": d(800), "transport": d(1000), "bonus": decimal.Zero})
	require.Len(t, lines, 2)
	assert.Equal(t, "Transport", lines[0].Label)
	assert.Equal(t, "800.00", lines[1].Amount)
}

func TestExportWorkbook(t *testing.T) {
	svc, _ := newFixture()

	data, err := svc.ExportWorkbook(context.Background(), july)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Payroll 2025-07")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, workbookHeader, rows[0])
	assert.Equal(t, "EMP001", rows[1][0])
	assert.Equal(t, "negative_balance", rows[2][10])
}
