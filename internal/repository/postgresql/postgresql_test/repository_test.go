package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

func createTestEmployee(t *testing.T, ctx context.Context, repo employee.EmployeeRepository, empID string) employee.Employee {
	t.Helper()
	emp, err := repo.Create(ctx, employee.Employee{
		EmpID:     empID,
		Name:      "Employee " + empID,
		Category:  "Sales",
		DailyRate: decimal.RequireFromString("1000.00"),
	})
	require.NoError(t, err)
	return emp
}

func TestEmployeeRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	emp := createTestEmployee(t, ctx, repo, "EMP001")
	assert.NotEmpty(t, emp.ID)

	_, err := repo.Create(ctx, employee.Employee{EmpID: "EMP001", Name: "Dup"})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	got, err := repo.GetByEmpID(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, got.ID)
	assert.True(t, got.DailyRate.Equal(decimal.NewFromInt(1000)))

	require.NoError(t, repo.UpdateDailyRate(ctx, emp.ID, decimal.RequireFromString("1250.50")))
	got, err = repo.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "1250.5", got.DailyRate.String())

	_, err = repo.GetByEmpID(ctx, "NOPE")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	createTestEmployee(t, ctx, repo, "EMP002")
	list, total, err := repo.List(ctx, employee.EmployeeFilter{Search: strPtr("emp00"), Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, "EMP001", list[0].EmpID)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), "EMP010")

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	_, err := setup.DB.Exec(ctx, `INSERT INTO users (email, password_hash, role, employee_id) VALUES ($1, $2, $3, $4)`,
		"cashier@example.com", string(hash), "employee", emp.ID)
	require.NoError(t, err)

	repo := postgresql.NewUserRepository(setup.DB)
	u, err := repo.GetByEmail(ctx, "Cashier@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, u.Role)
	require.NotNil(t, u.EmployeeID)
	assert.Equal(t, emp.ID, *u.EmployeeID)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestAttendanceRepository_CreateAndList(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), "EMP020")
	repo := postgresql.NewAttendanceRepository(setup.DB)

	for _, ev := range []attendance.Event{
		{EmployeeID: emp.ID, Date: "2025-07-07", CheckIn: strPtr("09:00:00"), Source: attendance.SourceScan},
		{EmployeeID: emp.ID, Date: "2025-07-07", CheckOut: strPtr("13:00:00"), Source: attendance.SourceScan},
		{EmployeeID: emp.ID, Date: "2025-07-07", CheckIn: strPtr("08:55:00"), CheckOut: strPtr("18:00:00"), Source: attendance.SourceManual},
		{EmployeeID: emp.ID, Date: "2025-08-01", CheckIn: strPtr("09:00:00"), Source: attendance.SourceSelf},
	} {
		created, err := repo.Create(ctx, ev)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
	}

	events, err := repo.List(ctx, attendance.EventQuery{EmployeeID: &emp.ID, StartDate: "2025-07-01", EndDate: "2025-07-31"})
	require.NoError(t, err)
	require.Len(t, events, 3)

	rec := attendance.ReduceDay(emp.ID, "2025-07-07", events)
	assert.Equal(t, "08:55:00", *rec.CheckIn)
	assert.Equal(t, "18:00:00", *rec.CheckOut)

	day, err := repo.ListByEmployeeAndDate(ctx, emp.ID, "2025-08-01")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, attendance.SourceSelf, day[0].Source)
	assert.Nil(t, day[0].CheckOut)
}

func TestPayrollRepository_Upsert(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), "EMP030")
	repo := postgresql.NewPayrollRepository(setup.DB)
	period := payroll.Period{Month: 7, Year: 2025}

	_, err := repo.GetAdjustment(ctx, emp.ID, period)
	assert.ErrorIs(t, err, payroll.ErrAdjustmentNotFound)

	adj := payroll.SalaryAdjustment{
		EmployeeID:  emp.ID,
		PeriodMonth: 7,
		PeriodYear:  2025,
		Allowances:  map[string]decimal.Decimal{"transport": decimal.NewFromInt(3000)},
		Deductions:  map[string]decimal.Decimal{"epf": decimal.NewFromInt(1200)},
		Notes:       strPtr("first"),
	}
	saved, err := repo.UpsertAdjustment(ctx, adj)
	require.NoError(t, err)
	assert.Nil(t, saved.BasicSalary)

	override := decimal.NewFromInt(25000)
	adj.BasicSalary = &override
	adj.Notes = strPtr("second")
	saved2, err := repo.UpsertAdjustment(ctx, adj)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, saved2.ID)

	got, err := repo.GetAdjustment(ctx, emp.ID, period)
	require.NoError(t, err)
	assert.Equal(t, "second", *got.Notes)
	require.NotNil(t, got.BasicSalary)
	assert.True(t, got.BasicSalary.Equal(override))
	assert.True(t, got.TotalAllowances().Equal(decimal.NewFromInt(3000)))
	assert.True(t, got.TotalDeductions().Equal(decimal.NewFromInt(1200)))

	all, err := repo.ListAdjustments(ctx, period)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	err := postgresql.WithTransaction(ctx, setup.DB, func(txCtx context.Context) error {
		createTestEmployee(t, txCtx, repo, "EMP040")
		return employee.ErrEmployeeCodeExists
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = repo.GetByEmpID(ctx, "EMP040")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestTransactor_LockEmployeeSerialisesPunches(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), "EMP050")
	repo := postgresql.NewAttendanceRepository(setup.DB)
	transactor := postgresql.NewTransactor(setup.DB)

	locked := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := repo.LockEmployee(txCtx, emp.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			_, err := repo.Create(txCtx, attendance.Event{
				EmployeeID: emp.ID, Date: "2025-07-07", CheckIn: strPtr("09:00:00"), Source: attendance.SourceScan,
			})
			return err
		})
	}()
	<-locked

	var seen []attendance.Event
	secondDone := make(chan error, 1)
	go func() {
		secondDone <- transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := repo.LockEmployee(txCtx, emp.ID); err != nil {
				return err
			}
			var err error
			seen, err = repo.ListByEmployeeAndDate(txCtx, emp.ID, "2025-07-07")
			return err
		})
	}()

	select {
	case err := <-secondDone:
		close(release)
		t.Fatalf("second punch did not wait for the first: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-firstDone)
	require.NoError(t, <-secondDone)
	assert.Len(t, seen, 1, "second punch must see the first one's event")
}

func TestAttendanceRepository_LockUnknownEmployee(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	err := postgresql.NewTransactor(setup.DB).WithinTransaction(ctx, func(txCtx context.Context) error {
		return repo.LockEmployee(txCtx, "00000000-0000-0000-0000-000000000000")
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
