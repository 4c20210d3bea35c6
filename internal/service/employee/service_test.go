package employee

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeRepo struct {
	employee.EmployeeRepository
	byID map[string]employee.Employee
}

func newFakeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byID: map[string]employee.Employee{}}
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	for _, existing := range f.byID {
		if existing.EmpID == e.EmpID {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
	}
	e.ID = "id-" + e.EmpID
	f.byID[e.ID] = e
	return e, nil
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	out := make([]employee.Employee, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeEmployeeRepo) UpdateDailyRate(ctx context.Context, id string, rate decimal.Decimal) error {
	e, ok := f.byID[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.DailyRate = rate
	f.byID[id] = e
	return nil
}

func TestCreateEmployee(t *testing.T) {
	svc := NewEmployeeService(newFakeRepo(), "AutoParts")

	resp, err := svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{
		EmpID: "EMP001", Name: "Nimal", Category: "Sales", DailyRate: 1000.555,
	})
	require.NoError(t, err)
	assert.Equal(t, "id-EMP001", resp.ID)
	assert.Equal(t, "1000.56", resp.DailyRate.StringFixed(2))
	assert.False(t, resp.BadgeOTP)
	assert.Nil(t, resp.OTPAuthURL)

	_, err = svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{EmpID: "EMP001", Name: "Again"})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)
}

func TestCreateEmployee_WithBadgeOTP(t *testing.T) {
	svc := NewEmployeeService(newFakeRepo(), "AutoParts")

	resp, err := svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{
		EmpID: "EMP002", Name: "Kamal", BadgeOTP: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.BadgeOTP)
	require.NotNil(t, resp.OTPAuthURL)
	assert.Contains(t, *resp.OTPAuthURL, "otpauth://totp/AutoParts:EMP002")
}

func TestCreateEmployee_Validation(t *testing.T) {
	svc := NewEmployeeService(newFakeRepo(), "AutoParts")

	_, err := svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{
		EmpID: "E 1", DailyRate: math.NaN(),
	})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	assert.Contains(t, fields, "emp_id")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "daily_rate")
}

func TestUpdateDailyRate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewEmployeeService(repo, "AutoParts")
	_, err := svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{EmpID: "EMP003", Name: "Sunil"})
	require.NoError(t, err)

	resp, err := svc.UpdateDailyRate(context.Background(), employee.UpdateDailyRateRequest{ID: "id-EMP003", DailyRate: 1500})
	require.NoError(t, err)
	assert.True(t, resp.DailyRate.Equal(decimal.NewFromInt(1500)))

	_, err = svc.UpdateDailyRate(context.Background(), employee.UpdateDailyRateRequest{ID: "missing", DailyRate: 10})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = svc.UpdateDailyRate(context.Background(), employee.UpdateDailyRateRequest{ID: "id-EMP003", DailyRate: -1})
	assert.Error(t, err)

	_, err = svc.UpdateDailyRate(context.Background(), employee.UpdateDailyRateRequest{ID: "id-EMP003", DailyRate: 1e13})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "daily_rate")
}

func TestListEmployees(t *testing.T) {
	repo := newFakeRepo()
	svc := NewEmployeeService(repo, "AutoParts")
	for _, code := range []string{"EMP010", "EMP011", "EMP012"} {
		_, err := svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{EmpID: code, Name: code})
		require.NoError(t, err)
	}

	resp, err := svc.ListEmployees(context.Background(), employee.EmployeeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.TotalPages)
}
