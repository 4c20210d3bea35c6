package employee

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/totp"
	"github.com/shopspring/decimal"
)

type EmployeeServiceImpl struct {
	employee.EmployeeRepository
	badgeIssuer string
}

func NewEmployeeService(employeeRepository employee.EmployeeRepository, badgeIssuer string) employee.EmployeeService {
	return &EmployeeServiceImpl{
		EmployeeRepository: employeeRepository,
		badgeIssuer:        badgeIssuer,
	}
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	newEmployee := employee.Employee{
		EmpID:     req.EmpID,
		Name:      req.Name,
		Category:  req.Category,
		ImageURL:  req.ImageURL,
		DailyRate: decimal.NewFromFloat(req.DailyRate).Round(2),
	}

	var otpauthURL string
	if req.BadgeOTP {
		secret, url, err := totp.GenerateSecret(s.badgeIssuer, req.EmpID)
		if err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to generate badge secret: %w", err)
		}
		newEmployee.TOTPSecret = &secret
		otpauthURL = url
	}

	created, err := s.EmployeeRepository.Create(ctx, newEmployee)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee created", "employee_id", created.ID, "emp_id", created.EmpID, "badge_otp", req.BadgeOTP)

	resp := employee.NewEmployeeResponse(created)
	if otpauthURL != "" {
		resp.OTPAuthURL = &otpauthURL
	}
	return resp, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.EmployeeRepository.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Employees:  responses,
	}, nil
}

// UpdateDailyRate implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateDailyRate(ctx context.Context, req employee.UpdateDailyRateRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	rate := decimal.NewFromFloat(req.DailyRate).Round(2)
	if err := s.EmployeeRepository.UpdateDailyRate(ctx, req.ID, rate); err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("daily rate updated", "employee_id", req.ID, "daily_rate", rate.String())
	return s.GetEmployee(ctx, req.ID)
}
