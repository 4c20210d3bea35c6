package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const adjustmentColumns = `
	id, employee_id, period_month, period_year, basic_salary,
	allowances, deductions, notes, updated_by, created_at, updated_at`

func scanAdjustment(row pgx.Row) (payroll.SalaryAdjustment, error) {
	var (
		adj             payroll.SalaryAdjustment
		basic           decimal.NullDecimal
		allowancesBytes []byte
		deductionsBytes []byte
	)
	err := row.Scan(
		&adj.ID, &adj.EmployeeID, &adj.PeriodMonth, &adj.PeriodYear, &basic,
		&allowancesBytes, &deductionsBytes, &adj.Notes, &adj.UpdatedBy, &adj.CreatedAt, &adj.UpdatedAt,
	)
	if err != nil {
		return payroll.SalaryAdjustment{}, err
	}
	if basic.Valid {
		adj.BasicSalary = &basic.Decimal
	}
	if err := json.Unmarshal(allowancesBytes, &adj.Allowances); err != nil {
		return payroll.SalaryAdjustment{}, fmt.Errorf("decode allowances: %w", err)
	}
	if err := json.Unmarshal(deductionsBytes, &adj.Deductions); err != nil {
		return payroll.SalaryAdjustment{}, fmt.Errorf("decode deductions: %w", err)
	}
	return adj, nil
}

// GetAdjustment implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetAdjustment(ctx context.Context, employeeID string, period payroll.Period) (payroll.SalaryAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM salary_adjustments
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3`, adjustmentColumns)

	adj, err := scanAdjustment(q.QueryRow(ctx, query, employeeID, period.Month, period.Year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryAdjustment{}, payroll.ErrAdjustmentNotFound
		}
		return payroll.SalaryAdjustment{}, fmt.Errorf("failed to get salary adjustment: %w", err)
	}
	return adj, nil
}

// ListAdjustments implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListAdjustments(ctx context.Context, period payroll.Period) ([]payroll.SalaryAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM salary_adjustments
		WHERE period_month = $1 AND period_year = $2`, adjustmentColumns)

	rows, err := q.Query(ctx, query, period.Month, period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary adjustments: %w", err)
	}
	defer rows.Close()

	adjustments := make([]payroll.SalaryAdjustment, 0)
	for rows.Next() {
		adj, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary adjustment: %w", err)
		}
		adjustments = append(adjustments, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary adjustments: %w", err)
	}
	return adjustments, nil
}

// UpsertAdjustment implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) UpsertAdjustment(ctx context.Context, adj payroll.SalaryAdjustment) (payroll.SalaryAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	allowancesJSON, err := json.Marshal(nonNilMap(adj.Allowances))
	if err != nil {
		return payroll.SalaryAdjustment{}, fmt.Errorf("encode allowances: %w", err)
	}
	deductionsJSON, err := json.Marshal(nonNilMap(adj.Deductions))
	if err != nil {
		return payroll.SalaryAdjustment{}, fmt.Errorf("encode deductions: %w", err)
	}

	var basic decimal.NullDecimal
	if adj.BasicSalary != nil {
		basic = decimal.NewNullDecimal(*adj.BasicSalary)
	}

	query := fmt.Sprintf(`
		INSERT INTO salary_adjustments (employee_id, period_month, period_year, basic_salary, allowances, deductions, notes, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, period_year, period_month) DO UPDATE SET
			basic_salary = EXCLUDED.basic_salary,
			allowances = EXCLUDED.allowances,
			deductions = EXCLUDED.deductions,
			notes = EXCLUDED.notes,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING %s`, adjustmentColumns)

	saved, err := scanAdjustment(q.QueryRow(ctx, query,
		adj.EmployeeID, adj.PeriodMonth, adj.PeriodYear, basic,
		allowancesJSON, deductionsJSON, adj.Notes, adj.UpdatedBy,
	))
	if err != nil {
		return payroll.SalaryAdjustment{}, fmt.Errorf("failed to save salary adjustment: %w", err)
	}
	return saved, nil
}

func nonNilMap(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return map[string]decimal.Decimal{}
	}
	return m
}
