package payroll

import "context"

// PayrollRepository stores salary adjustments. Pay itself is always derived
// from attendance and never stored.
type PayrollRepository interface {
	// GetAdjustment returns ErrAdjustmentNotFound when nothing was entered
	GetAdjustment(ctx context.Context, employeeID string, period Period) (SalaryAdjustment, error)
	ListAdjustments(ctx context.Context, period Period) ([]SalaryAdjustment, error)
	UpsertAdjustment(ctx context.Context, adj SalaryAdjustment) (SalaryAdjustment, error)
}
