package payroll

import (
	"context"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/session"
)

// PayrollService derives monthly pay and manages adjustments
type PayrollService interface {
	GetMonthly(ctx context.Context, employeeID string, period Period) (PayrollEntry, error)
	ListMonthly(ctx context.Context, period Period) (ListPayrollResponse, error)
	SaveAdjustment(ctx context.Context, sess *session.Session, req AdjustmentRequest) (PayrollEntry, error)

	// Payslip renders a PDF; it refuses with ErrNegativeBalance
	Payslip(ctx context.Context, employeeID string, period Period) ([]byte, error)

	// ExportWorkbook renders every entry of the month as an XLSX file
	ExportWorkbook(ctx context.Context, period Period) ([]byte, error)
}
