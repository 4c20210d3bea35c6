package payroll

import "errors"

var (
	ErrAdjustmentNotFound = errors.New("salary adjustment not found")
	ErrNegativeBalance    = errors.New("deductions exceed earnings for this period")
)
