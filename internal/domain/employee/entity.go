package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID         string
	UserID     *string
	EmpID      string // badge code printed on the QR card
	Name       string
	Category   string
	ImageURL   *string
	DailyRate  decimal.Decimal
	TOTPSecret *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasBadgeOTP reports whether scans of this employee's badge must carry a
// one-time code.
func (e *Employee) HasBadgeOTP() bool {
	return e.TOTPSecret != nil && *e.TOTPSecret != ""
}
