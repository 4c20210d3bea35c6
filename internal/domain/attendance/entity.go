package attendance

import (
	"time"
)

type Source string

const (
	SourceScan   Source = "scan"   // QR badge scanned at a kiosk
	SourceSelf   Source = "self"   // employee self-service page
	SourceManual Source = "manual" // entered by a seller
)

// Event is a single scan/punch. Several events may exist for the same
// employee and date; they are never mutated once stored.
type Event struct {
	ID         string
	EmployeeID string
	Date       string  // YYYY-MM-DD
	CheckIn    *string // HH:MM:SS
	CheckOut   *string // HH:MM:SS
	Source     Source
	DeviceID   *string
	CreatedAt  time.Time
}

// DailyRecord is the reduced, one-per-day view of an employee's events.
type DailyRecord struct {
	EmployeeID string
	Date       string
	CheckIn    *string
	CheckOut   *string
}

// Status derives the record's status from which times are present.
func (r DailyRecord) Status() Status {
	return Classify(r.CheckIn, r.CheckOut)
}

// EmployeeSummary is the employee data rendered next to attendance rows.
type EmployeeSummary struct {
	ID       string
	EmpID    string
	Name     string
	Category string
	ImageURL *string
}
