package attendance

import (
	"context"
)

// EventQuery selects raw events. Dates are inclusive YYYY-MM-DD bounds;
// empty strings leave the range open.
type EventQuery struct {
	EmployeeID *string
	StartDate  string
	EndDate    string
}

// AttendanceRepository stores raw attendance events. Events are append-only;
// reduction into daily records happens in the domain, never in SQL.
type AttendanceRepository interface {
	// Create stores a new event and returns it with its generated fields
	Create(ctx context.Context, event Event) (Event, error)

	// List returns every event matching the query, in no particular order
	List(ctx context.Context, query EventQuery) ([]Event, error)

	// ListByEmployeeAndDate returns the events of one employee on one day
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date string) ([]Event, error)

	// LockEmployee serialises punches for one employee. Call it inside a
	// transaction before reading the days a new event depends on.
	LockEmployee(ctx context.Context, employeeID string) error
}

// Transactor runs fn in one transaction; repositories called with the ctx it
// passes take part in it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
