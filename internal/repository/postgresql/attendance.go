package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Dates and times travel as text so the domain keeps its YYYY-MM-DD and
// HH:MM:SS strings.
const eventColumns = `
	id, employee_id, to_char(date, 'YYYY-MM-DD'),
	to_char(check_in, 'HH24:MI:SS'), to_char(check_out, 'HH24:MI:SS'),
	source, device_id, created_at`

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_events (employee_id, date, check_in, check_out, source, device_id)
		VALUES ($1, $2::date, $3::time, $4::time, $5, $6)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		event.EmployeeID,
		event.Date,
		event.CheckIn,
		event.CheckOut,
		event.Source,
		event.DeviceID,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return attendance.Event{}, fmt.Errorf("failed to create attendance event: %w", err)
	}

	return event, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, query attendance.EventQuery) ([]attendance.Event, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if query.EmployeeID != nil && *query.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *query.EmployeeID)
		argIdx++
	}
	if query.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d::date", argIdx))
		args = append(args, query.StartDate)
		argIdx++
	}
	if query.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("date <= $%d::date", argIdx))
		args = append(args, query.EndDate)
		argIdx++
	}

	sql := fmt.Sprintf("SELECT %s FROM attendance_events WHERE %s", eventColumns, strings.Join(conditions, " AND "))
	return a.query(ctx, sql, args...)
}

// ListByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, date string) ([]attendance.Event, error) {
	sql := fmt.Sprintf("SELECT %s FROM attendance_events WHERE employee_id = $1 AND date = $2::date", eventColumns)
	return a.query(ctx, sql, employeeID, date)
}

// LockEmployee implements attendance.AttendanceRepository. The row lock is
// held until the transaction carried by ctx ends.
func (a *attendanceRepository) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, a.db)

	var found int
	err := q.QueryRow(ctx, `SELECT 1 FROM employees WHERE id = $1 FOR UPDATE`, employeeID).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to lock employee: %w", err)
	}
	return nil
}

func (a *attendanceRepository) query(ctx context.Context, sql string, args ...interface{}) ([]attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	defer rows.Close()

	events := make([]attendance.Event, 0)
	for rows.Next() {
		var ev attendance.Event
		if err := rows.Scan(
			&ev.ID, &ev.EmployeeID, &ev.Date,
			&ev.CheckIn, &ev.CheckOut,
			&ev.Source, &ev.DeviceID, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance events: %w", err)
	}

	return events, nil
}
