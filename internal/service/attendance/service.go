package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/debounce"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/export"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/session"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/timecalc"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/totp"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// openShiftWindow is how long after its check-in an open shift from the
// previous date can still be closed.
const openShiftWindow = 24 * time.Hour

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	transactor attendance.Transactor
	debouncer  debounce.Debouncer
	hub        *sse.Hub
	loc        *time.Location
	now        func() time.Time
}

func NewAttendanceService(
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	transactor attendance.Transactor,
	debouncer debounce.Debouncer,
	hub *sse.Hub,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		EmployeeRepository:   employeeRepository,
		transactor:           transactor,
		debouncer:            debouncer,
		hub:                  hub,
		loc:                  loc,
		now:                  time.Now,
	}
}

func summaryOf(e employee.Employee) *attendance.EmployeeSummary {
	return &attendance.EmployeeSummary{
		ID:       e.ID,
		EmpID:    e.EmpID,
		Name:     e.Name,
		Category: e.Category,
		ImageURL: e.ImageURL,
	}
}

// punchDay is the attendance date a new event is filed under, with the
// events already stored for it.
type punchDay struct {
	date   string
	events []attendance.Event
	status attendance.Status
}

func (s *AttendanceServiceImpl) loadDay(ctx context.Context, employeeID, date string) (punchDay, error) {
	events, err := s.AttendanceRepository.ListByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return punchDay{}, fmt.Errorf("failed to load attendance for %s: %w", date, err)
	}
	return punchDay{
		date:   date,
		events: events,
		status: attendance.ReduceDay(employeeID, date, events).Status(),
	}, nil
}

// resolveDay picks the date a punch at now belongs to. That is today, unless
// today has no events yet and the previous date holds a shift still open
// within openShiftWindow, which the punch then closes.
func (s *AttendanceServiceImpl) resolveDay(ctx context.Context, employeeID string, now time.Time) (punchDay, error) {
	today, err := s.loadDay(ctx, employeeID, now.Format(dateLayout))
	if err != nil || today.status != attendance.StatusAbsent {
		return today, err
	}

	prev, err := s.loadDay(ctx, employeeID, now.AddDate(0, 0, -1).Format(dateLayout))
	if err != nil {
		return punchDay{}, err
	}
	if prev.status != attendance.StatusPresent {
		return today, nil
	}
	rec := attendance.ReduceDay(employeeID, prev.date, prev.events)
	if !s.shiftStillOpen(rec, now) {
		return today, nil
	}
	return prev, nil
}

func (s *AttendanceServiceImpl) shiftStillOpen(rec attendance.DailyRecord, now time.Time) bool {
	clock, err := timecalc.ParseClock(*rec.CheckIn)
	if err != nil {
		return false
	}
	day, err := time.ParseInLocation(dateLayout, rec.Date, s.loc)
	if err != nil {
		return false
	}
	checkIn := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour, clock.Minute, clock.Second, 0, s.loc)
	elapsed := now.Sub(checkIn)
	return elapsed > 0 && elapsed < openShiftWindow
}

// Scan implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Scan(ctx context.Context, sess *session.Session, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ScanResponse{}, err
	}

	code, otp := req.BadgeCode()
	if !validator.IsValidEmployeeCode(code) {
		return attendance.ScanResponse{}, attendance.ErrInvalidScanCode
	}

	emp, err := s.EmployeeRepository.GetByEmpID(ctx, code)
	if err != nil {
		return attendance.ScanResponse{}, err
	}

	nowLocal := s.now().In(s.loc)

	if emp.HasBadgeOTP() && (otp == "" || !totp.Verify(otp, *emp.TOTPSecret, nowLocal)) {
		return attendance.ScanResponse{}, attendance.ErrInvalidBadgeToken
	}

	clock := nowLocal.Format("15:04:05")

	var (
		action   attendance.ScanAction
		record   attendance.DailyRecordResponse
		admitted bool
	)
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.AttendanceRepository.LockEmployee(txCtx, emp.ID); err != nil {
			return err
		}

		day, err := s.resolveDay(txCtx, emp.ID, nowLocal)
		if err != nil {
			return err
		}

		event := attendance.Event{
			EmployeeID: emp.ID,
			Date:       day.date,
			Source:     attendance.SourceScan,
			DeviceID:   &req.DeviceID,
		}
		switch day.status {
		case attendance.StatusAbsent:
			action = attendance.ActionCheckIn
			event.CheckIn = &clock
		case attendance.StatusPresent:
			action = attendance.ActionCheckOut
			event.CheckOut = &clock
		default:
			return attendance.ErrAlreadyCheckedOut
		}

		allowed, err := s.debouncer.Allow(txCtx, code, nowLocal)
		if err != nil {
			// A cooldown store outage must not stop people clocking in.
			slog.Warn("scan debounce unavailable, accepting scan", "emp_id", code, "error", err)
			allowed = true
		} else {
			admitted = allowed
		}
		if !allowed {
			return attendance.ErrDuplicateScan
		}

		record, err = s.record(txCtx, emp, day, event)
		return err
	})
	if err != nil {
		if admitted {
			if relErr := s.debouncer.Release(ctx, code); relErr != nil {
				slog.Warn("failed to release scan cooldown", "emp_id", code, "error", relErr)
			}
		}
		return attendance.ScanResponse{}, err
	}

	slog.Info("attendance scan accepted",
		"employee_id", emp.ID,
		"emp_id", emp.EmpID,
		"action", action,
		"date", record.Date,
		"device_id", req.DeviceID,
		"scanned_by", sessionUser(sess),
	)
	s.publish(action, record)

	return attendance.ScanResponse{Action: action, Time: clock, Record: record}, nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, sess *session.Session) (attendance.DailyRecordResponse, error) {
	return s.punch(ctx, sess, attendance.ActionCheckIn)
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, sess *session.Session) (attendance.DailyRecordResponse, error) {
	return s.punch(ctx, sess, attendance.ActionCheckOut)
}

func (s *AttendanceServiceImpl) punch(ctx context.Context, sess *session.Session, action attendance.ScanAction) (attendance.DailyRecordResponse, error) {
	emp, err := s.sessionEmployee(ctx, sess)
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	nowLocal := s.now().In(s.loc)
	clock := nowLocal.Format("15:04:05")

	var record attendance.DailyRecordResponse
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.AttendanceRepository.LockEmployee(txCtx, emp.ID); err != nil {
			return err
		}

		var day punchDay
		var err error
		event := attendance.Event{EmployeeID: emp.ID, Source: attendance.SourceSelf}

		switch action {
		case attendance.ActionCheckIn:
			// Check-in always opens today, even while yesterday's shift is open.
			if day, err = s.loadDay(txCtx, emp.ID, nowLocal.Format(dateLayout)); err != nil {
				return err
			}
			if day.status != attendance.StatusAbsent {
				return attendance.ErrAlreadyCheckedIn
			}
			event.CheckIn = &clock
		case attendance.ActionCheckOut:
			if day, err = s.resolveDay(txCtx, emp.ID, nowLocal); err != nil {
				return err
			}
			switch day.status {
			case attendance.StatusCompleted:
				return attendance.ErrAlreadyCheckedOut
			case attendance.StatusPresent:
				event.CheckOut = &clock
			default:
				return attendance.ErrNotCheckedIn
			}
		}

		event.Date = day.date
		record, err = s.record(txCtx, emp, day, event)
		return err
	})
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	slog.Info("attendance punch recorded", "employee_id", emp.ID, "action", action, "date", record.Date)
	s.publish(action, record)

	return record, nil
}

// record stores event and returns the day's record including it.
func (s *AttendanceServiceImpl) record(ctx context.Context, emp employee.Employee, day punchDay, event attendance.Event) (attendance.DailyRecordResponse, error) {
	created, err := s.AttendanceRepository.Create(ctx, event)
	if err != nil {
		return attendance.DailyRecordResponse{}, fmt.Errorf("failed to record attendance: %w", err)
	}

	rec := attendance.ReduceDay(emp.ID, day.date, append(day.events, created))
	return attendance.NewDailyRecordResponse(rec, summaryOf(emp)), nil
}

func (s *AttendanceServiceImpl) publish(action attendance.ScanAction, record attendance.DailyRecordResponse) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(sse.Event{
		Topic: attendance.FeedTopic,
		Event: string(action),
		Data:  attendance.FeedEvent{Action: action, Record: record},
	})
}

func (s *AttendanceServiceImpl) sessionEmployee(ctx context.Context, sess *session.Session) (employee.Employee, error) {
	if !sess.HasEmployee() {
		return employee.Employee{}, attendance.ErrNoEmployeeProfile
	}
	emp, err := s.EmployeeRepository.GetByID(ctx, *sess.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, attendance.ErrNoEmployeeProfile
		}
		return employee.Employee{}, err
	}
	return emp, nil
}

func sessionUser(sess *session.Session) string {
	if sess == nil {
		return ""
	}
	return sess.UserID
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, sess *session.Session, filter attendance.MonthFilter) (attendance.MyAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.MyAttendanceResponse{}, err
	}

	emp, err := s.sessionEmployee(ctx, sess)
	if err != nil {
		return attendance.MyAttendanceResponse{}, err
	}

	start, end := payroll.Period{Month: filter.Month, Year: filter.Year}.DateRange()
	events, err := s.AttendanceRepository.List(ctx, attendance.EventQuery{EmployeeID: &emp.ID, StartDate: start, EndDate: end})
	if err != nil {
		return attendance.MyAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	records := attendance.Reduce(events)
	summary := summaryOf(emp)

	resp := attendance.MyAttendanceResponse{
		Month:   filter.Month,
		Year:    filter.Year,
		Records: make([]attendance.DailyRecordResponse, 0, len(records)),
	}

	totalHours := decimal.Zero
	for _, rec := range records {
		if rec.CheckIn != nil {
			resp.PresentDays++
		}
		if h := rec.Hours(); h.Known() {
			totalHours = totalHours.Add(decimal.NewFromFloat(h.Value()).Round(2))
		}
		resp.Records = append(resp.Records, attendance.NewDailyRecordResponse(rec, summary))
	}
	resp.TotalHours = totalHours.StringFixed(2)

	return resp, nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, err := s.filteredRecords(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	total := len(records)
	from := (filter.Page - 1) * filter.Limit
	if from > total {
		from = total
	}
	to := from + filter.Limit
	if to > total {
		to = total
	}

	return attendance.ListAttendanceResponse{
		TotalCount: int64(total),
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Records:    records[from:to],
	}, nil
}

// ExportCSV implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportCSV(ctx context.Context, filter attendance.AttendanceFilter) ([]byte, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.filteredRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]attendance.ExportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, attendance.NewExportRow(r))
	}
	return export.CSV(rows)
}

// filteredRecords reduces the events matching filter and joins each record
// with its employee. Pagination is left to the caller.
func (s *AttendanceServiceImpl) filteredRecords(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.DailyRecordResponse, error) {
	query := attendance.EventQuery{EmployeeID: filter.EmployeeID}
	if filter.StartDate != nil {
		query.StartDate = *filter.StartDate
	}
	if filter.EndDate != nil {
		query.EndDate = *filter.EndDate
	}
	if filter.Date != nil && *filter.Date != "" {
		query.StartDate, query.EndDate = *filter.Date, *filter.Date
	}

	events, err := s.AttendanceRepository.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	employees, err := s.EmployeeRepository.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	byID := make(map[string]*attendance.EmployeeSummary, len(employees))
	for _, e := range employees {
		byID[e.ID] = summaryOf(e)
	}

	// For a single date every listed employee gets a row; an event with
	// neither time reduces to an absent record.
	if filter.Date != nil && *filter.Date != "" {
		for _, e := range employees {
			if filter.EmployeeID == nil || *filter.EmployeeID == "" || *filter.EmployeeID == e.ID {
				events = append(events, attendance.Event{EmployeeID: e.ID, Date: *filter.Date})
			}
		}
	}

	out := make([]attendance.DailyRecordResponse, 0)
	for _, rec := range attendance.Reduce(events) {
		if filter.Status != nil && *filter.Status != "" && string(rec.Status()) != *filter.Status {
			continue
		}
		out = append(out, attendance.NewDailyRecordResponse(rec, byID[rec.EmployeeID]))
	}
	return out, nil
}

// Subscribe implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Subscribe() (<-chan sse.Event, func()) {
	return s.hub.Subscribe(attendance.FeedTopic)
}
