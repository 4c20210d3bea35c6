package attendance

import (
	"context"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/session"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/sse"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Scan records a badge scan from a kiosk: check-in if the employee has no
	// record today, check-out if the record is still open.
	Scan(ctx context.Context, sess *session.Session, req ScanRequest) (ScanResponse, error)

	// CheckIn and CheckOut are the self-service equivalents for the session's employee
	CheckIn(ctx context.Context, sess *session.Session) (DailyRecordResponse, error)
	CheckOut(ctx context.Context, sess *session.Session) (DailyRecordResponse, error)

	// GetMyAttendance returns the session employee's records for one month
	GetMyAttendance(ctx context.Context, sess *session.Session, filter MonthFilter) (MyAttendanceResponse, error)

	// ListAttendance returns reduced records for every employee (seller dashboard)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ExportCSV renders every record matching the filter, ignoring pagination
	ExportCSV(ctx context.Context, filter AttendanceFilter) ([]byte, error)

	// Subscribe streams accepted scans until cancel is called
	Subscribe() (feed <-chan sse.Event, cancel func())
}

// FeedTopic is the hub topic dashboards subscribe to.
const FeedTopic = "attendance"

// FeedEvent is the payload pushed to live dashboards after every accepted
// scan or punch.
type FeedEvent struct {
	Action ScanAction          `json:"action"`
	Record DailyRecordResponse `json:"record"`
}
