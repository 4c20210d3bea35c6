package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")

	// Scan errors
	ErrDuplicateScan     = errors.New("this badge was scanned moments ago")
	ErrInvalidScanCode   = errors.New("scan payload is not a valid badge code")
	ErrInvalidBadgeToken = errors.New("badge one-time code is invalid or expired")

	// General errors
	ErrNoEmployeeProfile = errors.New("current user has no employee profile")
)
