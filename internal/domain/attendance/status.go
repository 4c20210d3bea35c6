package attendance

type Status string

const (
	StatusAbsent    Status = "absent"
	StatusPresent   Status = "present"   // clocked in, not yet out
	StatusCompleted Status = "completed" // clocked in and out
	StatusUnknown   Status = "unknown"   // check-out without check-in
)

// Classify maps the presence of check-in/check-out times to a status.
func Classify(checkIn, checkOut *string) Status {
	switch {
	case checkIn == nil && checkOut == nil:
		return StatusAbsent
	case checkIn != nil && checkOut == nil:
		return StatusPresent
	case checkIn != nil && checkOut != nil:
		return StatusCompleted
	default:
		return StatusUnknown
	}
}

// IsValidStatus reports whether s names a status a client may filter on.
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusAbsent, StatusPresent, StatusCompleted, StatusUnknown:
		return true
	}
	return false
}
