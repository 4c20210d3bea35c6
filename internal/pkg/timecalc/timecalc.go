// Package timecalc turns wall-clock check-in/check-out strings into worked hours.
package timecalc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel is rendered in place of hours that cannot be computed.
const Sentinel = "--"

const minutesPerDay = 24 * 60

var ErrInvalidClock = errors.New("invalid wall-clock time")

// Clock is a parsed time of day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock accepts HH:MM, HH:MM:SS and the dotted forms HH.MM, HH.MM.SS.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Clock{}, ErrInvalidClock
	}

	parts := strings.Split(strings.ReplaceAll(s, ".", ":"), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	fields := [3]int{}
	limits := [3]int{23, 59, 59}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		fields[i] = n
	}

	return Clock{Hour: fields[0], Minute: fields[1], Second: fields[2]}, nil
}

// Minutes returns minutes since midnight, fractional for seconds.
func (c Clock) Minutes() float64 {
	return float64(c.Hour*60+c.Minute) + float64(c.Second)/60
}

// String formats the clock as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Canonical rewrites any accepted form into HH:MM:SS.
func Canonical(s string) (string, bool) {
	c, err := ParseClock(s)
	if err != nil {
		return "", false
	}
	return c.String(), true
}

// CanonicalPtr canonicalizes an optional clock. Blank values become nil and
// unparsable values are returned unchanged.
func CanonicalPtr(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	if c, ok := Canonical(*s); ok {
		return &c
	}
	v := *s
	return &v
}

// Hours is an elapsed duration in hours, or unknown.
type Hours struct {
	value float64
	known bool
}

// Unknown is the not-computable value.
var Unknown = Hours{}

// Known reports whether the hours could be computed.
func (h Hours) Known() bool { return h.known }

// Value returns the hours rounded to two decimals, and 0 when unknown.
func (h Hours) Value() float64 {
	if !h.known {
		return 0
	}
	return math.Round(h.value*100) / 100
}

func (h Hours) String() string {
	if !h.known {
		return Sentinel
	}
	return strconv.FormatFloat(h.Value(), 'f', 2, 64)
}

// MarshalJSON renders hours the way the dashboards display them: "9.08" or "--".
func (h Hours) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(h.String())), nil
}

// CalculateHours returns the hours between checkIn and checkOut. A checkOut
// earlier than checkIn is treated as crossing midnight.
func CalculateHours(checkIn, checkOut *string) Hours {
	if checkIn == nil || checkOut == nil {
		return Unknown
	}

	start, err := ParseClock(*checkIn)
	if err != nil {
		return Unknown
	}
	end, err := ParseClock(*checkOut)
	if err != nil {
		return Unknown
	}

	return fromMinutes(end.Minutes() - start.Minutes())
}

func fromMinutes(diff float64) Hours {
	if diff < 0 {
		diff += minutesPerDay
	}

	hours := diff / 60
	if math.IsNaN(hours) || hours < 0 || hours > 24 {
		return Unknown
	}
	return Hours{value: hours, known: true}
}
