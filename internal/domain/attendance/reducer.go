package attendance

import (
	"sort"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/timecalc"
)

type dayKey struct {
	employeeID string
	date       string
}

// Reduce collapses events into one DailyRecord per (employee, date), keeping
// the earliest check-in and the latest check-out so a repeated scan never
// shrinks the recorded interval. Records are sorted by date descending, then
// by employee id ascending; the result does not depend on input order.
func Reduce(events []Event) []DailyRecord {
	byDay := make(map[dayKey]*DailyRecord, len(events))

	for _, ev := range events {
		key := dayKey{employeeID: ev.EmployeeID, date: ev.Date}
		rec, ok := byDay[key]
		if !ok {
			rec = &DailyRecord{EmployeeID: ev.EmployeeID, Date: ev.Date}
			byDay[key] = rec
		}

		// HH:MM:SS strings order correctly once canonical.
		if in := timecalc.CanonicalPtr(ev.CheckIn); in != nil {
			if rec.CheckIn == nil || *in < *rec.CheckIn {
				rec.CheckIn = in
			}
		}
		if out := timecalc.CanonicalPtr(ev.CheckOut); out != nil {
			if rec.CheckOut == nil || *out > *rec.CheckOut {
				rec.CheckOut = out
			}
		}
	}

	records := make([]DailyRecord, 0, len(byDay))
	for _, rec := range byDay {
		records = append(records, *rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].EmployeeID < records[j].EmployeeID
	})

	return records
}

// ReduceDay reduces the events of one employee on one date. The zero record
// (absent) is returned when there are none.
func ReduceDay(employeeID, date string, events []Event) DailyRecord {
	for _, rec := range Reduce(events) {
		if rec.EmployeeID == employeeID && rec.Date == date {
			return rec
		}
	}
	return DailyRecord{EmployeeID: employeeID, Date: date}
}

// Hours returns the worked hours for the record, or timecalc.Unknown.
func (r DailyRecord) Hours() timecalc.Hours {
	return timecalc.CalculateHours(r.CheckIn, r.CheckOut)
}
