// Package export renders derived attendance and payroll data into the file
// formats the back office downloads.
package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// CSV marshals a slice of structs tagged with `csv:"..."` into CSV text with
// a header row.
func CSV(rows interface{}) ([]byte, error) {
	out, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return out, nil
}
