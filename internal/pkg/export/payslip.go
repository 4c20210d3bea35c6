package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PayslipLine is one labelled amount on a payslip.
type PayslipLine struct {
	Label  string
	Amount string
}

// Payslip is everything printed on one employee's monthly payslip.
type Payslip struct {
	Company     string
	Period      string
	EmpID       string
	Name        string
	Category    string
	PresentDays int
	TotalHours  string
	DailyRate   string
	BasicSalary string
	Allowances  []PayslipLine
	Deductions  []PayslipLine

	// TotalEarnings is basic salary plus allowances.
	TotalEarnings string
	TotalDeduct   string
	NetSalary     string

	Notes       string
	GeneratedAt time.Time
}

// PayslipPDF renders p as a single A4 page.
func PayslipPDF(p Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", p.EmpID, p.Period), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, p.Company)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Payslip for %s", p.Period))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	for _, row := range [][2]string{
		{"Employee ID", p.EmpID},
		{"Name", p.Name},
		{"Category", p.Category},
		{"Present days", fmt.Sprintf("%d", p.PresentDays)},
		{"Total hours", p.TotalHours},
		{"Daily rate", p.DailyRate},
	} {
		pdf.Cell(60, 7, row[0])
		pdf.Cell(0, 7, row[1])
		pdf.Ln(7)
	}
	pdf.Ln(5)

	section := func(title string, lines []PayslipLine, total string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(120, 8, title, "B", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, "Amount", "B", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for _, l := range lines {
			pdf.CellFormat(120, 7, l.Label, "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, l.Amount, "", 1, "R", false, 0, "")
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(120, 7, "Total "+title, "T", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, total, "T", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	section("Earnings", append([]PayslipLine{{Label: "Basic salary", Amount: p.BasicSalary}}, p.Allowances...), p.TotalEarnings)
	section("Deductions", p.Deductions, p.TotalDeduct)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(120, 10, "Net salary", "TB", 0, "L", false, 0, "")
	pdf.CellFormat(50, 10, p.NetSalary, "TB", 1, "R", false, 0, "")

	if p.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 6, "Notes: "+p.Notes, "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 10, fmt.Sprintf("Generated on %s", p.GeneratedAt.Format("02 January 2006 15:04:05")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}
