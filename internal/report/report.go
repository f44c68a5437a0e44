// Package report renders the printable monthly timesheet.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/Tiliavir/arbeitszeit/internal/stats"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

// Timesheet is everything a monthly report shows.
type Timesheet struct {
	Company     string
	Employee    string
	MonthKey    string
	WeeklyHours float64
	Rows        []stats.Row
	Summary     stats.Summary
}

// FileName returns "Arbeitszeitnachweis_<employee>_<YYYY-MM>.pdf".
func FileName(employee, monthKey string) string {
	return "Arbeitszeitnachweis_" + employee + "_" + monthKey + ".pdf"
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Tag", 12, "C"},
	{"Datum", 24, "C"},
	{"Kommen", 20, "C"},
	{"Gehen", 20, "C"},
	{"Pause", 18, "C"},
	{"Arbeitszeit", 24, "C"},
	{"Bemerkung", 62, "L"},
}

// WritePDF renders ts as a single A4 page and writes it to w.
func WritePDF(w io.Writer, ts Timesheet) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 7, tr(ts.Company), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, tr("Arbeitszeitnachweis – "+timecalc.FormatMonthYear(ts.MonthKey)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	meta := fmt.Sprintf("Mitarbeiter: %s    Soll-Stunden/Woche: %sh", ts.Employee, formatHours(ts.WeeklyHours))
	pdf.CellFormat(0, 5, tr(meta), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	writeSummary(pdf, tr, ts.Summary)
	pdf.Ln(3)
	writeTable(pdf, tr, ts.Rows)
	writeSignatures(pdf, tr)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func writeSummary(pdf *gofpdf.Fpdf, tr func(string) string, s stats.Summary) {
	boxes := []struct{ label, value string }{
		{"Arbeitstage", strconv.Itoa(s.WorkedDays)},
		{"Ist-Stunden", timecalc.FormatDuration(s.WorkedMinutes)},
		{"Soll-Stunden", timecalc.FormatDuration(s.TargetMinutes)},
		{"Differenz", timecalc.FormatDuration(s.DiffMinutes)},
		{"Krankheit", fmt.Sprintf("%d Tage", s.SickDays)},
		{"Urlaub", fmt.Sprintf("%d Tage", s.VacationDays)},
	}
	width := 186.0 / float64(len(boxes))
	x, y := pdf.GetXY()

	pdf.SetFillColor(240, 240, 240)
	for i, b := range boxes {
		pdf.SetXY(x+float64(i)*width, y)
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(width, 4, tr(b.label), "LTR", 2, "C", true, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		if b.label == "Differenz" && s.DiffMinutes < 0 {
			pdf.SetTextColor(180, 0, 0)
		}
		pdf.CellFormat(width, 6, tr(b.value), "LBR", 0, "C", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.SetXY(x, y+10)
}

func writeTable(pdf *gofpdf.Fpdf, tr func(string) string, rows []stats.Row) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(220, 220, 220)
	for _, c := range columns {
		pdf.CellFormat(c.width, 6, tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, r := range rows {
		shaded := r.Weekend || r.Holiday != ""
		pdf.SetFillColor(245, 245, 245)
		worked := ""
		if r.WorkedMinutes > 0 {
			worked = timecalc.FormatDuration(r.WorkedMinutes)
		}
		cells := []string{
			r.Weekday,
			timecalc.FormatDateShort(r.Date),
			r.Start,
			r.End,
			r.Break,
			worked,
			r.Note,
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 5, tr(cells[i]), "1", 0, c.align, shaded, 0, "")
		}
		pdf.Ln(-1)
	}
}

func writeSignatures(pdf *gofpdf.Fpdf, tr func(string) string) {
	_, pageHeight := pdf.GetPageSize()
	y := pageHeight - 25
	if cur := pdf.GetY() + 12; cur > y {
		y = cur
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(12, y, 82, y)
	pdf.Line(128, y, 198, y)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(12, y+1)
	pdf.CellFormat(70, 4, tr("Datum, Unterschrift Mitarbeiter"), "", 0, "L", false, 0, "")
	pdf.SetXY(128, y+1)
	pdf.CellFormat(70, 4, tr("Datum, Unterschrift Arbeitgeber"), "", 0, "L", false, 0, "")
}

// formatHours renders weekly hours without a trailing ".0" and with a
// German decimal comma ("38,5").
func formatHours(h float64) string {
	return strings.Replace(strconv.FormatFloat(h, 'f', -1, 64), ".", ",", 1)
}
