package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/fleet-reports/internal/model"
)

type Generator struct {
	fontName string
	fontData []byte
}

// NewGenerator renders with the Helvetica core font. Text outside cp1252 is
// not representable; use NewUTF8Generator for such data.
func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// NewUTF8Generator embeds the given TrueType font so that any category name
// renders as-is.
func NewUTF8Generator(fontData []byte) (*Generator, error) {
	if len(fontData) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	return &Generator{fontName: "Embedded", fontData: fontData}, nil
}

func (g *Generator) Generate(report model.DashboardReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Fleet dashboard", false)
	pdf.AddPage()

	tr := func(s string) string { return s }
	if len(g.fontData) > 0 {
		pdf.AddUTF8FontFromBytes(g.fontName, "", g.fontData)
		pdf.AddUTF8FontFromBytes(g.fontName, "B", g.fontData)
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Fleet dashboard", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Range: %s    Generated: %s", safeValue(string(report.Range)), formatDateTime(report.GeneratedAt)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, g.fontName, "Totals")
	colWidths := []float64{90, 40}
	drawTableRow(pdf, g.fontName, []string{"Metric", "Value"}, colWidths, true)
	for _, row := range [][2]string{
		{"Vehicles", itoa(report.Totals.Vehicles)},
		{"Shifts", itoa(report.Totals.Shifts)},
		{"Inspections", itoa(report.Totals.Inspections)},
		{"Tickets", itoa(report.Totals.Tickets)},
		{"Issues", itoa(report.Totals.Issues)},
		{"Users", itoa(report.Totals.Users)},
		{"Active vehicles", itoa(report.Headline.ActiveVehicles)},
		{"Active shifts", itoa(report.Headline.ActiveShifts)},
		{"Passed inspections", itoa(report.Headline.PassedInspections)},
		{"Open tickets", itoa(report.Headline.OpenTickets)},
		{"Open issues", itoa(report.Headline.OpenIssues)},
		{"Inspection pass rate", fmt.Sprintf("%d%%", report.Headline.PassRate)},
	} {
		drawTableRow(pdf, g.fontName, []string{row[0], row[1]}, colWidths, false)
	}
	pdf.Ln(4)

	charts := []struct {
		title  string
		points []model.ChartPoint
	}{
		{"Vehicle status", report.Charts.VehicleStatus},
		{"Shift status", report.Charts.ShiftStatus},
		{"Inspection status", report.Charts.InspectionStatus},
		{"Ticket status", report.Charts.TicketStatus},
		{"Ticket priority", report.Charts.TicketPriority},
		{"Issue severity", report.Charts.IssueSeverity},
		{"User roles", report.Charts.UserRoles},
	}
	for _, chart := range charts {
		if len(chart.points) == 0 {
			continue
		}
		section(pdf, g.fontName, chart.title)
		for _, p := range chart.points {
			drawTableRow(pdf, g.fontName, []string{tr(p.Category), itoa(p.Count)}, colWidths, false)
		}
		pdf.Ln(2)
	}

	for _, series := range []struct {
		title  string
		points []model.WeekdayPoint
	}{
		{"Shifts by day", report.Charts.ShiftsByDay},
		{"Inspections by day", report.Charts.InspectionsByDay},
	} {
		if len(series.points) == 0 {
			continue
		}
		section(pdf, g.fontName, series.title)
		for _, p := range series.points {
			drawTableRow(pdf, g.fontName, []string{p.Day, itoa(p.Count)}, colWidths, false)
		}
		pdf.Ln(2)
	}

	if len(report.Failures) > 0 {
		pdf.SetTextColor(200, 0, 0)
		section(pdf, g.fontName, "Failed collections")
		pdf.SetFont(g.fontName, "", 9)
		for _, c := range model.Collections {
			if reason, ok := report.Failures[string(c)]; ok {
				pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s: %s", c.Label(), reason)), "", "L", false)
			}
		}
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func itoa(v int) string {
	return fmt.Sprintf("%d", v)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("02.01.2006 15:04 UTC")
}
