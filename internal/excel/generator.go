package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/fleet-reports/internal/model"
)

const summarySheet = "Summary"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

type chartSection struct {
	title  string
	header string
	points []model.ChartPoint
}

func (g *Generator) Generate(report model.DashboardReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, summarySheet, report)

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, section := range chartSections(report) {
		sheetName := buildSheetName(section.title, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		g.writeChart(file, sheetName, section)
	}

	weekdays := []struct {
		title  string
		points []model.WeekdayPoint
	}{
		{title: "Shifts by day", points: report.Charts.ShiftsByDay},
		{title: "Inspections by day", points: report.Charts.InspectionsByDay},
	}
	for _, w := range weekdays {
		sheetName := buildSheetName(w.title, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		g.writeWeekdays(file, sheetName, w.points)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.DashboardReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Range")
	set("B1", string(report.Range))
	set("A2", "Generated at")
	set("B2", formatDateTime(report.GeneratedAt))

	rows := []struct {
		label string
		value int
	}{
		{"Vehicles", report.Totals.Vehicles},
		{"Shifts", report.Totals.Shifts},
		{"Inspections", report.Totals.Inspections},
		{"Tickets", report.Totals.Tickets},
		{"Issues", report.Totals.Issues},
		{"Users", report.Totals.Users},
		{"Active vehicles", report.Headline.ActiveVehicles},
		{"Active shifts", report.Headline.ActiveShifts},
		{"Passed inspections", report.Headline.PassedInspections},
		{"Open tickets", report.Headline.OpenTickets},
		{"Open issues", report.Headline.OpenIssues},
		{"Pass rate, %", report.Headline.PassRate},
	}

	tableRow := 4
	set(fmt.Sprintf("A%d", tableRow), "Metric")
	set(fmt.Sprintf("B%d", tableRow), "Value")
	for i, r := range rows {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), r.label)
		set(fmt.Sprintf("B%d", row), r.value)
	}

	if len(report.Failures) > 0 {
		row := tableRow + len(rows) + 2
		set(fmt.Sprintf("A%d", row), "Failed collections")
		for _, c := range model.Collections {
			reason, ok := report.Failures[string(c)]
			if !ok {
				continue
			}
			row++
			set(fmt.Sprintf("A%d", row), c.Label())
			set(fmt.Sprintf("B%d", row), reason)
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 24)
}

func (g *Generator) writeChart(file *excelize.File, sheet string, section chartSection) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", section.header)
	set("B1", "Count")
	for i, point := range section.points {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), point.Category)
		set(fmt.Sprintf("B%d", row), point.Count)
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 12)
}

func (g *Generator) writeWeekdays(file *excelize.File, sheet string, points []model.WeekdayPoint) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Day")
	set("B1", "Count")
	for i, point := range points {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), point.Day)
		set(fmt.Sprintf("B%d", row), point.Count)
	}
}

func chartSections(report model.DashboardReport) []chartSection {
	return []chartSection{
		{title: "Vehicle status", header: "Status", points: report.Charts.VehicleStatus},
		{title: "Shift status", header: "Status", points: report.Charts.ShiftStatus},
		{title: "Inspection status", header: "Status", points: report.Charts.InspectionStatus},
		{title: "Ticket status", header: "Status", points: report.Charts.TicketStatus},
		{title: "Ticket priority", header: "Priority", points: report.Charts.TicketPriority},
		{title: "Issue severity", header: "Severity", points: report.Charts.IssueSeverity},
		{title: "User roles", header: "Role", points: report.Charts.UserRoles},
	}
}

func buildSheetName(title string, used map[string]struct{}) string {
	base := sanitizeSheetName(title)
	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Sheet"
	}
	return value
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
