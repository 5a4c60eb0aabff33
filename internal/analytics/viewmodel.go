package analytics

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/nurpe/fleet-reports/internal/model"
)

var (
	openTicketStatuses = []string{"open", "in_progress"}
	openIssueStatuses  = []string{"open", "reported", "in_progress"}
)

// BuildDashboard shapes aggregates into the dashboard view model. It performs
// no I/O and does not modify its input.
func BuildDashboard(aggs model.Aggregates) model.DashboardReport {
	vehicles := aggs[model.CollectionVehicles]
	shifts := aggs[model.CollectionShifts]
	inspections := aggs[model.CollectionInspections]
	tickets := aggs[model.CollectionTickets]
	issues := aggs[model.CollectionIssues]
	users := aggs[model.CollectionUsers]

	passed := inspections.Count("status", "pass")

	return model.DashboardReport{
		Totals: model.Totals{
			Vehicles:    vehicles.Total,
			Shifts:      shifts.Total,
			Inspections: inspections.Total,
			Tickets:     tickets.Total,
			Issues:      issues.Total,
			Users:       users.Total,
		},
		Headline: model.Headline{
			ActiveVehicles:    vehicles.Count("status", "active"),
			ActiveShifts:      shifts.Count("status", "active"),
			PassedInspections: passed,
			OpenTickets:       sumCounts(tickets, "status", openTicketStatuses),
			OpenIssues:        sumCounts(issues, "status", openIssueStatuses),
			PassRate:          Percentage(passed, inspections.Total),
		},
		Charts: model.Charts{
			VehicleStatus:    chartPoints(vehicles.GroupsFor("status")),
			ShiftStatus:      chartPoints(shifts.GroupsFor("status")),
			InspectionStatus: chartPoints(inspections.GroupsFor("status")),
			TicketStatus:     chartPoints(tickets.GroupsFor("status")),
			TicketPriority:   chartPoints(tickets.GroupsFor("priority")),
			IssueSeverity:    chartPoints(issues.GroupsFor("severity")),
			UserRoles:        chartPoints(users.GroupsFor("role")),
			ShiftsByDay:      weekdayPoints(shifts.Weekdays),
			InspectionsByDay: weekdayPoints(inspections.Weekdays),
		},
	}
}

// BuildReport runs filter, aggregate and build for one fetch snapshot.
func BuildReport(records map[model.Collection][]model.Record, r Range, now time.Time, loc *time.Location) model.DashboardReport {
	filtered := make(map[model.Collection][]model.Record, len(records))
	for collection, items := range records {
		filtered[collection] = FilterRecords(items, collection, r, now)
	}
	report := BuildDashboard(Aggregate(filtered, loc))
	report.Range = r.Token
	report.GeneratedAt = now
	return report
}

// Label turns a grouping key into a display label: "in_progress" becomes "In Progress".
func Label(key string) string {
	words := strings.FieldsFunc(key, isKeySeparator)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func chartPoints(groups []model.GroupCount) []model.ChartPoint {
	points := make([]model.ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, model.ChartPoint{Category: Label(g.Key), Count: g.Count})
	}
	return points
}

func weekdayPoints(days []model.DayCount) []model.WeekdayPoint {
	points := make([]model.WeekdayPoint, 0, len(days))
	for _, d := range days {
		points = append(points, model.WeekdayPoint{Day: d.Day, Count: d.Count})
	}
	return points
}

func sumCounts(agg model.CollectionAggregate, field string, keys []string) int {
	total := 0
	for _, key := range keys {
		total += agg.Count(field, key)
	}
	return total
}
