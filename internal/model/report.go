package model

import "time"

type ReportRange string

const (
	Range7Days  ReportRange = "7d"
	Range30Days ReportRange = "30d"
	Range90Days ReportRange = "90d"
	RangeAll    ReportRange = "all"
)

type GroupCount struct {
	Key   string
	Count int
}

type DayCount struct {
	Day   string
	Count int
}

// CollectionAggregate holds the counts computed for one collection.
type CollectionAggregate struct {
	Total    int
	Groups   map[string][]GroupCount
	Weekdays []DayCount
}

// GroupsFor returns the ordered counts for field, or nil when the field was not grouped.
func (a CollectionAggregate) GroupsFor(field string) []GroupCount {
	if a.Groups == nil {
		return nil
	}
	return a.Groups[field]
}

// Count returns the count stored for key under field.
func (a CollectionAggregate) Count(field, key string) int {
	for _, g := range a.GroupsFor(field) {
		if g.Key == key {
			return g.Count
		}
	}
	return 0
}

type Aggregates map[Collection]CollectionAggregate

type ChartPoint struct {
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

type WeekdayPoint struct {
	Day   string `json:"day" yaml:"day"`
	Count int    `json:"count" yaml:"count"`
}

type Totals struct {
	Vehicles    int `json:"vehicles" yaml:"vehicles"`
	Shifts      int `json:"shifts" yaml:"shifts"`
	Inspections int `json:"inspections" yaml:"inspections"`
	Tickets     int `json:"tickets" yaml:"tickets"`
	Issues      int `json:"issues" yaml:"issues"`
	Users       int `json:"users" yaml:"users"`
}

type Headline struct {
	ActiveVehicles    int `json:"active_vehicles" yaml:"active_vehicles"`
	ActiveShifts      int `json:"active_shifts" yaml:"active_shifts"`
	PassedInspections int `json:"passed_inspections" yaml:"passed_inspections"`
	OpenTickets       int `json:"open_tickets" yaml:"open_tickets"`
	OpenIssues        int `json:"open_issues" yaml:"open_issues"`
	PassRate          int `json:"pass_rate" yaml:"pass_rate"`
}

type Charts struct {
	VehicleStatus    []ChartPoint   `json:"vehicle_status" yaml:"vehicle_status"`
	ShiftStatus      []ChartPoint   `json:"shift_status" yaml:"shift_status"`
	InspectionStatus []ChartPoint   `json:"inspection_status" yaml:"inspection_status"`
	TicketStatus     []ChartPoint   `json:"ticket_status" yaml:"ticket_status"`
	TicketPriority   []ChartPoint   `json:"ticket_priority" yaml:"ticket_priority"`
	IssueSeverity    []ChartPoint   `json:"issue_severity" yaml:"issue_severity"`
	UserRoles        []ChartPoint   `json:"user_roles" yaml:"user_roles"`
	ShiftsByDay      []WeekdayPoint `json:"shifts_by_day" yaml:"shifts_by_day"`
	InspectionsByDay []WeekdayPoint `json:"inspections_by_day" yaml:"inspections_by_day"`
}

// DashboardReport is the rendering-ready view of the platform dashboard.
type DashboardReport struct {
	Range       ReportRange       `json:"range" yaml:"range"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	Totals      Totals            `json:"totals" yaml:"totals"`
	Headline    Headline          `json:"headline" yaml:"headline"`
	Charts      Charts            `json:"charts" yaml:"charts"`
	Failures    map[string]string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// AllFailed reports whether no collection could be loaded.
func (r DashboardReport) AllFailed() bool {
	return len(r.Failures) == len(Collections)
}

type UsageLine struct {
	Used    int  `json:"used" yaml:"used"`
	Limit   int  `json:"limit" yaml:"limit"`
	Percent int  `json:"percent" yaml:"percent"`
	Limited bool `json:"limited" yaml:"limited"`
}

type SubscriptionUsage struct {
	Plan          string    `json:"plan" yaml:"plan"`
	Status        string    `json:"status" yaml:"status"`
	BillingCycle  string    `json:"billing_cycle" yaml:"billing_cycle"`
	Vehicles      UsageLine `json:"vehicles" yaml:"vehicles"`
	Users         UsageLine `json:"users" yaml:"users"`
	OnTrial       bool      `json:"on_trial" yaml:"on_trial"`
	TrialDaysLeft int       `json:"trial_days_left" yaml:"trial_days_left"`
}
