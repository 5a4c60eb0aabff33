package analytics

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/nurpe/fleet-reports/internal/model"
)

const unknownKey = "unknown"

// Grouping describes one grouped field of a collection. Fallbacks are read
// when the primary field is absent.
type Grouping struct {
	Field     string
	Fallbacks []string
}

type collectionSpec struct {
	groupings   []Grouping
	weekdayFrom []string
}

var collectionSpecs = map[model.Collection]collectionSpec{
	model.CollectionVehicles: {
		groupings: []Grouping{{Field: "status"}},
	},
	model.CollectionShifts: {
		groupings:   []Grouping{{Field: "status"}},
		weekdayFrom: []string{"start_at"},
	},
	model.CollectionInspections: {
		groupings:   []Grouping{{Field: "status"}},
		weekdayFrom: []string{"created_at"},
	},
	model.CollectionTickets: {
		groupings: []Grouping{{Field: "status"}, {Field: "priority"}},
	},
	model.CollectionIssues: {
		groupings: []Grouping{{Field: "severity", Fallbacks: []string{"priority"}}, {Field: "status"}},
	},
	model.CollectionUsers: {
		groupings: []Grouping{{Field: "role"}},
	},
}

// Aggregate computes totals, grouped counts and weekday buckets for every
// collection in records. Weekdays are taken in loc.
func Aggregate(records map[model.Collection][]model.Record, loc *time.Location) model.Aggregates {
	if loc == nil {
		loc = time.UTC
	}
	out := make(model.Aggregates, len(model.Collections))
	for _, collection := range model.Collections {
		out[collection] = AggregateCollection(collection, records[collection], loc)
	}
	return out
}

func AggregateCollection(collection model.Collection, records []model.Record, loc *time.Location) model.CollectionAggregate {
	spec := collectionSpecs[collection]
	agg := model.CollectionAggregate{
		Total:  len(records),
		Groups: make(map[string][]model.GroupCount, len(spec.groupings)),
	}
	for _, g := range spec.groupings {
		agg.Groups[g.Field] = GroupBy(records, g.Field, g.Fallbacks...)
	}
	if len(spec.weekdayFrom) > 0 {
		agg.Weekdays = CountByWeekday(records, loc, spec.weekdayFrom...)
	}
	return agg
}

// GroupBy counts records by the lower-cased value of field, in order of first
// occurrence. Absent or empty values count as "unknown".
func GroupBy(records []model.Record, field string, fallbacks ...string) []model.GroupCount {
	index := make(map[string]int)
	groups := make([]model.GroupCount, 0)
	fields := append([]string{field}, fallbacks...)

	for _, record := range records {
		key := groupKey(record, fields)
		if i, ok := index[key]; ok {
			groups[i].Count++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, model.GroupCount{Key: key, Count: 1})
	}
	return groups
}

// CountByWeekday buckets records by short weekday name of the first present
// timestamp field. Records without a parseable timestamp are skipped.
func CountByWeekday(records []model.Record, loc *time.Location, fields ...string) []model.DayCount {
	if loc == nil {
		loc = time.UTC
	}
	index := make(map[string]int)
	days := make([]model.DayCount, 0)

	for _, record := range records {
		ts, ok := RecordTime(record, fields...)
		if !ok {
			continue
		}
		name := ts.In(loc).Weekday().String()[:3]
		if i, ok := index[name]; ok {
			days[i].Count++
			continue
		}
		index[name] = len(days)
		days = append(days, model.DayCount{Day: name, Count: 1})
	}
	return days
}

func groupKey(record model.Record, fields []string) string {
	for _, field := range fields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		key := normalizeKey(stringify(value))
		if key == "" {
			continue
		}
		return key
	}
	return unknownKey
}

// normalizeKey lowercases and joins words with "_", so "In Progress",
// "in-progress" and "IN_PROGRESS" share one group.
func normalizeKey(raw string) string {
	words := strings.FieldsFunc(strings.ToLower(raw), isKeySeparator)
	return strings.Join(words, "_")
}

func isKeySeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case map[string]any:
		// nested refs such as {"id": 3, "name": "admin"}
		for _, k := range []string{"name", "code", "id"} {
			if inner, ok := v[k]; ok && inner != nil {
				return stringify(inner)
			}
		}
		return ""
	}
	return fmt.Sprint(value)
}
