package analytics

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/nurpe/fleet-reports/internal/model"
)

const day = 24 * time.Hour

// Range is a symbolic reporting window. Days == 0 means unbounded.
type Range struct {
	Token model.ReportRange
	Days  int
}

var knownRanges = map[model.ReportRange]int{
	model.Range7Days:  7,
	model.Range30Days: 30,
	model.Range90Days: 90,
	model.RangeAll:    0,
}

// ParseRange resolves a range token. Unknown tokens resolve to all time.
func ParseRange(raw string) Range {
	token := model.ReportRange(strings.ToLower(strings.TrimSpace(raw)))
	days, ok := knownRanges[token]
	if !ok {
		return Range{Token: model.RangeAll}
	}
	return Range{Token: token, Days: days}
}

// IsKnownRange reports whether raw names one of the supported windows.
func IsKnownRange(raw string) bool {
	_, ok := knownRanges[model.ReportRange(strings.ToLower(strings.TrimSpace(raw)))]
	return ok
}

func (r Range) Bounded() bool {
	return r.Days > 0
}

// Since returns the inclusive lower bound of the window.
func (r Range) Since(now time.Time) time.Time {
	if !r.Bounded() {
		return time.Time{}
	}
	return now.Add(-time.Duration(r.Days) * day)
}

// Includes reports whether ts falls inside the window. ok is false when the
// timestamp could not be parsed.
func (r Range) Includes(now, ts time.Time, ok bool) bool {
	if !r.Bounded() {
		return true
	}
	if !ok {
		return false
	}
	return !ts.Before(r.Since(now))
}

// Predicate returns a record filter that reads the first present timestamp field.
func (r Range) Predicate(now time.Time, fields ...string) func(model.Record) bool {
	return func(record model.Record) bool {
		if !r.Bounded() {
			return true
		}
		ts, ok := RecordTime(record, fields...)
		return r.Includes(now, ts, ok)
	}
}

// FilterRecords keeps the records of collection inside the window. The input is not modified.
func FilterRecords(records []model.Record, collection model.Collection, r Range, now time.Time) []model.Record {
	keep := r.Predicate(now, collection.TimestampFields()...)
	filtered := make([]model.Record, 0, len(records))
	for _, record := range records {
		if keep(record) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// RecordTime parses the first present field of fields as a timestamp.
func RecordTime(record model.Record, fields ...string) (time.Time, bool) {
	value, ok := record.First(fields...)
	if !ok {
		return time.Time{}, false
	}
	return ParseTimestamp(value)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 strings and epoch milliseconds.
func ParseTimestamp(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64:
		return fromMillis(v)
	case int64:
		return time.UnixMilli(v).UTC(), true
	case int:
		return time.UnixMilli(int64(v)).UTC(), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromMillis(f)
	}
	return time.Time{}, false
}

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}
