package model

import "strings"

// Record is one backend list item as decoded from JSON.
type Record map[string]any

// String returns the field as a string when it holds one.
func (r Record) String(field string) (string, bool) {
	value, ok := r[field]
	if !ok || value == nil {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// First returns the first field from fields that is present and non-null.
func (r Record) First(fields ...string) (any, bool) {
	for _, field := range fields {
		if value, ok := r[field]; ok && value != nil {
			if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return value, true
		}
	}
	return nil, false
}

type Collection string

const (
	CollectionVehicles    Collection = "vehicles"
	CollectionShifts      Collection = "shifts"
	CollectionInspections Collection = "inspections"
	CollectionTickets     Collection = "tickets"
	CollectionIssues      Collection = "issues"
	CollectionUsers       Collection = "users"
)

// Collections lists every aggregated collection in fetch order.
var Collections = []Collection{
	CollectionVehicles,
	CollectionShifts,
	CollectionInspections,
	CollectionTickets,
	CollectionIssues,
	CollectionUsers,
}

func ParseCollection(raw string) (Collection, bool) {
	normalized := Collection(strings.ToLower(strings.TrimSpace(raw)))
	for _, c := range Collections {
		if c == normalized {
			return c, true
		}
	}
	return "", false
}

// Label is the human readable collection name.
func (c Collection) Label() string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// TimestampFields are the record fields used for date filtering, in lookup order.
func (c Collection) TimestampFields() []string {
	switch c {
	case CollectionShifts:
		return []string{"start_at", "created_at"}
	case CollectionInspections:
		return []string{"created_at", "started_at"}
	case CollectionIssues:
		return []string{"created_at", "reported_at"}
	case CollectionUsers:
		return []string{"date_joined", "created_at"}
	default:
		return []string{"created_at"}
	}
}
