package fleetapi

import (
	"encoding/json"
	"strings"

	"github.com/nurpe/fleet-reports/internal/model"
)

// Normalize turns a decoded list response into a sequence of records.
// Bare arrays and {"results": [...]} envelopes are accepted; any other shape
// yields an empty sequence.
func Normalize(value any) []model.Record {
	switch v := value.(type) {
	case []model.Record:
		return v
	case []any:
		records := make([]model.Record, 0, len(v))
		for _, item := range v {
			records = append(records, toRecord(item))
		}
		return records
	case []map[string]any:
		records := make([]model.Record, 0, len(v))
		for _, item := range v {
			records = append(records, model.Record(item))
		}
		return records
	case map[string]any:
		if results, ok := v["results"]; ok {
			switch results.(type) {
			case []any, []map[string]any, []model.Record:
				return Normalize(results)
			}
		}
	case model.Record:
		return Normalize(map[string]any(v))
	}
	return []model.Record{}
}

// DecodeList decodes a raw response body and normalizes it. Malformed JSON
// yields an empty sequence.
func DecodeList(body []byte) []model.Record {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return []model.Record{}
	}
	return Normalize(value)
}

// DecodePage is DecodeList plus the envelope's "next" link, empty when the
// body is a bare array or the last page.
func DecodePage(body []byte) ([]model.Record, string) {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return []model.Record{}, ""
	}
	next := ""
	if envelope, ok := value.(map[string]any); ok {
		if link, ok := envelope["next"].(string); ok {
			next = strings.TrimSpace(link)
		}
	}
	return Normalize(value), next
}

func toRecord(item any) model.Record {
	switch v := item.(type) {
	case map[string]any:
		return model.Record(v)
	case model.Record:
		return v
	}
	return model.Record{}
}
