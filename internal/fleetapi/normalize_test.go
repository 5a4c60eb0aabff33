package fleetapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-reports/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
	}{
		{name: "bare array", input: []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}}, want: 2},
		{name: "envelope", input: map[string]any{"count": float64(3), "results": []any{map[string]any{}, map[string]any{}, map[string]any{}}}, want: 3},
		{name: "nil", input: nil, want: 0},
		{name: "empty object", input: map[string]any{}, want: 0},
		{name: "number", input: float64(42), want: 0},
		{name: "string", input: "oops", want: 0},
		{name: "results not an array", input: map[string]any{"results": "nope"}, want: 0},
		{name: "non-object elements", input: []any{float64(1), nil, map[string]any{"id": "x"}}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			require.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []any{
		[]any{map[string]any{"status": "ACTIVE"}},
		map[string]any{"results": []any{map[string]any{"status": "ACTIVE"}, "bad"}},
		nil,
		map[string]any{},
		float64(7),
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeKeepsOrder(t *testing.T) {
	got := Normalize([]any{
		map[string]any{"id": "a"},
		map[string]any{"id": "b"},
		map[string]any{"id": "c"},
	})

	ids := make([]string, 0, len(got))
	for _, r := range got {
		id, _ := r.String("id")
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestNormalizeNonObjectBecomesEmptyRecord(t *testing.T) {
	got := Normalize([]any{"text"})
	require.Len(t, got, 1)
	assert.Equal(t, model.Record{}, got[0])
}

func TestDecodeList(t *testing.T) {
	assert.Len(t, DecodeList([]byte(`[{"id":1},{"id":2}]`)), 2)
	assert.Len(t, DecodeList([]byte(`{"count":1,"next":null,"results":[{"id":1}]}`)), 1)
	assert.Empty(t, DecodeList([]byte(`{"detail":"not found"}`)))
	assert.NotNil(t, DecodeList([]byte(`not json`)))
	assert.Empty(t, DecodeList(nil))
}

func TestDecodePage(t *testing.T) {
	records, next := DecodePage([]byte(`{"next":" /vehicles/?page=2 ","results":[{"id":1}]}`))
	assert.Len(t, records, 1)
	assert.Equal(t, "/vehicles/?page=2", next)

	records, next = DecodePage([]byte(`[{"id":1},{"id":2}]`))
	assert.Len(t, records, 2)
	assert.Empty(t, next)

	records, next = DecodePage([]byte(`{"next":null,"results":[]}`))
	assert.Empty(t, records)
	assert.Empty(t, next)

	records, next = DecodePage([]byte(`not json`))
	assert.Empty(t, records)
	assert.Empty(t, next)
}
