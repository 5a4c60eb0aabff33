package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-reports/internal/fleetapi"
)

// memoryBackend is a tiny in-memory stand-in for the fleet REST API.
type memoryBackend struct {
	mu       sync.Mutex
	nextID   int
	items    map[string]map[string]map[string]any
	failOn   string
	methods  []string
	replaced []map[string]any
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{items: map[string]map[string]map[string]any{}}
}

func (b *memoryBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	resource := parts[0]
	b.methods = append(b.methods, r.Method+" "+r.URL.Path)

	if r.Header.Get("Authorization") != "Bearer smoke-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if b.failOn == r.Method+" "+resource {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"rejected"}`))
		return
	}
	if b.items[resource] == nil {
		b.items[resource] = map[string]map[string]any{}
	}

	switch {
	case r.Method == http.MethodPost && len(parts) == 1:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.nextID++
		body["id"] = float64(b.nextID)
		b.items[resource][fmt.Sprint(b.nextID)] = body
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodGet && len(parts) == 1:
		list := make([]map[string]any, 0)
		for _, item := range b.items[resource] {
			list = append(list, item)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"count": len(list), "results": list})
	case r.Method == http.MethodPatch && len(parts) == 2:
		item, ok := b.items[resource][parts[1]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var patch map[string]any
		_ = json.NewDecoder(r.Body).Decode(&patch)
		for k, v := range patch {
			item[k] = v
		}
		_ = json.NewEncoder(w).Encode(item)
	case r.Method == http.MethodPut && len(parts) == 2:
		if _, ok := b.items[resource][parts[1]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		id, _ := strconv.Atoi(parts[1])
		body["id"] = float64(id)
		b.items[resource][parts[1]] = body
		b.replaced = append(b.replaced, body)
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodDelete && len(parts) == 2:
		delete(b.items[resource], parts[1])
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newRunner(t *testing.T, backend *memoryBackend) *Runner {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	client := fleetapi.NewClient(server.URL, time.Second).WithToken("smoke-token")
	return NewRunner(client, zerolog.Nop())
}

func TestRunCRUDHappyPath(t *testing.T) {
	backend := newMemoryBackend()
	results := newRunner(t, backend).RunCRUD(context.Background())

	require.True(t, results.OK(), "%+v", results.Steps)
	// five flows with create, list, update, one vehicle replace, five deletes
	assert.Len(t, results.Steps, 21)
	for resource, items := range backend.items {
		assert.Empty(t, items, resource)
	}
	assert.Equal(t, "DELETE /vehicles/1/", backend.methods[len(backend.methods)-1])
	assert.Contains(t, backend.methods, "PUT /vehicles/1/")
	require.Len(t, backend.replaced, 1)
	assert.Equal(t, float64(1350), backend.replaced[0]["mileage"])
	assert.Equal(t, "Volvo", backend.replaced[0]["make"])
}

func TestRunCRUDSkipsDependentFlows(t *testing.T) {
	backend := newMemoryBackend()
	backend.failOn = "POST issues"

	results := newRunner(t, backend).RunCRUD(context.Background())

	assert.False(t, results.OK())
	assert.Equal(t, 1, results.Failed())

	flows := map[string]bool{}
	for _, s := range results.Steps {
		flows[s.Flow] = true
	}
	assert.True(t, flows["shift"])
	assert.True(t, flows["inspection"])
	assert.False(t, flows["ticket"])
}

func TestResultsAreIndependent(t *testing.T) {
	backend := newMemoryBackend()
	runner := newRunner(t, backend)

	first := runner.RunCRUD(context.Background())
	second := runner.RunCRUD(context.Background())

	assert.Len(t, first.Steps, 21)
	assert.Len(t, second.Steps, 21)
}

func TestResultsRecord(t *testing.T) {
	var r Results
	r.Record("vehicle", "create", time.Now(), nil)
	r.Record("vehicle", "list", time.Now(), fmt.Errorf("boom"))

	assert.Equal(t, 1, r.Passed())
	assert.Equal(t, 1, r.Failed())
	assert.Equal(t, "boom", r.Steps[1].Error)
	assert.False(t, r.OK())
}
