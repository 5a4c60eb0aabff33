package fleetapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-reports/internal/model"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"results":[{"id":"v1","status":"ACTIVE"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/", time.Second).WithToken("secret-token")
	records, err := client.List(context.Background(), "vehicles", nil)

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "/api/vehicles/", gotPath)
	require.Len(t, records, 1)
	assert.Equal(t, "ACTIVE", records[0]["status"])
}

func TestClientWithoutTokenSendsNoHeader(t *testing.T) {
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).List(context.Background(), "users", nil)
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestClientCRUD(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []call

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &c.body)
		}
		calls = append(calls, c)

		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"v1","registration":"KZ 001"}`))
		default:
			_, _ = w.Write([]byte(`{"id":"v1","status":"MAINTENANCE"}`))
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL, time.Second).WithToken("t")

	created, err := client.Create(ctx, "vehicles", model.VehicleForm{Registration: "KZ 001", Make: "Volvo", Model: "FH"})
	require.NoError(t, err)
	assert.Equal(t, "v1", created["id"])

	updated, err := client.Update(ctx, "vehicles", "v1", map[string]any{"status": "MAINTENANCE"})
	require.NoError(t, err)
	assert.Equal(t, "MAINTENANCE", updated["status"])

	_, err = client.Get(ctx, "vehicles", "v1")
	require.NoError(t, err)

	require.NoError(t, client.Delete(ctx, "vehicles", "v1"))

	require.Len(t, calls, 4)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/vehicles/", calls[0].path)
	assert.Equal(t, "KZ 001", calls[0].body["registration"])
	assert.Equal(t, http.MethodPatch, calls[1].method)
	assert.Equal(t, "/vehicles/v1/", calls[1].path)
	assert.Equal(t, http.MethodGet, calls[2].method)
	assert.Equal(t, http.MethodDelete, calls[3].method)
	assert.Equal(t, "/vehicles/v1/", calls[3].path)
}

func TestClientReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Get(context.Background(), "tickets", "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Body, "Not found")
	assert.True(t, IsNotFound(err))
}

func TestClientCurrentSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions/current/", r.URL.Path)
		_, _ = w.Write([]byte(`{"plan":"pro","vehicle_limit":25}`))
	}))
	defer server.Close()

	sub, err := NewClient(server.URL, time.Second).CurrentSubscription(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pro", sub["plan"])
}

func TestClientListFollowsNextLinks(t *testing.T) {
	var server *httptest.Server
	var pages []string
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.RequestURI())
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(`{"count":3,"next":"` + server.URL + `/api/vehicles/?page=2","results":[{"id":"v1"},{"id":"v2"}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"count":3,"next":"/api/vehicles/?page=3","results":[{"id":"v3"}]}`))
		default:
			_, _ = w.Write([]byte(`{"count":3,"next":null,"results":[]}`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api", time.Second, WithHTTPClient(server.Client())).WithToken("tok")
	records, err := client.List(context.Background(), "vehicles", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"/api/vehicles/", "/api/vehicles/?page=2", "/api/vehicles/?page=3"}, pages)
	require.Len(t, records, 3)
	assert.Equal(t, "v3", records[2]["id"])
	assert.Equal(t, server.URL+"/api", client.BaseURL())
}

func TestClientListRejectsForeignNextLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"next":"https://elsewhere.example.com/vehicles/?page=2","results":[{"id":"v1"}]}`))
	}))
	defer server.Close()

	records, err := NewClient(server.URL, time.Second).WithToken("tok").List(context.Background(), "vehicles", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "elsewhere.example.com")
	assert.Empty(t, records)
}

func TestClientListStopsOnRepeatedNextLink(t *testing.T) {
	calls := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"next":"` + server.URL + `/vehicles/?page=2","results":[{"id":"v"}]}`))
	}))
	defer server.Close()

	records, err := NewClient(server.URL, time.Second).List(context.Background(), "vehicles", nil)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, records, 2)
}
