package fleetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nurpe/fleet-reports/internal/model"
)

const (
	maxErrorBody = 4 << 10
	maxListPages = 200
)

// APIError is returned when the fleet backend answers with a non-2xx status.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fleet api %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the fleet REST backend on behalf of one bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that authenticates as token.
// The underlying http.Client is shared.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches a collection and normalizes the response. Envelopes carrying
// a "next" link are followed until the last page; the link must stay on the
// backend's host.
func (c *Client) List(ctx context.Context, resource string, query url.Values) ([]model.Record, error) {
	path := collectionPath(resource)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	target := c.baseURL + path
	seen := make(map[string]bool)
	records := []model.Record{}

	for page := 0; page < maxListPages; page++ {
		seen[target] = true
		body, err := c.send(ctx, http.MethodGet, target, path, nil)
		if err != nil {
			return []model.Record{}, err
		}
		items, next := DecodePage(body)
		records = append(records, items...)
		if next == "" {
			return records, nil
		}

		nextURL, err := c.resolveNext(next)
		if err != nil {
			return []model.Record{}, fmt.Errorf("fleet api GET %s: %w", path, err)
		}
		if seen[nextURL.String()] {
			return records, nil
		}
		target = nextURL.String()
		path = nextURL.RequestURI()
	}
	return []model.Record{}, fmt.Errorf("fleet api GET %s: more than %d pages", collectionPath(resource), maxListPages)
}

func (c *Client) resolveNext(next string) (*url.URL, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return nil, fmt.Errorf("parse next link %q: %w", next, err)
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != base.Scheme || resolved.Host != base.Host {
		return nil, fmt.Errorf("next link %q leaves %s", next, base.Host)
	}
	return resolved, nil
}

func (c *Client) Get(ctx context.Context, resource, id string) (model.Record, error) {
	body, err := c.do(ctx, http.MethodGet, itemPath(resource, id), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

func (c *Client) Create(ctx context.Context, resource string, payload any) (model.Record, error) {
	body, err := c.do(ctx, http.MethodPost, collectionPath(resource), payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Update sends a partial update.
func (c *Client) Update(ctx context.Context, resource, id string, payload any) (model.Record, error) {
	body, err := c.do(ctx, http.MethodPatch, itemPath(resource, id), payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Replace sends a full update.
func (c *Client) Replace(ctx context.Context, resource, id string, payload any) (model.Record, error) {
	body, err := c.do(ctx, http.MethodPut, itemPath(resource, id), payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

func (c *Client) Delete(ctx context.Context, resource, id string) error {
	_, err := c.do(ctx, http.MethodDelete, itemPath(resource, id), nil)
	return err
}

// CurrentSubscription fetches the subscription of the caller's company.
func (c *Client) CurrentSubscription(ctx context.Context) (model.Record, error) {
	body, err := c.do(ctx, http.MethodGet, "/subscriptions/current/", nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	return c.send(ctx, method, c.baseURL+path, path, payload)
}

func (c *Client) send(ctx context.Context, method, target, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fleet api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &APIError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

func decodeRecord(body []byte) (model.Record, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return model.Record{}, nil
	}
	var record model.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if record == nil {
		record = model.Record{}
	}
	return record, nil
}

func collectionPath(resource string) string {
	return "/" + strings.Trim(resource, "/") + "/"
}

func itemPath(resource, id string) string {
	return collectionPath(resource) + url.PathEscape(id) + "/"
}
