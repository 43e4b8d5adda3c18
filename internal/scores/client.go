package scores

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Getter issues one upstream query and returns the provider's fixture records.
type Getter interface {
	Get(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error)
}

// Auth attaches the provider key to an outgoing request.
type Auth func(req *http.Request)

// HeaderKey sets the key as a request header, e.g. x-apisports-key.
func HeaderKey(name, key string) Auth {
	return func(req *http.Request) {
		req.Header.Set(name, key)
	}
}

// RapidAPIKey sets the RapidAPI key and host headers.
func RapidAPIKey(key, host string) Auth {
	return func(req *http.Request) {
		req.Header.Set("x-rapidapi-key", key)
		req.Header.Set("x-rapidapi-host", host)
	}
}

// QueryKey sets the key as a query parameter, e.g. APIkey.
func QueryKey(name, key string) Auth {
	return func(req *http.Request) {
		q := req.URL.Query()
		q.Set(name, key)
		req.URL.RawQuery = q.Encode()
	}
}

// Envelope extracts the records array from a successful response body.
// ok is false when the body does not carry an array.
type Envelope func(body []byte) (records []json.RawMessage, ok bool)

// BareArray accepts bodies that are themselves a JSON array.
func BareArray(body []byte) ([]json.RawMessage, bool) {
	var out []json.RawMessage
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, false
	}
	return out, true
}

// ResponseField accepts object bodies carrying the array under field.
func ResponseField(field string) Envelope {
	return func(body []byte) ([]json.RawMessage, bool) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, false
		}
		raw, ok := obj[field]
		if !ok {
			return nil, false
		}
		return BareArray(raw)
	}
}

// Client is a minimal sports-data HTTP client.
type Client struct {
	baseURL  string
	client   *http.Client
	auth     Auth
	envelope Envelope
}

// NewClient creates a client against baseURL. A zero timeout defaults to 10s.
func NewClient(baseURL string, timeout time.Duration, auth Auth, envelope Envelope) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if envelope == nil {
		envelope = BareArray
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		auth:     auth,
		envelope: envelope,
	}
}

// Get performs one GET. A non-2xx status or a body without a records array
// yields an empty slice and a nil error; only transport failures are returned.
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	records, _, err := c.GetChecked(ctx, path, params)
	return records, err
}

// GetChecked is Get that also reports whether the empty answer was degraded
// (non-2xx status or a body without a records array) rather than genuinely empty.
func (c *Client) GetChecked(ctx context.Context, path string, params url.Values) ([]json.RawMessage, bool, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		c.auth(req)
	}
	slog.Debug("scores: GET", "path", path, "params", params.Encode())
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("scores: get %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("scores: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("scores: upstream status", "path", path, "status", resp.StatusCode, "body", snippet(body))
		return []json.RawMessage{}, true, nil
	}
	records, ok := c.envelope(bytes.TrimSpace(body))
	if !ok {
		slog.Warn("scores: upstream body has no records", "path", path, "body", snippet(body))
		return []json.RawMessage{}, true, nil
	}
	return records, false, nil
}

func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
