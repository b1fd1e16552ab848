package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound indicates that OpenBD has no record for the ISBN.
var ErrNotFound = errors.New("ISBN not found in OpenBD")

// Record is the normalized result of an OpenBD lookup. Empty strings and an
// empty subject list mean the corresponding field was absent upstream.
type Record struct {
	Title    string   `json:"title,omitempty"`
	Text     string   `json:"text,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

// OpenBDClient fetches book metadata from the OpenBD API.
//
// The payload shape is not contractually stable, so everything past the
// top-level array is decoded as untyped JSON and normalized by the pure
// extraction functions in normalize.go.
type OpenBDClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewOpenBDClient creates an OpenBD client with a bounded request timeout.
// The timeout is the single place a whole request may stall.
func NewOpenBDClient(baseURL string, timeout time.Duration) *OpenBDClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenBDClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Lookup fetches and normalizes the OpenBD record for an ISBN. It returns
// ErrNotFound when the service has no record (empty array or null first
// element) and a wrapped transport error otherwise. The ISBN itself is
// treated as an opaque string.
func (c *OpenBDClient) Lookup(ctx context.Context, isbn string) (*Record, error) {
	lookupURL := fmt.Sprintf("%s/v1/get?isbn=%s", c.baseURL, url.QueryEscape(isbn))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Kashidashi/1.0 (https://github.com/mrlokans/kashidashi)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ISBN data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var payload []any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(payload) == 0 || payload[0] == nil {
		return nil, ErrNotFound
	}

	item, ok := payload[0].(map[string]any)
	if !ok {
		return nil, ErrNotFound
	}

	record := Normalize(item)
	return &record, nil
}
