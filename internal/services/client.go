// Authenticated HTTP client for the movie matcher backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/mmx/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is where the backend listens when nothing is configured.
const DefaultBaseURL = "http://localhost:5000"

// Client issues JSON requests against the backend.
//
// When built with a [TokenStore], every request carries "Authorization: Bearer <token>" via [oauth2.Transport].
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A nil tokens store produces an unauthenticated client
// (used for login and registration); a nil base client defaults to [http.DefaultClient].
func NewClient(baseURL string, tokens TokenStore, base *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if base == nil {
		base = http.DefaultClient
	}

	httpClient := base
	if tokens != nil {
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: storeTokenSource{store: tokens},
				Base:   base.Transport,
			},
			CheckRedirect: base.CheckRedirect,
			Jar:           base.Jar,
			Timeout:       base.Timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Decode unmarshals the response body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
	}
	return nil
}

// Request sends method to path with body encoded as JSON (nil for no body).
//
// Errors are one of [*RequestSetupError], [*NetworkError] or [*HTTPError]. For an [*HTTPError] the
// response is returned as well so callers can inspect it.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestSetupError{Message: "failed to encode request body", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	return c.do(ctx, method, path, reader)
}

// Get performs a GET request to the specified path.
func (c *Client) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with raw, already-encoded JSON data.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data))
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*APIResponse, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &RequestSetupError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil, &RequestSetupError{Message: "not logged in, run `mmx auth login`", Err: shared.ErrNotAuthenticated}
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiResp, &HTTPError{Status: resp.StatusCode, Body: data}
	}
	return apiResp, nil
}
