package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/mmx/internal/shared"
	th "github.com/desertthunder/mmx/internal/testing"
)

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("NewClient", func(t *testing.T) {
		t.Run("defaults base URL", func(t *testing.T) {
			c := NewClient("", nil, nil)
			if c.BaseURL() != DefaultBaseURL {
				t.Errorf("expected %s, got %s", DefaultBaseURL, c.BaseURL())
			}
		})

		t.Run("trims trailing slash", func(t *testing.T) {
			c := NewClient("http://example.com/", nil, nil)
			if c.BaseURL() != "http://example.com" {
				t.Errorf("unexpected base URL %s", c.BaseURL())
			}
		})
	})

	t.Run("attaches bearer token from store", func(t *testing.T) {
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		store := NewMemoryTokenStore("abc123")
		c := NewClient(server.URL, store, server.Client())

		if _, err := c.Get(ctx, "/api/user/info"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if auth != "Bearer abc123" {
			t.Errorf("expected bearer header, got %q", auth)
		}

		t.Run("reads the store on every request", func(t *testing.T) {
			store.SetToken("rotated")
			if _, err := c.Get(ctx, "api/user/info"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if auth != "Bearer rotated" {
				t.Errorf("expected rotated token, got %q", auth)
			}
		})
	})

	t.Run("unauthenticated client sends no header", func(t *testing.T) {
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, server.Client())
		resp, err := c.Post(ctx, "/api/auth/register", []byte(`{}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("expected 201, got %d", resp.StatusCode)
		}
		if auth != "" {
			t.Errorf("expected no authorization header, got %q", auth)
		}
	})

	t.Run("missing token is a setup error and nothing is sent", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		c := NewClient(server.URL, NewMemoryTokenStore(""), server.Client())
		_, err := c.Get(ctx, "/api/movies/random")

		var setupErr *RequestSetupError
		if !errors.As(err, &setupErr) {
			t.Fatalf("expected RequestSetupError, got %T: %v", err, err)
		}
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated in chain, got %v", err)
		}
		if called {
			t.Error("request should not reach the server")
		}
	})

	t.Run("encodes JSON body", func(t *testing.T) {
		var contentType, body string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			data, _ := io.ReadAll(r.Body)
			body = string(data)
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, server.Client())
		_, err := c.Request(ctx, http.MethodPost, "/x", map[string]int{"movieId": 7})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if contentType != "application/json" {
			t.Errorf("expected JSON content type, got %q", contentType)
		}
		if body != `{"movieId":7}` {
			t.Errorf("unexpected body %s", body)
		}
	})

	t.Run("unencodable body is a setup error", func(t *testing.T) {
		c := NewClient("http://localhost", nil, nil)
		_, err := c.Request(ctx, http.MethodPost, "/x", make(chan int))

		var setupErr *RequestSetupError
		if !errors.As(err, &setupErr) {
			t.Errorf("expected RequestSetupError, got %T", err)
		}
	})

	t.Run("invalid URL is a setup error", func(t *testing.T) {
		c := NewClient("://bad", nil, nil)
		_, err := c.Get(ctx, "/x")

		var setupErr *RequestSetupError
		if !errors.As(err, &setupErr) {
			t.Errorf("expected RequestSetupError, got %T", err)
		}
	})

	t.Run("non-2xx returns HTTPError with response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"DB down"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, server.Client())
		resp, err := c.Get(ctx, "/x")

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("expected HTTPError, got %T", err)
		}
		if httpErr.Status != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", httpErr.Status)
		}
		if resp == nil || !resp.IsJSON {
			t.Error("expected JSON response alongside the error")
		}
	})

	t.Run("transport failure is a network error", func(t *testing.T) {
		rt := th.NewMockRoundTripper(nil, errors.New("connection refused"))
		c := NewClient("http://localhost", nil, &http.Client{Transport: rt})
		_, err := c.Get(ctx, "/x")

		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			t.Errorf("expected NetworkError, got %T", err)
		}
	})

	t.Run("unreadable body is a network error", func(t *testing.T) {
		rt := th.NewMockRoundTripper(&http.Response{StatusCode: http.StatusOK, Body: &th.FCloser{}, Header: http.Header{}}, nil)
		c := NewClient("http://localhost", nil, &http.Client{Transport: rt})
		_, err := c.Get(ctx, "/x")

		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			t.Errorf("expected NetworkError, got %T", err)
		}
	})

	t.Run("Decode", func(t *testing.T) {
		resp := &APIResponse{Body: []byte("not json")}
		var v map[string]any
		if err := resp.Decode(&v); !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}

		resp = &APIResponse{Body: []byte(`{"a":"b"}`)}
		if err := resp.Decode(&v); err != nil || v["a"] != "b" {
			t.Errorf("unexpected decode result %v, %v", v, err)
		}
	})

	t.Run("plain text body is not JSON", func(t *testing.T) {
		rt := th.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("hello")),
			Header:     http.Header{},
		}, nil)
		c := NewClient("http://localhost", nil, &http.Client{Transport: rt})
		resp, err := c.Get(ctx, "/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.IsJSON {
			t.Error("expected IsJSON to be false")
		}
	})
}
