package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/components" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ids":"` + r.URL.Query().Get("ids") + `"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL + "/api/")
	if err != nil {
		t.Fatal(err)
	}

	var got struct{ IDs string }
	err = c.GetJSON(context.Background(), "/components", url.Values{"ids": {"a,b"}}, &got)
	if err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if got.IDs != "a,b" {
		t.Errorf("ids = %q, want %q", got.IDs, "a,b")
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, WithRetry(3, time.Millisecond))
	var v map[string]any
	if err := c.GetJSON(context.Background(), "/", nil, &v); err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientStatusError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such component", http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, WithRetry(3, time.Millisecond))
	var v map[string]any
	err := c.GetJSON(context.Background(), "/components/x", nil, &v)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", se.Status)
	}
	if se.Body != "no such component" {
		t.Errorf("body = %q", se.Body)
	}
	if calls.Load() != 1 {
		t.Errorf("404 was retried: calls = %d", calls.Load())
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "example.com", "://"} {
		if _, err := NewClient(raw); err == nil {
			t.Errorf("NewClient(%q) succeeded, want error", raw)
		}
	}
}
