package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Do_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/things" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("active") != "true" {
			t.Errorf("expected query active=true, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/api/things",
		Query:  map[string]string{"active": "true"},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	if err := resp.DecodeJSON(&out); err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if !out.OK {
		t.Error("expected ok=true")
	}
}

func TestClient_Do_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if err == nil {
		t.Fatal("expected error for 502")
	}
	if !IsRetryable(err) {
		t.Error("5xx should be retryable")
	}
}

func TestClient_Do_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/missing"})
	if !IsNotFound(err) {
		t.Errorf("expected not-found classification, got %v", err)
	}
}

func TestClient_Do_ConnectionRefused(t *testing.T) {
	// Bind then immediately close to get a port nobody listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := New(Config{BaseURL: addr, Timeout: 2 * time.Second})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsConnection(err) {
		t.Errorf("expected connection classification, got %v", err)
	}
}

func TestClient_Do_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsTimeout(err) {
		t.Errorf("expected timeout classification, got %v", err)
	}
}

func TestClassifyStatusCode_Table(t *testing.T) {
	tests := []struct {
		status int
		code   ErrorCode
		nilErr bool
	}{
		{200, 0, true},
		{204, 0, true},
		{404, ErrCodeNotFound, false},
		{400, ErrCodeClient, false},
		{429, ErrCodeClient, false},
		{500, ErrCodeServer, false},
		{503, ErrCodeServer, false},
	}
	for _, tc := range tests {
		err := ClassifyStatusCode(tc.status)
		if tc.nilErr {
			if err != nil {
				t.Errorf("status %d: expected nil, got %v", tc.status, err)
			}
			continue
		}
		if err == nil || err.Code != tc.code {
			t.Errorf("status %d: expected code %s, got %v", tc.status, tc.code, err)
		}
	}
}

func TestClassifyTransportError_Deadline(t *testing.T) {
	err := ClassifyTransportError(context.DeadlineExceeded)
	if err.Code != ErrCodeTimeout {
		t.Errorf("expected timeout, got %s", err.Code)
	}
}
