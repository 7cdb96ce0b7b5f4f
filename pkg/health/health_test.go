package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-trackdrive/pkg/logging"
)

// mockCheck implements Check for testing
type mockCheck struct {
	name    string
	healthy bool
}

func (m *mockCheck) Name() string { return m.name }

func (m *mockCheck) Check(ctx context.Context) error {
	if !m.healthy {
		return errors.New("mock check failed")
	}
	return nil
}

// slowCheck respects context cancellation.
type slowCheck struct {
	delay time.Duration
}

func (s *slowCheck) Name() string { return "slow" }

func (s *slowCheck) Check(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestChecker_AddRemove(t *testing.T) {
	c := NewChecker()
	c.Add(&mockCheck{name: "b", healthy: true})
	c.Add(&mockCheck{name: "a", healthy: true})
	c.Add(&mockCheck{name: "a", healthy: false})

	if got := c.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v", got)
	}
	if r := c.Run(context.Background()); r.Checks["a"].Status != StatusUnhealthy {
		t.Error("expected the replaced check to run")
	}

	c.Remove("a")
	if got := c.Names(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Names() after Remove = %v", got)
	}
}

func TestChecker_Run(t *testing.T) {
	tests := []struct {
		name     string
		checks   []*mockCheck
		expected string
	}{
		{name: "no checks - healthy", expected: StatusHealthy},
		{
			name:     "all healthy",
			checks:   []*mockCheck{{name: "check1", healthy: true}, {name: "check2", healthy: true}},
			expected: StatusHealthy,
		},
		{
			name:     "one unhealthy",
			checks:   []*mockCheck{{name: "check1", healthy: true}, {name: "check2", healthy: false}},
			expected: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for _, check := range tt.checks {
				c.Add(check)
			}

			report := c.Run(context.Background())
			if report.Status != tt.expected {
				t.Errorf("Expected status %s, got %s", tt.expected, report.Status)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Errorf("Expected %d check results, got %d", len(tt.checks), len(report.Checks))
			}
			if report.CheckedAt.IsZero() {
				t.Error("Expected CheckedAt to be set")
			}
			for _, check := range tt.checks {
				want := StatusHealthy
				if !check.healthy {
					want = StatusUnhealthy
				}
				if got := report.Checks[check.name].Status; got != want {
					t.Errorf("Check %s: expected %s, got %s", check.name, want, got)
				}
			}
		})
	}
}

func TestChecker_RunWithTimeout(t *testing.T) {
	c := NewChecker()
	c.Add(&slowCheck{delay: 200 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	report := c.Run(ctx)
	if report.Status != StatusUnhealthy {
		t.Errorf("Expected unhealthy status due to timeout, got %s", report.Status)
	}
}

func TestChecker_Handler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		healthy    bool
		wantCode   int
		wantStatus string
	}{
		{"liveness", "/health", false, http.StatusOK, "alive"},
		{"ready", "/ready", true, http.StatusOK, StatusHealthy},
		{"not ready", "/ready", false, http.StatusServiceUnavailable, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			c.Add(&mockCheck{name: "test", healthy: tt.healthy})

			w := httptest.NewRecorder()
			c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantCode {
				t.Errorf("Expected status code %d, got %d", tt.wantCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", ct)
			}
			var body struct {
				Status string `json:"status"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, body.Status)
			}
		})
	}
}

func TestChecker_Serve(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewChecker()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, addr, logging.NewLoggerWithWriter(io.Discard)) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("health server never answered: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestAssetsCheck(t *testing.T) {
	ready := false
	check := NewAssetsCheck(func() bool { return ready })

	if check.Name() != "assets" {
		t.Errorf("Name() = %q", check.Name())
	}
	if err := check.Check(context.Background()); err == nil {
		t.Error("Expected an error before assets are loaded")
	}
	ready = true
	if err := check.Check(context.Background()); err != nil {
		t.Errorf("Expected no error once loaded, got %v", err)
	}
}

func TestFrameCheck(t *testing.T) {
	var frame uint64
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	check := NewFrameCheck(func() uint64 { return frame }, time.Second)
	check.now = func() time.Time { return clock }
	ctx := context.Background()

	if err := check.Check(ctx); err != nil {
		t.Fatalf("baseline should pass, got %v", err)
	}

	clock = clock.Add(500 * time.Millisecond)
	if err := check.Check(ctx); err != nil {
		t.Errorf("within the stall window should pass, got %v", err)
	}

	clock = clock.Add(time.Second)
	err := check.Check(ctx)
	if err == nil || !strings.Contains(err.Error(), "stuck at frame 0") {
		t.Errorf("expected a stall error, got %v", err)
	}

	frame = 90
	if err := check.Check(ctx); err != nil {
		t.Errorf("advancing frames should recover, got %v", err)
	}
}

func TestMemoryCheck(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		usage   int64
		wantErr bool
	}{
		{"under limit", 500, 100, false},
		{"at limit", 500, 500, false},
		{"over limit", 500, 600, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewMemoryCheck(tt.limit, func() int64 { return tt.usage })
			if err := check.Check(context.Background()); (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if NewMemoryCheck(1<<20, nil).Check(context.Background()) != nil {
		t.Error("runtime usage should be far under a terabyte")
	}
	if HeapMB() < 0 {
		t.Error("HeapMB should not be negative")
	}
}
