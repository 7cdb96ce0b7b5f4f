// Package health reports whether a driving session is alive and making
// progress. The probes are served over HTTP for long-running headless drivers.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/opd-ai/go-trackdrive/pkg/logging"
)

// Status values reported per check and overall.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Check is one named probe.
type Check interface {
	Name() string
	Check(ctx context.Context) error
}

// Report is the aggregated result of every registered check.
type Report struct {
	Status    string                     `json:"status"`
	Checks    map[string]ComponentHealth `json:"checks"`
	CheckedAt time.Time                  `json:"checkedAt"`
}

// ComponentHealth is the result of a single check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker runs a set of checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]Check)}
}

// Add registers check, replacing any check with the same name.
func (c *Checker) Add(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[check.Name()] = check
}

// Remove unregisters a check by name.
func (c *Checker) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Names returns the registered check names, sorted.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every check. The report is healthy only if all of them pass.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make([]Check, 0, len(c.checks))
	for _, check := range c.checks {
		checks = append(checks, check)
	}
	c.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		Checks:    make(map[string]ComponentHealth, len(checks)),
		CheckedAt: time.Now().UTC(),
	}
	for _, check := range checks {
		if err := check.Check(ctx); err != nil {
			report.Status = StatusUnhealthy
			report.Checks[check.Name()] = ComponentHealth{Status: StatusUnhealthy, Message: err.Error()}
			continue
		}
		report.Checks[check.Name()] = ComponentHealth{Status: StatusHealthy}
	}
	return report
}

// LivenessHandler answers 200 as long as the process can serve requests.
func (c *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessHandler runs every check and answers 503 if any fails.
func (c *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	report := c.Run(ctx)
	code := http.StatusOK
	if report.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

// Handler routes /health to the liveness probe and /ready to the readiness probe.
func (c *Checker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", c.LivenessHandler)
	mux.HandleFunc("/ready", c.ReadinessHandler)
	return mux
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (c *Checker) Serve(ctx context.Context, addr string, logger *logging.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      c.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting health check server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("health server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("health server shutdown: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// AssetsCheck fails until the session has its vehicle and track attached.
type AssetsCheck struct {
	ready func() bool
}

// NewAssetsCheck creates an assets check around ready.
func NewAssetsCheck(ready func() bool) *AssetsCheck {
	return &AssetsCheck{ready: ready}
}

// Name returns the name of this health check.
func (a *AssetsCheck) Name() string { return "assets" }

// Check verifies that the assets are attached.
func (a *AssetsCheck) Check(ctx context.Context) error {
	if !a.ready() {
		return errors.New("vehicle and track are not loaded")
	}
	return nil
}

// FrameCheck fails when the frame counter stops advancing for longer than
// the stall window. The first call only records a baseline.
type FrameCheck struct {
	frame func() uint64
	stall time.Duration
	now   func() time.Time

	mu        sync.Mutex
	lastFrame uint64
	lastMove  time.Time
}

// NewFrameCheck creates a frame progress check.
func NewFrameCheck(frame func() uint64, stall time.Duration) *FrameCheck {
	return &FrameCheck{frame: frame, stall: stall, now: time.Now}
}

// Name returns the name of this health check.
func (f *FrameCheck) Name() string { return "frames" }

// Check verifies that frames are still being simulated.
func (f *FrameCheck) Check(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	frame, now := f.frame(), f.now()
	if f.lastMove.IsZero() || frame != f.lastFrame {
		f.lastFrame, f.lastMove = frame, now
		return nil
	}
	if idle := now.Sub(f.lastMove); idle > f.stall {
		return fmt.Errorf("no frame simulated for %s (stuck at frame %d)", idle.Round(time.Millisecond), frame)
	}
	return nil
}

// MemoryCheck fails when heap usage exceeds a limit.
type MemoryCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryCheck creates a memory check. A nil usage func reads the Go runtime.
func NewMemoryCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryCheck {
	if getMemoryUsage == nil {
		getMemoryUsage = HeapMB
	}
	return &MemoryCheck{maxMemoryMB: maxMemoryMB, getMemoryUsage: getMemoryUsage}
}

// Name returns the name of this health check.
func (m *MemoryCheck) Name() string { return "memory" }

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryCheck) Check(ctx context.Context) error {
	if currentMB := m.getMemoryUsage(); currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// HeapMB returns the allocated heap in megabytes.
func HeapMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
