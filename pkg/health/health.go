package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/utafrali/storefront/pkg/httputil"
)

// Checker reports the health of one dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

const defaultCheckTimeout = 5 * time.Second

// Response is the JSON body returned by the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Latency  string `json:"latency,omitempty"`
	Error    string `json:"error,omitempty"`
}

type entry struct {
	check    Checker
	critical bool
}

// Handler provides liveness and readiness endpoints. A failing critical
// check makes the service unready (503); a failing non-critical check only
// degrades it (200).
type Handler struct {
	mu      sync.RWMutex
	entries map[string]entry
	timeout time.Duration
}

// NewHandler creates a health handler with the default per-request timeout.
func NewHandler() *Handler {
	return &Handler{
		entries: make(map[string]entry),
		timeout: defaultCheckTimeout,
	}
}

// Register adds a critical checker. Registering an existing name replaces it.
func (h *Handler) Register(name string, check Checker) {
	h.RegisterCritical(name, check)
}

// RegisterCritical adds a checker whose failure makes the service unready.
func (h *Handler) RegisterCritical(name string, check Checker) {
	h.add(name, check, true)
}

// RegisterNonCritical adds a checker whose failure only degrades readiness.
func (h *Handler) RegisterNonCritical(name string, check Checker) {
	h.add(name, check, false)
}

func (h *Handler) add(name string, check Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[name] = entry{check: check, critical: critical}
}

// LivenessHandler always reports up while the process is serving.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered check concurrently.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check(r.Context())

		status := http.StatusOK
		if resp.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}

// Check runs all checks and aggregates their results.
func (h *Handler) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.mu.RLock()
	entries := make(map[string]entry, len(h.entries))
	for k, v := range h.entries {
		entries[k] = v
	}
	h.mu.RUnlock()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(entries))
	)
	for name, e := range entries {
		wg.Add(1)
		go func(name string, e entry) {
			defer wg.Done()
			start := time.Now()
			err := e.check(ctx)
			res := CheckResult{
				Status:   StatusUp,
				Critical: e.critical,
				Latency:  time.Since(start).String(),
			}
			if err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}(name, e)
	}
	wg.Wait()

	overall := StatusUp
	for _, c := range checks {
		if c.Status != StatusDown {
			continue
		}
		if c.Critical {
			overall = StatusDown
			break
		}
		overall = StatusDegraded
	}

	return Response{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
}
