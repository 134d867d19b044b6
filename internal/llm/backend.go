// Package llm defines the generation backend interface and its cloud and
// local implementations.
package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Backend names used for routing decisions and response attribution.
const (
	BackendCloud = "cloud"
	BackendLocal = "local"
)

// Common errors
var (
	// ErrRateLimited indicates the provider rejected the request for quota
	// reasons; the router may retry on another backend.
	ErrRateLimited = errors.New("backend rate limited")

	// ErrBackendUnavailable indicates the backend cannot serve requests at
	// all (unreachable, misconfigured).
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Exchange is one completed user/assistant turn.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Request carries everything a backend needs to generate a response.
type Request struct {
	SystemPrompt string
	UserMessage  string
	History      []Exchange
}

// Result is a successful (possibly degraded) generation.
type Result struct {
	Text  string
	Model string

	// Degraded marks a friendly placeholder produced because the backend
	// could not complete the request. The text is safe to show to the user
	// but the router should try another backend first.
	Degraded bool
}

// Health reports a backend's availability.
type Health struct {
	Status string `json:"status"` // online, offline or error
	Detail string `json:"detail,omitempty"`
}

// Metrics is a point-in-time snapshot of a backend's counters.
type Metrics struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// Backend generates assistant responses.
type Backend interface {
	// Name returns the routing name of the backend.
	Name() string

	// Generate produces a response for the request. Implementations honor
	// context cancellation and their configured timeout.
	Generate(ctx context.Context, req Request) (Result, error)

	// HealthCheck probes the backend.
	HealthCheck(ctx context.Context) Health

	// Metrics returns a snapshot of the backend's counters.
	Metrics() Metrics
}

// tracker accumulates request counters with an incremental latency mean.
type tracker struct {
	mu         sync.Mutex
	requests   int64
	errors     int64
	avgLatency float64 // milliseconds
}

// record folds one request into the counters.
func (t *tracker) record(elapsed time.Duration, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests++
	if failed {
		t.errors++
	}
	ms := float64(elapsed.Milliseconds())
	t.avgLatency = (t.avgLatency*float64(t.requests-1) + ms) / float64(t.requests)
}

func (t *tracker) snapshot() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Metrics{
		Requests:     t.requests,
		Errors:       t.errors,
		AvgLatencyMS: t.avgLatency,
	}
}
