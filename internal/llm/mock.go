package llm

import (
	"context"
	"sync"
)

// MockBackend is a scriptable Backend for tests.
type MockBackend struct {
	BackendName  string
	Response     Result
	Err          error
	HealthStatus string

	mu       sync.Mutex
	calls    int
	requests []Request
	tracker  tracker
}

var _ Backend = (*MockBackend)(nil)

// NewMockBackend creates a mock that answers with the given text.
func NewMockBackend(name, text string) *MockBackend {
	return &MockBackend{
		BackendName:  name,
		Response:     Result{Text: text, Model: "mock-" + name},
		HealthStatus: "online",
	}
}

// Name returns the configured backend name.
func (m *MockBackend) Name() string { return m.BackendName }

// Generate returns the scripted response or error.
func (m *MockBackend) Generate(ctx context.Context, req Request) (Result, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	m.tracker.record(0, m.Err != nil)
	if m.Err != nil {
		return Result{}, m.Err
	}
	return m.Response, nil
}

// HealthCheck returns the scripted health status.
func (m *MockBackend) HealthCheck(ctx context.Context) Health {
	return Health{Status: m.HealthStatus}
}

// Metrics returns a snapshot of the backend's counters.
func (m *MockBackend) Metrics() Metrics {
	return m.tracker.snapshot()
}

// Calls returns how many times Generate was invoked.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent Generate request, if any.
func (m *MockBackend) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}
