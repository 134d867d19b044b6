// Package chat routes user queries across generation backends and the
// template responder, maintains per-user conversation history and tracks
// routing metrics.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/astra-ai/astra/libs/chat-engine/internal/analyze"
	"github.com/astra-ai/astra/libs/chat-engine/internal/classify"
	"github.com/astra-ai/astra/libs/chat-engine/internal/config"
	"github.com/astra-ai/astra/libs/chat-engine/internal/llm"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
	"github.com/astra-ai/astra/libs/chat-engine/internal/prompt"
	"github.com/astra-ai/astra/libs/chat-engine/internal/rules"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

// ErrInvalidModel is returned when a force-model request names an unknown
// backend.
var ErrInvalidModel = errors.New("invalid model name")

// ModelError is reported when every generation path failed.
const ModelError = "error"

// bothFailedResponse is the fixed apology when no backend could answer.
const bothFailedResponse = "I apologize, but I'm unable to generate a response right now. " +
	"Please try again in a moment, or ask about one of the vehicles in our inventory."

// VehicleSource resolves vehicle records for prompt context.
type VehicleSource interface {
	GetByID(ctx context.Context, id int64) (*storage.Vehicle, error)
	Sample(ctx context.Context, limit int) ([]*storage.Vehicle, error)
}

// Request is one user query entering the router.
type Request struct {
	Message    string
	UserID     string
	VehicleID  *int64
	History    []llm.Exchange // optional client-supplied transcript
	ForceModel string         // optional per-request backend override
}

// Result is the routed, analyzed response.
type Result struct {
	Response        string         `json:"response"`
	ModelUsed       string         `json:"model_used"`
	QueryTypes      []string       `json:"query_types"`
	RoutingCategory string         `json:"routing_category"`
	Confidence      float64        `json:"confidence"`
	Analysis        analyze.Result `json:"analysis"`
	VehicleID       *int64         `json:"car_id,omitempty"`
	ResponseTimeMS  float64        `json:"response_time_ms"`
}

// Metrics is a snapshot of the router's counters.
type Metrics struct {
	TotalRequests     int64   `json:"total_requests"`
	CloudRequests     int64   `json:"cloud_requests"`
	LocalRequests     int64   `json:"local_requests"`
	RuleRequests      int64   `json:"rule_requests"`
	Fallbacks         int64   `json:"fallbacks"`
	Failures          int64   `json:"failures"`
	AvgResponseTimeMS float64 `json:"avg_response_time_ms"`
	ForcedModel       string  `json:"forced_model,omitempty"`
	ActiveUsers       int     `json:"active_users"`
}

// Router selects a generation path per query and assembles the final result.
type Router struct {
	classifier *classify.Classifier
	builder    *prompt.Builder
	analyzer   *analyze.Analyzer
	responder  *rules.Responder

	cloud    llm.Backend
	local    llm.Backend
	vehicles VehicleSource
	history  *History

	cfg    config.RouterConfig
	logger *observability.Logger

	mu         sync.Mutex
	forceModel string
	metrics    Metrics
}

// RouterDeps bundles the router's collaborators. Cloud, Local and Vehicles
// may be nil; the router degrades to the remaining paths.
type RouterDeps struct {
	Cloud     llm.Backend
	Local     llm.Backend
	Vehicles  VehicleSource
	Responder *rules.Responder
	Config    config.RouterConfig
	Logger    *observability.Logger
}

// NewRouter creates a chat router.
func NewRouter(deps RouterDeps) *Router {
	responder := deps.Responder
	if responder == nil {
		responder = rules.NewResponder(nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = observability.DefaultLogger()
	}
	cfg := deps.Config
	if cfg.MinLocalConfidence <= 0 {
		cfg.MinLocalConfidence = 0.6
	}
	if cfg.MaxHistoryTurns <= 0 {
		cfg.MaxHistoryTurns = 6
	}

	return &Router{
		classifier: classify.NewClassifier(),
		builder:    prompt.NewBuilder(),
		analyzer:   analyze.NewAnalyzer(),
		responder:  responder,
		cloud:      deps.Cloud,
		local:      deps.Local,
		vehicles:   deps.Vehicles,
		history:    NewHistory(cfg.HistoryCap),
		cfg:        cfg,
		logger:     logger.WithOperation("route_query"),
	}
}

// History exposes the router's conversation store.
func (r *Router) History() *History {
	return r.history
}

// SetForceModel pins every subsequent query to the named backend. An empty
// name clears the pin.
func (r *Router) SetForceModel(name string) error {
	if name != "" && name != llm.BackendCloud && name != llm.BackendLocal {
		return fmt.Errorf("%w: %q (want %q, %q or empty)", ErrInvalidModel, name, llm.BackendCloud, llm.BackendLocal)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forceModel = name
	return nil
}

// ForceModel returns the current pin, or empty when routing is automatic.
func (r *Router) ForceModel() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forceModel
}

// Metrics returns a snapshot of the router's counters.
func (r *Router) Metrics() Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.metrics
	m.ForcedModel = r.forceModel
	m.ActiveUsers = r.history.Users()
	return m
}

// RouteQuery classifies the message, picks a generation path, attempts at
// most one fallback and returns the analyzed response. Generation failures
// never surface as errors: when every path is exhausted the result carries a
// fixed apology attributed to the "error" model.
func (r *Router) RouteQuery(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.UserID == "" {
		req.UserID = "default_user"
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		result := &Result{
			Response:        rules.Clarify(),
			ModelUsed:       rules.ModelName,
			QueryTypes:      []string{"general"},
			RoutingCategory: classify.CategoryGeneral,
			Confidence:      0,
			Analysis:        analyze.Neutral(),
		}
		r.finish(result, start, false)
		return result, nil
	}

	vehicle := r.resolveVehicle(ctx, req.VehicleID)
	classification := r.classifier.Classify(message, vehicle != nil)

	force := req.ForceModel
	if force == "" {
		force = r.ForceModel()
	}

	backend := r.chooseBackend(classification, vehicle, force)

	var (
		text      string
		modelUsed string
		failed    bool
	)

	if backend == nil {
		text = r.responder.Respond(classification, vehicle)
		modelUsed = rules.ModelName
	} else {
		text, modelUsed, failed = r.generate(ctx, backend, message, vehicle, req)
		if failed {
			text = bothFailedResponse
			modelUsed = ModelError
		}
	}

	result := &Result{
		Response:        text,
		ModelUsed:       modelUsed,
		QueryTypes:      classification.QueryTypes,
		RoutingCategory: classification.RoutingCategory,
		Confidence:      classification.Confidence,
		VehicleID:       req.VehicleID,
	}
	if failed || modelUsed == ModelError {
		result.Analysis = analyze.Neutral()
	} else {
		result.Analysis = r.analyzer.Analyze(text)
	}

	if modelUsed != ModelError {
		r.history.Append(req.UserID, llm.Exchange{User: message, Assistant: text})
	}

	r.finish(result, start, modelUsed == ModelError)

	r.logger.WithContext(ctx).Debug().
		Str("model_used", result.ModelUsed).
		Str("routing_category", result.RoutingCategory).
		Strs("query_types", result.QueryTypes).
		Float64("confidence", result.Confidence).
		Msg("query routed")

	return result, nil
}

// generate runs the primary backend and at most one fallback.
func (r *Router) generate(ctx context.Context, primary llm.Backend, message string, vehicle *storage.Vehicle, req Request) (text, modelUsed string, failed bool) {
	llmReq := llm.Request{
		SystemPrompt: r.buildSystemPrompt(ctx, vehicle),
		UserMessage:  message,
		History:      r.transcript(req),
	}

	result, err := primary.Generate(ctx, llmReq)
	if err == nil && !result.Degraded {
		return result.Text, primary.Name(), false
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("backend", primary.Name()).Msg("primary backend failed")
	}

	fallback := r.other(primary)
	if fallback == nil {
		if result.Degraded {
			return result.Text, primary.Name(), false
		}
		return "", "", true
	}

	r.mu.Lock()
	r.metrics.Fallbacks++
	r.mu.Unlock()

	fbResult, fbErr := fallback.Generate(ctx, llmReq)
	if fbErr == nil && !fbResult.Degraded {
		return fbResult.Text, fallback.Name(), false
	}
	if fbErr != nil {
		r.logger.Warn().Err(fbErr).Str("backend", fallback.Name()).Msg("fallback backend failed")
	}

	// A degraded text from either attempt still beats an apology.
	if fbErr == nil && fbResult.Degraded {
		return fbResult.Text, fallback.Name(), false
	}
	if err == nil && result.Degraded {
		return result.Text, primary.Name(), false
	}
	return "", "", true
}

// chooseBackend applies the routing policy. A nil return means the template
// responder answers.
func (r *Router) chooseBackend(c classify.Classification, vehicle *storage.Vehicle, force string) llm.Backend {
	switch force {
	case llm.BackendCloud:
		if r.cloud != nil {
			return r.cloud
		}
	case llm.BackendLocal:
		if r.local != nil {
			return r.local
		}
	}

	// Social turns never need a model.
	if c.RoutingCategory == classify.CategoryGeneral && (c.Has("greeting") || c.Has("farewell")) {
		return nil
	}

	if r.cloud == nil && r.local == nil {
		return nil
	}
	if r.local == nil {
		return r.cloud
	}
	if r.cloud == nil {
		return r.local
	}

	switch c.RoutingCategory {
	case classify.CategoryAutomotiveSpecific:
		if c.Confidence >= r.cfg.MinLocalConfidence {
			return r.local
		}
	case classify.CategoryAutomotiveContextual:
		if vehicle != nil {
			return r.local
		}
	}
	return r.cloud
}

// other returns the backend that is not the given one, if configured.
func (r *Router) other(b llm.Backend) llm.Backend {
	if b == r.cloud {
		return r.local
	}
	return r.cloud
}

// transcript picks the conversation context: an explicit client transcript
// wins over server-side history.
func (r *Router) transcript(req Request) []llm.Exchange {
	if len(req.History) > 0 {
		return req.History
	}
	return r.history.Get(req.UserID, r.cfg.MaxHistoryTurns)
}

// buildSystemPrompt renders the system message from the inventory sample and
// the specific vehicle. Store failures degrade to a context-free prompt.
func (r *Router) buildSystemPrompt(ctx context.Context, vehicle *storage.Vehicle) string {
	var inventory []*storage.Vehicle
	if r.vehicles != nil {
		sample, err := r.vehicles.Sample(ctx, 10)
		if err != nil {
			r.logger.Warn().Err(err).Msg("inventory sample unavailable")
		} else {
			inventory = sample
		}
	}
	return r.builder.BuildSystemMessage(inventory, vehicle)
}

// resolveVehicle looks up the requested vehicle. Lookup failures are logged
// and the query proceeds without a record.
func (r *Router) resolveVehicle(ctx context.Context, id *int64) *storage.Vehicle {
	if id == nil || r.vehicles == nil {
		return nil
	}
	vehicle, err := r.vehicles.GetByID(ctx, *id)
	if err != nil {
		r.logger.Warn().Err(err).Int64("car_id", *id).Msg("vehicle lookup failed, proceeding without record")
		return nil
	}
	return vehicle
}

// finish folds the request into the metrics and stamps the elapsed time.
func (r *Router) finish(result *Result, start time.Time, failed bool) {
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	result.ResponseTimeMS = elapsed

	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics.TotalRequests++
	switch result.ModelUsed {
	case llm.BackendCloud:
		r.metrics.CloudRequests++
	case llm.BackendLocal:
		r.metrics.LocalRequests++
	case rules.ModelName:
		r.metrics.RuleRequests++
	}
	if failed {
		r.metrics.Failures++
	}

	n := float64(r.metrics.TotalRequests)
	r.metrics.AvgResponseTimeMS = (r.metrics.AvgResponseTimeMS*(n-1) + elapsed) / n
}
