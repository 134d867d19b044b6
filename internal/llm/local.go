package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/astra-ai/astra/libs/chat-engine/internal/config"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
)

const (
	// maxLocalHistoryTurns bounds the flattened transcript; small local
	// models degrade quickly with long prompts.
	maxLocalHistoryTurns = 6

	// maxLocalSystemPromptChars truncates the system prompt for the same
	// reason.
	maxLocalSystemPromptChars = 300

	// maxLocalTimeout is the hard ceiling on a local generation, regardless
	// of configuration.
	maxLocalTimeout = 15 * time.Second
)

// degradedLocalResponse is returned as ordinary text when the local model
// cannot answer in time.
const degradedLocalResponse = "I'm sorry, I'm having trouble generating a detailed response right now. " +
	"Could you try rephrasing your question, or ask about a specific vehicle in our inventory?"

// assistantEcho strips a leading "Assistant:" the model sometimes echoes
// back from the transcript format.
var assistantEcho = regexp.MustCompile(`^(\s*Assistant:?\s*)`)

// LocalClient talks to a self-hosted completion server (Ollama-compatible).
type LocalClient struct {
	cfg        config.LocalConfig
	httpClient *http.Client
	logger     *observability.Logger
	tracker    tracker
}

var _ Backend = (*LocalClient)(nil)

// NewLocalClient creates a local backend. The configured model is checked
// against the server's registry; a missing model is logged but not fatal, so
// the service can start before the model finishes pulling.
func NewLocalClient(cfg config.LocalConfig, logger *observability.Logger) *LocalClient {
	timeout := cfg.Timeout
	if timeout <= 0 || timeout > maxLocalTimeout {
		timeout = maxLocalTimeout
	}
	c := &LocalClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithBackend(BackendLocal),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.validateModel(ctx); err != nil {
		c.logger.Warn().Err(err).Str("model", cfg.Model).Msg("local model validation failed")
	}
	return c
}

// Name returns the routing name of the backend.
func (c *LocalClient) Name() string { return BackendLocal }

type localGenerateRequest struct {
	Model   string       `json:"model"`
	Prompt  string       `json:"prompt"`
	Stream  bool         `json:"stream"`
	Options localOptions `json:"options"`
}

type localOptions struct {
	Temperature   float64 `json:"temperature"`
	NumPredict    int     `json:"num_predict"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	TopK          int     `json:"top_k"`
	TopP          float64 `json:"top_p"`
}

type localGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type localTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate flattens the conversation into a Human:/Assistant: transcript and
// asks the local model to continue it. Timeouts and server errors yield a
// degraded result rather than an error; the router decides whether to try
// the other backend.
func (c *LocalClient) Generate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	result, err := c.generate(ctx, req)
	failed := err != nil || result.Degraded
	c.tracker.record(time.Since(start), failed)
	return result, err
}

func (c *LocalClient) generate(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(localGenerateRequest{
		Model:  c.cfg.Model,
		Prompt: c.buildPrompt(req),
		Stream: false,
		Options: localOptions{
			Temperature:   c.cfg.Temperature,
			NumPredict:    c.cfg.MaxTokens,
			RepeatPenalty: c.cfg.RepeatPenalty,
			TopK:          c.cfg.TopK,
			TopP:          c.cfg.TopP,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal generate request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{}, err
		}
		c.logger.Warn().Err(err).Msg("local generation failed, returning degraded response")
		return Result{Text: degradedLocalResponse, Model: c.cfg.Model, Degraded: true}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn().Int("status", resp.StatusCode).Msg("local server returned non-OK status")
		return Result{Text: degradedLocalResponse, Model: c.cfg.Model, Degraded: true}, nil
	}

	var parsed localGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Warn().Err(err).Msg("local response unparseable")
		return Result{Text: degradedLocalResponse, Model: c.cfg.Model, Degraded: true}, nil
	}

	text := assistantEcho.ReplaceAllString(parsed.Response, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Text: degradedLocalResponse, Model: c.cfg.Model, Degraded: true}, nil
	}

	return Result{Text: text, Model: c.cfg.Model}, nil
}

// buildPrompt renders the system prompt and recent turns into the transcript
// format small completion models follow best.
func (c *LocalClient) buildPrompt(req Request) string {
	var sb strings.Builder

	system := req.SystemPrompt
	if len(system) > maxLocalSystemPromptChars {
		system = system[:maxLocalSystemPromptChars]
	}
	if system != "" {
		sb.WriteString(system)
		sb.WriteString("\n\n")
	}

	history := req.History
	if len(history) > maxLocalHistoryTurns {
		history = history[len(history)-maxLocalHistoryTurns:]
	}
	for _, turn := range history {
		fmt.Fprintf(&sb, "Human: %s\nAssistant: %s\n", turn.User, turn.Assistant)
	}
	fmt.Fprintf(&sb, "Human: %s\nAssistant:", req.UserMessage)

	return sb.String()
}

// validateModel checks the configured model against the server registry.
func (c *LocalClient) validateModel(ctx context.Context) error {
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/api/tags"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("local server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tags endpoint returned status %d", resp.StatusCode)
	}

	var tags localTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("parse tags response: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == c.cfg.Model || strings.SplitN(m.Name, ":", 2)[0] == c.cfg.Model {
			return nil
		}
	}
	return fmt.Errorf("model %q not present on local server", c.cfg.Model)
}

// HealthCheck probes the server's model registry.
func (c *LocalClient) HealthCheck(ctx context.Context) Health {
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/api/tags"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Health{Status: "error", Detail: err.Error()}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Health{Status: "offline", Detail: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Health{Status: "error", Detail: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return Health{Status: "online"}
}

// Metrics returns a snapshot of the backend's counters.
func (c *LocalClient) Metrics() Metrics {
	return c.tracker.snapshot()
}
