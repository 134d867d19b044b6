package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/astra-ai/astra/libs/chat-engine/internal/config"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
)

// maxCloudHistoryTurns bounds how many prior exchanges are replayed to the
// hosted API.
const maxCloudHistoryTurns = 10

// CloudClient talks to a hosted OpenAI-compatible chat-completion API.
type CloudClient struct {
	cfg        config.CloudConfig
	httpClient *http.Client
	logger     *observability.Logger
	tracker    tracker
}

var _ Backend = (*CloudClient)(nil)

// NewCloudClient creates a cloud backend from configuration.
func NewCloudClient(cfg config.CloudConfig, logger *observability.Logger) *CloudClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CloudClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithBackend(BackendCloud),
	}
}

// Name returns the routing name of the backend.
func (c *CloudClient) Name() string { return BackendCloud }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends the system prompt, recent history and user message as a
// chat-completion request.
func (c *CloudClient) Generate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	result, err := c.generate(ctx, req)
	c.tracker.record(time.Since(start), err != nil)
	return result, err
}

func (c *CloudClient) generate(ctx context.Context, req Request) (Result, error) {
	if c.cfg.APIKey == "" {
		return Result{}, fmt.Errorf("cloud backend: no API key configured: %w", ErrBackendUnavailable)
	}

	messages := []chatMessage{{Role: "system", Content: req.SystemPrompt}}
	history := req.History
	if len(history) > maxCloudHistoryTurns {
		history = history[len(history)-maxCloudHistoryTurns:]
	}
	for _, turn := range history {
		messages = append(messages,
			chatMessage{Role: "user", Content: turn.User},
			chatMessage{Role: "assistant", Content: turn.Assistant},
		)
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserMessage})

	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal chat request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("cloud backend request: %w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Result{}, fmt.Errorf("cloud backend: status %d: %w", resp.StatusCode, ErrRateLimited)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, fmt.Errorf("parse chat response (status %d): %w", resp.StatusCode, err)
	}

	if parsed.Error != nil {
		if strings.Contains(strings.ToLower(parsed.Error.Message), "quota") ||
			strings.Contains(strings.ToLower(parsed.Error.Type), "quota") {
			return Result{}, fmt.Errorf("cloud backend: %s: %w", parsed.Error.Message, ErrRateLimited)
		}
		return Result{}, fmt.Errorf("cloud backend error: %s", parsed.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("cloud backend: unexpected status %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return Result{}, fmt.Errorf("cloud backend: empty choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	c.logger.Debug().Int("response_chars", len(text)).Msg("cloud generation complete")

	return Result{Text: text, Model: c.cfg.Model}, nil
}

// HealthCheck reports online when the models endpoint answers, offline when
// no API key is configured.
func (c *CloudClient) HealthCheck(ctx context.Context) Health {
	if c.cfg.APIKey == "" {
		return Health{Status: "offline", Detail: "no API key configured"}
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/models"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Health{Status: "error", Detail: err.Error()}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Health{Status: "error", Detail: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Health{Status: "error", Detail: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return Health{Status: "online"}
}

// Metrics returns a snapshot of the backend's counters.
func (c *CloudClient) Metrics() Metrics {
	return c.tracker.snapshot()
}
