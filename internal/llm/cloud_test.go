package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astra-ai/astra/libs/chat-engine/internal/config"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:       "error",
		Format:      "json",
		ServiceName: "chat-engine-test",
	})
}

func cloudConfig(baseURL string) config.CloudConfig {
	return config.CloudConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   1000,
		Timeout:     2 * time.Second,
	}
}

func TestCloudClient_Generate_Success(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "The Camry gets 32 MPG."}},
			},
		})
	}))
	defer server.Close()

	client := NewCloudClient(cloudConfig(server.URL), testLogger())
	result, err := client.Generate(context.Background(), Request{
		SystemPrompt: "You are an automotive assistant.",
		UserMessage:  "What mileage does the Camry get?",
		History: []Exchange{
			{User: "Hi", Assistant: "Hello! How can I help?"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "The Camry gets 32 MPG.", result.Text)
	assert.Equal(t, "gpt-3.5-turbo", result.Model)
	assert.False(t, result.Degraded)

	// system + 2 history messages + current user message
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[3].Role)
	assert.Equal(t, "What mileage does the Camry get?", captured.Messages[3].Content)
}

func TestCloudClient_Generate_HistoryTruncatedToTenTurns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// system + 10 turns * 2 + current user
		assert.Len(t, req.Messages, 22)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	var history []Exchange
	for i := 0; i < 15; i++ {
		history = append(history, Exchange{User: "q", Assistant: "a"})
	}

	client := NewCloudClient(cloudConfig(server.URL), testLogger())
	_, err := client.Generate(context.Background(), Request{UserMessage: "hi", History: history})

	require.NoError(t, err)
}

func TestCloudClient_Generate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCloudClient(cloudConfig(server.URL), testLogger())
	_, err := client.Generate(context.Background(), Request{UserMessage: "hi"})

	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestCloudClient_Generate_QuotaErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"message": "You exceeded your current quota",
				"type":    "insufficient_quota",
			},
		})
	}))
	defer server.Close()

	client := NewCloudClient(cloudConfig(server.URL), testLogger())
	_, err := client.Generate(context.Background(), Request{UserMessage: "hi"})

	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestCloudClient_Generate_NoAPIKey(t *testing.T) {
	cfg := cloudConfig("http://localhost:1")
	cfg.APIKey = ""

	client := NewCloudClient(cfg, testLogger())
	_, err := client.Generate(context.Background(), Request{UserMessage: "hi"})

	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestCloudClient_Metrics_TracksErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCloudClient(cloudConfig(server.URL), testLogger())
	client.Generate(context.Background(), Request{UserMessage: "hi"})
	client.Generate(context.Background(), Request{UserMessage: "hi"})

	m := client.Metrics()
	assert.Equal(t, int64(2), m.Requests)
	assert.Equal(t, int64(2), m.Errors)
}

func TestCloudClient_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewCloudClient(cloudConfig(server.URL), testLogger())
	health := client.HealthCheck(context.Background())

	assert.Equal(t, "online", health.Status)
}

func TestCloudClient_HealthCheck_Offline(t *testing.T) {
	cfg := cloudConfig("http://localhost:1")
	cfg.APIKey = ""

	client := NewCloudClient(cfg, testLogger())
	health := client.HealthCheck(context.Background())

	assert.Equal(t, "offline", health.Status)
}
