// Package handlers provides HTTP handlers for the Chat Engine API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/astra-ai/astra/libs/chat-engine/internal/chat"
	"github.com/astra-ai/astra/libs/chat-engine/internal/llm"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
)

// ChatHandler handles conversational query requests.
type ChatHandler struct {
	logger   *observability.Logger
	router   *chat.Router
	backends []llm.Backend
}

// NewChatHandler creates a new chat handler. Backends are reported in the
// metrics endpoint; nil entries are skipped.
func NewChatHandler(logger *observability.Logger, router *chat.Router, backends ...llm.Backend) *ChatHandler {
	var live []llm.Backend
	for _, b := range backends {
		if b != nil {
			live = append(live, b)
		}
	}
	return &ChatHandler{
		logger:   logger,
		router:   router,
		backends: live,
	}
}

// ChatRequestDTO represents the API request for a chat turn.
type ChatRequestDTO struct {
	Message             string        `json:"message"`
	CarID               *int64        `json:"car_id,omitempty"`
	UserID              string        `json:"user_id,omitempty"`
	ConversationHistory []ExchangeDTO `json:"conversation_history,omitempty"`
	ForceModel          string        `json:"force_model,omitempty"`
}

// ExchangeDTO represents one prior user/assistant turn pair.
type ExchangeDTO struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// BackendStatusDTO reports one backend's health and counters.
type BackendStatusDTO struct {
	Status       string  `json:"status"`
	Detail       string  `json:"detail,omitempty"`
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// MetricsResponseDTO represents the metrics endpoint payload.
type MetricsResponseDTO struct {
	Metrics  chat.Metrics                `json:"metrics"`
	Backends map[string]BackendStatusDTO `json:"backends"`
}

// SetModelRequestDTO represents the model pin request.
type SetModelRequestDTO struct {
	ModelName string `json:"model_name"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.ForceModel != "" && reqDTO.ForceModel != llm.BackendCloud && reqDTO.ForceModel != llm.BackendLocal {
		h.writeError(w, http.StatusBadRequest, "invalid force_model", reqDTO.ForceModel)
		return
	}

	req := chat.Request{
		Message:    reqDTO.Message,
		UserID:     reqDTO.UserID,
		VehicleID:  reqDTO.CarID,
		ForceModel: reqDTO.ForceModel,
	}
	for _, turn := range reqDTO.ConversationHistory {
		req.History = append(req.History, llm.Exchange{
			User:      turn.User,
			Assistant: turn.Assistant,
		})
	}

	result, err := h.router.RouteQuery(ctx, req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Chat routing failed")
		h.writeError(w, http.StatusInternalServerError, "chat failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Metrics handles GET /api/chat/metrics.
func (h *ChatHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := MetricsResponseDTO{
		Metrics:  h.router.Metrics(),
		Backends: make(map[string]BackendStatusDTO, len(h.backends)),
	}
	for _, b := range h.backends {
		health := b.HealthCheck(ctx)
		m := b.Metrics()
		resp.Backends[b.Name()] = BackendStatusDTO{
			Status:       health.Status,
			Detail:       health.Detail,
			Requests:     m.Requests,
			Errors:       m.Errors,
			AvgLatencyMS: m.AvgLatencyMS,
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// SetModel handles POST /api/chat/set_model.
func (h *ChatHandler) SetModel(w http.ResponseWriter, r *http.Request) {
	var reqDTO SetModelRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.router.SetForceModel(reqDTO.ModelName); err != nil {
		if errors.Is(err, chat.ErrInvalidModel) {
			h.writeError(w, http.StatusBadRequest, "invalid model name", reqDTO.ModelName)
			return
		}
		h.logger.Error().Err(err).Msg("Set model failed")
		h.writeError(w, http.StatusInternalServerError, "set model failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":       "ok",
		"forced_model": h.router.ForceModel(),
	})
}

func (h *ChatHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *ChatHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
