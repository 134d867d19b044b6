// Package review generates vehicle reviews through the cloud backend, with a
// deterministic-given-seed mock for offline operation, and computes summary
// statistics over stored reviews.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/astra-ai/astra/libs/chat-engine/internal/llm"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

// Generator produces reviews for vehicles. When no backend is available (or
// a generation fails) it falls back to the mock sampler.
type Generator struct {
	backend llm.Backend
	logger  *observability.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a review generator. backend may be nil; rng may be
// nil for a time-seeded source.
func NewGenerator(backend llm.Backend, rng *rand.Rand, logger *observability.Logger) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		backend: backend,
		rng:     rng,
		logger:  logger.WithOperation("review_generator"),
	}
}

// reviewPayload is the JSON shape requested from the backend.
type reviewPayload struct {
	Title  string   `json:"review_title"`
	Text   string   `json:"review_text"`
	Rating float64  `json:"rating"`
	Author string   `json:"author"`
	Pros   []string `json:"pros"`
	Cons   []string `json:"cons"`
}

// Generate produces a review for the vehicle. The cloud path asks for a
// strict JSON document; anything unparseable falls back to the mock sampler
// so the endpoint always succeeds.
func (g *Generator) Generate(ctx context.Context, v *storage.Vehicle) (*storage.Review, error) {
	if g.backend != nil {
		review, err := g.generateWithBackend(ctx, v)
		if err == nil {
			return review, nil
		}
		g.logger.Warn().Err(err).Int64("car_id", v.ID).Msg("backend review generation failed, using mock")
	}
	return g.Mock(v), nil
}

func (g *Generator) generateWithBackend(ctx context.Context, v *storage.Vehicle) (*storage.Review, error) {
	req := llm.Request{
		SystemPrompt: "You write realistic, balanced car reviews. Respond with a single JSON object and nothing else.",
		UserMessage: fmt.Sprintf(
			`Write a review of the %s (%s engine, %s, %s MPG, $%.0f). Respond with JSON: {"review_title": string, "review_text": string (2-3 paragraphs), "rating": number between 1 and 5, "author": a plausible username, "pros": [3 strings], "cons": [2 strings]}`,
			v.FullName(), v.EngineInfo, v.Transmission, trimNumber(v.MPG), v.Price,
		),
	}

	result, err := g.backend.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.Degraded {
		return nil, fmt.Errorf("backend returned degraded response")
	}

	payload, err := parseReviewJSON(result.Text)
	if err != nil {
		return nil, err
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		return nil, fmt.Errorf("rating %v out of range", payload.Rating)
	}

	return &storage.Review{
		VehicleID:  v.ID,
		Title:      payload.Title,
		Text:       payload.Text,
		Rating:     payload.Rating,
		Author:     payload.Author,
		Pros:       payload.Pros,
		Cons:       payload.Cons,
		ReviewDate: time.Now(),
	}, nil
}

// parseReviewJSON tolerates markdown code fences and leading prose around
// the JSON object.
func parseReviewJSON(text string) (*reviewPayload, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var payload reviewPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parse review JSON: %w", err)
	}
	if payload.Title == "" || payload.Text == "" {
		return nil, fmt.Errorf("review JSON missing title or text")
	}
	return &payload, nil
}

func trimNumber(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}
