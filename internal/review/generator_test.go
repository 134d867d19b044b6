package review

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astra-ai/astra/libs/chat-engine/internal/llm"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

func reviewTestLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level: "error", Format: "json", ServiceName: "chat-engine-test",
	})
}

func reviewVehicle() *storage.Vehicle {
	return &storage.Vehicle{
		ID:           3,
		Manufacturer: "Toyota",
		Model:        "Camry",
		Year:         2023,
		Price:        28855,
		EngineInfo:   "2.5L I4",
		Transmission: "automatic",
		FuelType:     "gasoline",
		MPG:          32,
		BodyType:     "sedan",
	}
}

const validReviewJSON = `{"review_title": "Great commuter", "review_text": "Two solid paragraphs.", "rating": 4.5, "author": "DailyDriver", "pros": ["Comfort", "Economy", "Value"], "cons": ["Road noise", "Slow infotainment"]}`

func TestGenerator_Generate_ParsesBackendJSON(t *testing.T) {
	backend := llm.NewMockBackend(llm.BackendCloud, "Here you go:\n```json\n"+validReviewJSON+"\n```")
	g := NewGenerator(backend, rand.New(rand.NewSource(1)), reviewTestLogger())

	review, err := g.Generate(context.Background(), reviewVehicle())

	require.NoError(t, err)
	assert.Equal(t, "Great commuter", review.Title)
	assert.InDelta(t, 4.5, review.Rating, 0.001)
	assert.Equal(t, int64(3), review.VehicleID)
	assert.Len(t, review.Pros, 3)
	assert.Len(t, review.Cons, 2)
}

func TestGenerator_Generate_FallsBackToMockOnBackendError(t *testing.T) {
	backend := llm.NewMockBackend(llm.BackendCloud, "")
	backend.Err = errors.New("backend down")
	g := NewGenerator(backend, rand.New(rand.NewSource(1)), reviewTestLogger())

	review, err := g.Generate(context.Background(), reviewVehicle())

	require.NoError(t, err)
	assert.NotEmpty(t, review.Title)
	assert.NotEmpty(t, review.Text)
	assert.GreaterOrEqual(t, review.Rating, 1.0)
	assert.LessOrEqual(t, review.Rating, 5.0)
}

func TestGenerator_Generate_FallsBackOnUnparseableText(t *testing.T) {
	backend := llm.NewMockBackend(llm.BackendCloud, "Sorry, I can only answer in prose.")
	g := NewGenerator(backend, rand.New(rand.NewSource(1)), reviewTestLogger())

	review, err := g.Generate(context.Background(), reviewVehicle())

	require.NoError(t, err)
	assert.NotEmpty(t, review.Title)
}

func TestGenerator_Generate_RejectsOutOfRangeRating(t *testing.T) {
	backend := llm.NewMockBackend(llm.BackendCloud,
		`{"review_title": "t", "review_text": "x", "rating": 11, "author": "a", "pros": [], "cons": []}`)
	g := NewGenerator(backend, rand.New(rand.NewSource(1)), reviewTestLogger())

	review, err := g.Generate(context.Background(), reviewVehicle())

	// Out-of-range payloads fall back to the mock sampler.
	require.NoError(t, err)
	assert.LessOrEqual(t, review.Rating, 5.0)
}

func TestGenerator_Generate_NoBackendUsesMock(t *testing.T) {
	g := NewGenerator(nil, rand.New(rand.NewSource(1)), reviewTestLogger())

	review, err := g.Generate(context.Background(), reviewVehicle())

	require.NoError(t, err)
	assert.Contains(t, review.Text, "2023 Toyota Camry")
}

func TestGenerator_Mock_DeterministicWithSeed(t *testing.T) {
	first := NewGenerator(nil, rand.New(rand.NewSource(9)), reviewTestLogger()).Mock(reviewVehicle())
	second := NewGenerator(nil, rand.New(rand.NewSource(9)), reviewTestLogger()).Mock(reviewVehicle())

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Rating, second.Rating)
	assert.Equal(t, first.Pros, second.Pros)
}

func TestGenerator_Mock_RatingBandsMatchSentiment(t *testing.T) {
	g := NewGenerator(nil, rand.New(rand.NewSource(3)), reviewTestLogger())

	for i := 0; i < 50; i++ {
		review := g.Mock(reviewVehicle())
		assert.GreaterOrEqual(t, review.Rating, 1.0)
		assert.LessOrEqual(t, review.Rating, 5.0)
		assert.Len(t, review.Pros, 3)
		assert.Len(t, review.Cons, 2)
	}
}

func TestParseReviewJSON_MissingFields(t *testing.T) {
	_, err := parseReviewJSON(`{"rating": 4}`)

	assert.Error(t, err)
}
