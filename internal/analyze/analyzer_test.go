package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_Analyze_ProsAndConsRoundTrip(t *testing.T) {
	a := NewAnalyzer()

	text := "Here is my take.\nPros:\n- A\n- B\nCons:\n- C\nOverall a solid choice."
	result := a.Analyze(text)

	assert.Equal(t, []string{"A", "B"}, result.Pros)
	assert.Equal(t, []string{"C"}, result.Cons)
}

func TestAnalyzer_Analyze_NumberedBullets(t *testing.T) {
	a := NewAnalyzer()

	text := "Advantages:\n1. Smooth ride\n2. Low maintenance\nDrawbacks:\n1. Pricey"
	result := a.Analyze(text)

	assert.Equal(t, []string{"Smooth ride", "Low maintenance"}, result.Pros)
	assert.Equal(t, []string{"Pricey"}, result.Cons)
}

func TestAnalyzer_Analyze_SentimentCountsDistinctKeywords(t *testing.T) {
	a := NewAnalyzer()

	// "great" appears twice but counts once; "good" adds a second positive.
	result := a.Analyze("This is a great car. Really great. Good value too.")

	assert.Equal(t, 2, result.Sentiment.Positive)
	assert.Equal(t, 0, result.Sentiment.Negative)
	assert.Equal(t, 0, result.Sentiment.Neutral)
}

func TestAnalyzer_Analyze_MixedSentiment(t *testing.T) {
	a := NewAnalyzer()

	result := a.Analyze("Excellent engine but a disappointing transmission issue.")

	assert.Equal(t, 1, result.Sentiment.Positive)
	assert.Equal(t, 2, result.Sentiment.Negative)
	assert.Equal(t, 0, result.Sentiment.Neutral)
}

func TestAnalyzer_Analyze_NeutralWhenNoKeywords(t *testing.T) {
	a := NewAnalyzer()

	result := a.Analyze("The vehicle has four wheels and a steering column.")

	assert.Equal(t, Sentiment{Neutral: 1}, result.Sentiment)
}

func TestAnalyzer_Analyze_EmptyTextNeverFails(t *testing.T) {
	a := NewAnalyzer()

	for _, text := range []string{"", "   ", "\n\n"} {
		result := a.Analyze(text)
		assert.Equal(t, Sentiment{Neutral: 1}, result.Sentiment)
		assert.Empty(t, result.Pros)
		assert.Empty(t, result.Cons)
		assert.Nil(t, result.Rating)
	}
}

func TestAnalyzer_Analyze_RatingOutOfFive(t *testing.T) {
	a := NewAnalyzer()

	result := a.Analyze("I would give it 4.5 out of 5 overall.")

	require.NotNil(t, result.Rating)
	assert.InDelta(t, 4.5, *result.Rating, 0.001)
}

func TestAnalyzer_Analyze_RatingSlashForm(t *testing.T) {
	a := NewAnalyzer()

	result := a.Analyze("Solid 4/5 for comfort, maybe 3/5 for tech.")

	require.NotNil(t, result.Rating)
	assert.InDelta(t, 4.0, *result.Rating, 0.001)
}

func TestAnalyzer_Analyze_NoRating(t *testing.T) {
	a := NewAnalyzer()

	result := a.Analyze("A fine car with no numeric verdict.")

	assert.Nil(t, result.Rating)
}

func TestNeutral(t *testing.T) {
	result := Neutral()

	assert.Equal(t, 1, result.Sentiment.Neutral)
	assert.Empty(t, result.Pros)
	assert.Empty(t, result.Cons)
}
