package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Equal(t, 0, stats.TotalReviews)
	assert.Equal(t, 0.0, stats.AverageRating)
	assert.Empty(t, stats.CommonTopics)
}

func TestComputeStats_SentimentBuckets(t *testing.T) {
	reviews := []*storage.Review{
		{Rating: 5, Title: "a", Text: "b"},
		{Rating: 4, Title: "a", Text: "b"},
		{Rating: 3, Title: "a", Text: "b"},
		{Rating: 2, Title: "a", Text: "b"},
		{Rating: 1.5, Title: "a", Text: "b"},
	}

	stats := ComputeStats(reviews)

	assert.Equal(t, 5, stats.TotalReviews)
	assert.InDelta(t, 3.1, stats.AverageRating, 0.001)
	assert.Equal(t, 2, stats.Sentiment.Positive)
	assert.Equal(t, 1, stats.Sentiment.Neutral)
	assert.Equal(t, 2, stats.Sentiment.Negative)
}

func TestComputeStats_CommonTopics(t *testing.T) {
	reviews := []*storage.Review{
		{Rating: 4, Title: "Comfort first", Text: "comfort comfort economy"},
		{Rating: 3, Title: "Economy", Text: "economy matters and comfort helps"},
	}

	stats := ComputeStats(reviews)

	assert.Equal(t, "comfort", stats.CommonTopics[0])
	assert.Equal(t, "economy", stats.CommonTopics[1])
}

func TestComputeStats_SkipsShortAndStopWords(t *testing.T) {
	reviews := []*storage.Review{
		{Rating: 4, Title: "", Text: "this that with car the an is handling handling"},
	}

	stats := ComputeStats(reviews)

	assert.Equal(t, []string{"handling"}, stats.CommonTopics)
}

func TestComputeStats_TopicsCappedAtTen(t *testing.T) {
	reviews := []*storage.Review{
		{Rating: 4, Text: "alpha bravo charlie delta echoes foxtrot golfing hotels indigo juliet kilos limas"},
	}

	stats := ComputeStats(reviews)

	assert.Len(t, stats.CommonTopics, 10)
}
