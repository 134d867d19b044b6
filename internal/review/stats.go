package review

import (
	"regexp"
	"sort"
	"strings"

	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

// SentimentBuckets counts reviews by rating band: 4 and up is positive, 2
// and below is negative, everything between is neutral.
type SentimentBuckets struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Stats summarizes a vehicle's reviews.
type Stats struct {
	AverageRating float64          `json:"average_rating"`
	TotalReviews  int              `json:"total_reviews"`
	Sentiment     SentimentBuckets `json:"sentiment"`
	CommonTopics  []string         `json:"common_topics"`
}

const maxCommonTopics = 10

var topicWord = regexp.MustCompile(`[a-z]{4,}`)

// stopWords are frequent words that carry no topical signal.
var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "have": true, "from": true,
	"they": true, "were": true, "been": true, "there": true, "would": true,
	"about": true, "after": true, "still": true, "every": true, "really": true,
	"when": true, "what": true, "which": true, "their": true, "more": true,
}

// ComputeStats aggregates ratings, sentiment buckets and the most common
// topic words across the reviews. An empty slice yields zeroed stats.
func ComputeStats(reviews []*storage.Review) Stats {
	stats := Stats{TotalReviews: len(reviews)}
	if len(reviews) == 0 {
		return stats
	}

	var sum float64
	counts := make(map[string]int)
	for _, r := range reviews {
		sum += r.Rating
		switch {
		case r.Rating >= 4:
			stats.Sentiment.Positive++
		case r.Rating <= 2:
			stats.Sentiment.Negative++
		default:
			stats.Sentiment.Neutral++
		}

		for _, w := range topicWord.FindAllString(strings.ToLower(r.Title+" "+r.Text), -1) {
			if !stopWords[w] {
				counts[w]++
			}
		}
	}
	stats.AverageRating = sum / float64(len(reviews))
	stats.CommonTopics = topWords(counts, maxCommonTopics)
	return stats
}

// topWords returns the n highest-count words, ties broken alphabetically.
func topWords(counts map[string]int, n int) []string {
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}
