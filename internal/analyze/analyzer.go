// Package analyze extracts structured signals from generated responses:
// sentiment keyword counts, pros/cons bullet lists and an explicit rating.
package analyze

import (
	"regexp"
	"strconv"
	"strings"
)

// Sentiment holds keyword occurrence counts. At least one of the three
// counters is always non-zero: when nothing matches, Neutral is set to 1.
type Sentiment struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Result is the analysis of a single response text.
type Result struct {
	Sentiment Sentiment `json:"sentiment"`
	Pros      []string  `json:"pros"`
	Cons      []string  `json:"cons"`
	Rating    *float64  `json:"rating,omitempty"`
}

// Neutral returns the analysis used for degraded or empty responses.
func Neutral() Result {
	return Result{Sentiment: Sentiment{Neutral: 1}}
}

var (
	positiveKeywords = []string{"excellent", "great", "good", "reliable", "recommend", "impressive", "best"}
	negativeKeywords = []string{"poor", "bad", "avoid", "issue", "problem", "disappointing", "worst"}

	prosHeader = regexp.MustCompile(`(?i)(?:pros|advantages|benefits|strengths)[:\s]+`)
	consHeader = regexp.MustCompile(`(?i)(?:cons|disadvantages|drawbacks|limitations)[:\s]+`)

	bulletLine = regexp.MustCompile(`^\s*(?:[-•*]|\d+\.)\s*(.+)$`)

	ratingPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:out of|/)\s*5`)

	keywordBoundary = regexp.MustCompile(`[a-z]+`)
)

// Analyzer extracts sentiment, pros/cons and ratings from response text.
type Analyzer struct{}

// NewAnalyzer creates a response analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze inspects the response text. It never fails: empty or unparseable
// input yields a neutral result with empty lists.
func (a *Analyzer) Analyze(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Neutral()
	}

	result := Result{
		Pros: extractSection(text, prosHeader),
		Cons: extractSection(text, consHeader),
	}

	lower := strings.ToLower(text)
	words := wordSet(lower)

	for _, kw := range positiveKeywords {
		if words[kw] {
			result.Sentiment.Positive++
		}
	}
	for _, kw := range negativeKeywords {
		if words[kw] {
			result.Sentiment.Negative++
		}
	}
	if result.Sentiment.Positive == 0 && result.Sentiment.Negative == 0 {
		result.Sentiment.Neutral = 1
	}

	if m := ratingPattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 && v <= 5 {
			result.Rating = &v
		}
	}

	return result
}

// extractSection collects bullet or numbered lines following a section
// header, stopping at the first line that is neither.
func extractSection(text string, header *regexp.Regexp) []string {
	loc := header.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	var items []string
	lines := strings.Split(text[loc[1]:], "\n")
	for i, line := range lines {
		m := bulletLine.FindStringSubmatch(line)
		if m == nil {
			// The header and the first item often share a line.
			if i == 0 && strings.TrimSpace(line) != "" {
				continue
			}
			if strings.TrimSpace(line) == "" && len(items) == 0 {
				continue
			}
			break
		}
		item := strings.TrimSpace(m[1])
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// wordSet tokenizes lowercase text into a set of alphabetic words so that
// each keyword is counted at most once regardless of repetition.
func wordSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range keywordBoundary.FindAllString(lower, -1) {
		set[w] = true
	}
	return set
}
