package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

// Manufacturer reputation weights shift the sentiment draw. Values are added
// to the positive weight (negative values favor critical reviews).
var manufacturerBias = map[string]int{
	"tesla":      2,
	"toyota":     2,
	"lexus":      2,
	"honda":      1,
	"fiat":       -2,
	"mitsubishi": -1,
}

type sentimentClass int

const (
	sentimentNegative sentimentClass = iota
	sentimentNeutral
	sentimentPositive
)

var mockTitles = map[sentimentClass][]string{
	sentimentPositive: {
		"Exceeded my expectations",
		"A fantastic daily driver",
		"Would absolutely buy again",
	},
	sentimentNeutral: {
		"Does the job, nothing more",
		"A reasonable choice with caveats",
		"Solid but unremarkable",
	},
	sentimentNegative: {
		"Expected more for the money",
		"Too many compromises",
		"Look elsewhere",
	},
}

var mockOpenings = map[sentimentClass][]string{
	sentimentPositive: {
		"After six months of ownership, the %s keeps impressing me.",
		"I cross-shopped half the segment and the %s still won me over.",
	},
	sentimentNeutral: {
		"The %s is a sensible pick, though it rarely excites.",
		"My time with the %s has been fine, if uneventful.",
	},
	sentimentNegative: {
		"I wanted to like the %s, but the honeymoon ended quickly.",
		"The %s looked good on paper; living with it is another story.",
	},
}

var mockBodies = map[sentimentClass][]string{
	sentimentPositive: {
		"The %s pulls smoothly and the %s never hunts for the right gear. Fuel stops are pleasantly rare.",
		"Build quality feels a class above, and the %s paired with the %s makes commuting genuinely enjoyable.",
	},
	sentimentNeutral: {
		"The %s is adequate around town and the %s is inoffensive. Fuel economy lands where the brochure says.",
		"Nothing about the %s or the %s stands out, for better or worse.",
	},
	sentimentNegative: {
		"The %s feels strained under load and the %s is slow to respond. Real-world economy trails the sticker.",
		"Between the coarse %s and the indecisive %s, every drive reminds me what I paid.",
	},
}

var mockClosings = map[sentimentClass][]string{
	sentimentPositive: {"Highly recommended if it fits your budget.", "Easy to recommend to friends and family."},
	sentimentNeutral:  {"Worth a test drive, but shop around.", "Fine for the price, just manage expectations."},
	sentimentNegative: {"I would look at the competition first.", "Hard to recommend at this price."},
}

var mockAuthors = []string{
	"DailyCommuter88", "GarageTinkerer", "RoadTripFamily", "FirstTimeBuyer",
	"HighMileageClub", "WeekendDriver", "PracticalParent", "TorqueCurious",
}

var mockProsPool = []string{
	"Comfortable ride", "Intuitive controls", "Strong resale value",
	"Good fuel economy", "Spacious interior", "Smooth powertrain",
	"Well-equipped base trim", "Quiet cabin",
}

var mockConsPool = []string{
	"Road noise at highway speed", "Infotainment lag", "Firm rear seats",
	"Small trunk opening", "Pricey options", "Average warranty",
}

// Mock samples a review without calling any backend. Output is
// deterministic for a fixed seed and vehicle.
func (g *Generator) Mock(v *storage.Vehicle) *storage.Review {
	g.mu.Lock()
	defer g.mu.Unlock()

	sentiment := g.drawSentiment(v)

	title := pickLocked(g, mockTitles[sentiment])
	opening := fmt.Sprintf(pickLocked(g, mockOpenings[sentiment]), v.FullName())
	body := fmt.Sprintf(pickLocked(g, mockBodies[sentiment]), engineWord(v), transmissionWord(v))
	closing := pickLocked(g, mockClosings[sentiment])

	return &storage.Review{
		VehicleID:  v.ID,
		Title:      title,
		Text:       opening + "\n\n" + body + " " + closing,
		Rating:     g.drawRating(sentiment),
		Author:     pickLocked(g, mockAuthors),
		Pros:       g.sampleLocked(mockProsPool, 3),
		Cons:       g.sampleLocked(mockConsPool, 2),
		ReviewDate: time.Now(),
	}
}

// drawSentiment weights the draw by manufacturer reputation and vehicle age.
func (g *Generator) drawSentiment(v *storage.Vehicle) sentimentClass {
	positive, negative := 3, 2

	positive += manufacturerBias[strings.ToLower(v.Manufacturer)]
	if positive < 1 {
		negative += 1 - positive
		positive = 1
	}

	age := time.Now().Year() - v.Year
	switch {
	case age <= 1:
		positive++
	case age >= 8:
		negative++
	}

	neutral := 3
	total := positive + neutral + negative
	draw := g.rng.Intn(total)
	switch {
	case draw < positive:
		return sentimentPositive
	case draw < positive+neutral:
		return sentimentNeutral
	default:
		return sentimentNegative
	}
}

// drawRating maps sentiment onto its rating band, in half-star steps.
func (g *Generator) drawRating(s sentimentClass) float64 {
	var low, high float64
	switch s {
	case sentimentPositive:
		low, high = 4.0, 5.0
	case sentimentNeutral:
		low, high = 2.5, 4.0
	default:
		low, high = 1.0, 2.5
	}
	steps := int((high-low)/0.5) + 1
	return low + 0.5*float64(g.rng.Intn(steps))
}

func pickLocked(g *Generator, options []string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *Generator) sampleLocked(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, idx := range g.rng.Perm(len(pool))[:n] {
		out = append(out, pool[idx])
	}
	return out
}

func engineWord(v *storage.Vehicle) string {
	if v.EngineInfo != "" {
		return v.EngineInfo
	}
	return "engine"
}

func transmissionWord(v *storage.Vehicle) string {
	if v.Transmission != "" {
		return v.Transmission
	}
	return "transmission"
}
