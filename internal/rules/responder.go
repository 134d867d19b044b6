// Package rules implements the deterministic template responder used for
// conversational niceties and for answering from stored vehicle attributes
// when no generative backend is available.
package rules

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/astra-ai/astra/libs/chat-engine/internal/classify"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

// ModelName is reported as the generating model for template responses.
const ModelName = "rule"

// Responder renders template responses from the knowledge tables. Variety
// comes from the injected random source; tests pass a seeded one.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResponder creates a responder. A nil source gets a time-seeded one.
func NewResponder(rng *rand.Rand) *Responder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Responder{rng: rng}
}

// Respond produces a template response for the classified query. It never
// fails: queries that fit no template get a generic automotive answer.
func (r *Responder) Respond(c classify.Classification, v *storage.Vehicle) string {
	switch {
	case c.Has("greeting"):
		return r.Greeting(v)
	case c.Has("farewell"):
		return r.Farewell(v)
	case v != nil && c.Has("fuel_economy"):
		return r.FuelEconomy(v)
	case v != nil && c.Has("specs"):
		return r.Specs(v)
	case v != nil:
		return r.Features(v)
	default:
		return r.Generic()
	}
}

// Greeting renders a salutation, personalized when a vehicle is in context.
func (r *Responder) Greeting(v *storage.Vehicle) string {
	if v != nil {
		return fmt.Sprintf("Hello! I'd be happy to help you learn about the %s. What would you like to know?", v.FullName())
	}
	return "Hello! I'm your automotive assistant. Ask me about any vehicle in our inventory, or about cars in general."
}

// Farewell renders a closing message.
func (r *Responder) Farewell(v *storage.Vehicle) string {
	if v != nil {
		return fmt.Sprintf("You're welcome! Feel free to come back with more questions about the %s or any other vehicle. Safe driving!", v.FullName())
	}
	return "You're welcome! Come back any time you have automotive questions. Safe driving!"
}

// FuelEconomy describes the vehicle's efficiency with a qualitative band and
// fuel-type caveats.
func (r *Responder) FuelEconomy(v *storage.Vehicle) string {
	if v.MPG <= 0 {
		return fmt.Sprintf("I don't have fuel economy figures for the %s on file. Would you like to hear about its other specifications instead?", v.FullName())
	}

	var sb strings.Builder
	mpg := trimNumber(v.MPG)

	if v.IsElectric() {
		fmt.Fprintf(&sb, "As an electric vehicle, the %s doesn't burn fuel; its efficiency is rated at %s MPGe (miles per gallon equivalent).", v.FullName(), mpg)
	} else {
		fmt.Fprintf(&sb, "The %s gets about %s MPG", v.FullName(), mpg)
		switch {
		case v.MPG > 30:
			sb.WriteString(", which is above average for its class.")
		case v.MPG > 25:
			sb.WriteString(", which is about average for its class.")
		default:
			sb.WriteString(". It balances fuel economy with performance.")
		}
	}

	switch strings.ToLower(v.FuelType) {
	case "diesel":
		sb.WriteString(" As a diesel, it delivers its best economy on the highway along with strong torque.")
	case "hybrid":
		sb.WriteString(" The hybrid system shines in stop-and-go city driving, where it leans on electric power.")
	case "electric":
		sb.WriteString(" Real-world range depends on temperature, speed and climate-control use.")
	}

	sb.WriteString(" Is fuel economy a priority for you?")
	return sb.String()
}

// Specs enumerates the vehicle's stored attributes, explains one of them and
// invites a comparison.
func (r *Responder) Specs(v *storage.Vehicle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are the key specifications for the %s:\n", v.FullName())

	if v.Price > 0 {
		fmt.Fprintf(&sb, "- Price: $%s\n", formatPrice(v.Price))
	}
	if v.EngineInfo != "" {
		fmt.Fprintf(&sb, "- Engine: %s\n", v.EngineInfo)
	}
	if v.Transmission != "" {
		fmt.Fprintf(&sb, "- Transmission: %s\n", v.Transmission)
	}
	if v.FuelType != "" {
		fmt.Fprintf(&sb, "- Fuel type: %s\n", v.FuelType)
	}
	if v.MPG > 0 {
		fmt.Fprintf(&sb, "- Fuel economy: %s MPG\n", trimNumber(v.MPG))
	}
	if v.BodyType != "" {
		fmt.Fprintf(&sb, "- Body type: %s\n", v.BodyType)
	}

	if note, ok := transmissionInfo[strings.ToLower(v.Transmission)]; ok {
		sb.WriteString(note)
		sb.WriteString(" ")
	} else {
		sb.WriteString(specsExplanation["mpg"])
		sb.WriteString(" ")
	}

	sb.WriteString("Would you like to compare these numbers with another vehicle?")
	return sb.String()
}

// Features highlights body-type features plus manufacturer, model and engine
// insights.
func (r *Responder) Features(v *storage.Vehicle) string {
	parts := []string{fmt.Sprintf("The %s comes with some great qualities:", v.FullName())}

	features := carFeatures[strings.ToLower(v.BodyType)]
	for _, idx := range r.pick(len(features), 3) {
		parts = append(parts, "- "+features[idx])
	}

	if insight, ok := manufacturerInsights[strings.ToLower(v.Manufacturer)]; ok {
		parts = append(parts, insight)
	}
	if insight, ok := lookupSubstring(modelInsights, v.Model); ok {
		parts = append(parts, insight)
	}
	if insight, ok := lookupSubstring(engineInfo, v.EngineInfo); ok {
		parts = append(parts, insight)
	}

	// Thin entries get padded with a universal safety highlight.
	if len(parts) < 5 {
		safety := carFeatures["safety"]
		parts = append(parts, "Most modern trims also offer "+safety[r.intn(len(safety))]+".")
	}

	parts = append(parts, "Is there a particular aspect you'd like to hear more about?")
	return strings.Join(parts, "\n")
}

// Generic answers when no vehicle is in context and no template applies.
func (r *Responder) Generic() string {
	return "I can help with questions about vehicle features, specifications, fuel economy, safety and more. " +
		"Pick a vehicle from our inventory or ask me a general automotive question."
}

// Clarify is the response to an empty message.
func Clarify() string {
	return "I didn't catch a question there. What would you like to know about our vehicles?"
}

// lookupSubstring finds the first table entry whose key appears in the
// value, scanning keys in sorted order so matches are deterministic.
func lookupSubstring(table map[string]string, value string) (string, bool) {
	lower := strings.ToLower(value)
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(lower, k) {
			return table[k], true
		}
	}
	return "", false
}

// pick returns up to n distinct indices below limit, in random order.
func (r *Responder) pick(limit, n int) []int {
	if limit == 0 {
		return nil
	}
	if n > limit {
		n = limit
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Perm(limit)[:n]
}

func (r *Responder) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// formatPrice renders a price with thousands separators and no cents.
func formatPrice(price float64) string {
	whole := int64(price + 0.5)
	s := fmt.Sprintf("%d", whole)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

// trimNumber renders a float without a trailing ".0".
func trimNumber(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}
