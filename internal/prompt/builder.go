// Package prompt assembles the system message sent to generation backends.
package prompt

import (
	"fmt"
	"strings"

	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

// maxInventoryLines caps how many vehicles from the store appear in the
// system message.
const maxInventoryLines = 10

const persona = `You are an automotive assistant for a car dealership. You help customers learn about vehicles in our inventory and answer general automotive questions.

IMPORTANT RULES:
1. Only discuss cars, vehicles and automotive topics.
2. Be accurate about the vehicles in our database; never invent specifications.
3. If asked about a vehicle not in our database, say so and offer alternatives.
4. Keep responses concise and conversational.
5. When comparing vehicles, be balanced and factual.
6. Do not discuss pricing negotiations or financing terms.
7. If you do not know something, admit it rather than guessing.
8. Stay polite and professional at all times.`

const closing = `Answer the customer's question using the vehicle information above when relevant. If the question is about a specific vehicle, ground your answer in its listed attributes.`

// Builder renders system messages from inventory context.
type Builder struct{}

// NewBuilder creates a system-prompt builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildSystemMessage renders the full system message. The inventory sample is
// truncated to ten lines; the specific vehicle, when present, is expanded
// into a per-attribute block with underscores in keys replaced by spaces.
// The output is deterministic for identical inputs.
func (b *Builder) BuildSystemMessage(inventory []*storage.Vehicle, specific *storage.Vehicle) string {
	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\n")

	if len(inventory) > 0 {
		sb.WriteString("Vehicles in our database include:\n")
		limit := len(inventory)
		if limit > maxInventoryLines {
			limit = maxInventoryLines
		}
		for _, v := range inventory[:limit] {
			fmt.Fprintf(&sb, "- %s\n", v.FullName())
		}
		sb.WriteString("\n")
	}

	if specific != nil {
		fmt.Fprintf(&sb, "The customer is asking about this specific vehicle:\n")
		for _, f := range specific.Fields() {
			key := strings.ReplaceAll(f.Key, "_", " ")
			fmt.Fprintf(&sb, "%s: %s\n", key, f.Value)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(closing)
	return sb.String()
}
