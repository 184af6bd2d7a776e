package prose

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/treloar/keepsake/internal/signal"
)

// Fallback text used whenever the provider is missing or fails. The app
// keeps working without generated prose; it just gets less personal.
var (
	fallbackStory = "I'm sorry, I couldn't think of a story right now. Let's look at the photo together."
	fallbackReply = "I'm sorry, I'm having trouble right now. Let's continue our conversation in a moment."

	fallbackHints = []string{
		"This person is part of your family",
		"Think about who visits you regularly",
		"Look at their features for clues",
	}
	fallbackSuggestions = []string{
		"Tell me more",
		"I remember that",
		"I'm not sure about that",
	}
)

// Message is one line of conversation history handed to ChatReply.
type Message struct {
	Sender  string // "ai" or "user"
	Content string
}

// Generator wraps a Client with prompt construction and fallbacks.
// A nil client is valid and always yields fallback text.
type Generator struct {
	client Client
}

// NewGenerator creates a Generator. client may be nil.
func NewGenerator(client Client) *Generator {
	return &Generator{client: client}
}

// Enabled reports whether a real provider is configured.
func (g *Generator) Enabled() bool { return g.client != nil }

// Story produces a short comforting story about the person in a photo.
func (g *Generator) Story(ctx context.Context, p StoryParams) string {
	if g.client == nil {
		return fallbackStory
	}
	text, err := g.client.Complete(ctx, storySystem, StoryPrompt(p))
	if err != nil || strings.TrimSpace(text) == "" {
		log.Printf("prose: story generation failed: %v", err)
		return fallbackStory
	}
	return text
}

// Hints produces three short recognition hints.
func (g *Generator) Hints(ctx context.Context, p StoryParams) []string {
	if g.client == nil {
		return fallbackHints
	}
	raw, err := g.client.CompleteJSON(ctx, hintsSystem, HintsPrompt(p))
	if err != nil {
		log.Printf("prose: hint generation failed: %v", err)
		return fallbackHints
	}
	var parsed struct {
		Hints []string `json:"hints"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || len(parsed.Hints) == 0 {
		return fallbackHints
	}
	return parsed.Hints
}

// ChatReply continues a reminiscence conversation, adapting tone to the
// patient's current signal vector.
func (g *Generator) ChatReply(ctx context.Context, history []Message, sig *signal.Vector) string {
	if g.client == nil {
		return fallbackReply
	}

	var b strings.Builder
	b.WriteString("Continue this conversation with one short reply as the assistant.\n\n")
	for _, m := range history {
		role := "Patient"
		if m.Sender == "ai" {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
	}
	b.WriteString("Assistant:")

	text, err := g.client.Complete(ctx, ChatSystem(sig), b.String())
	if err != nil || strings.TrimSpace(text) == "" {
		log.Printf("prose: chat reply failed: %v", err)
		return fallbackReply
	}
	return strings.TrimSpace(text)
}

// Suggestions produces three short reply options for the patient to tap.
func (g *Generator) Suggestions(ctx context.Context, latestMessage, personName string) []string {
	if g.client == nil {
		return fallbackSuggestions
	}
	raw, err := g.client.CompleteJSON(ctx, suggestSystem, SuggestionsPrompt(latestMessage, personName))
	if err != nil {
		log.Printf("prose: suggestion generation failed: %v", err)
		return fallbackSuggestions
	}
	var parsed struct {
		Responses []string `json:"responses"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || len(parsed.Responses) == 0 {
		return fallbackSuggestions
	}
	return parsed.Responses
}
