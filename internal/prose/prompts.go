package prose

import (
	"fmt"
	"strings"

	"github.com/treloar/keepsake/internal/signal"
)

const (
	storySystem      = "You are a memory assistance AI that helps dementia patients remember loved ones through gentle, positive stories."
	hintsSystem      = "You are a memory assistance AI that helps dementia patients with gentle reminders."
	chatSystemBase   = "You are a compassionate AI assistant helping a dementia patient remember people in their life. Keep responses short (2-3 sentences), clear, and supportive."
	suggestSystem    = "You are a helpful AI assistant creating simple response options for dementia patients."
	highLevel        = 70
	lowLevel         = 30
)

// StoryParams describes the person in a photo.
type StoryParams struct {
	Name         string
	Relationship string
	Place        string
	MemoryNotes  string
	Signal       *signal.Vector // optional; shapes the tone
}

// StoryPrompt builds the story request. The patient's current signal
// vector only changes tone and detail level, never the facts.
func StoryPrompt(p StoryParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a brief, comforting story about %s", p.Name)
	if p.Relationship != "" {
		fmt.Fprintf(&b, ", who is the patient's %s", p.Relationship)
	}
	if p.Place != "" {
		fmt.Fprintf(&b, ". Include something about %s where they often meet", p.Place)
	}
	if p.MemoryNotes != "" {
		fmt.Fprintf(&b, ". Use these memory details: %s", p.MemoryNotes)
	}
	if s := p.Signal; s != nil {
		if s.Stress > highLevel {
			fmt.Fprintf(&b, ". Since the patient seems stressed (stress level: %.0f/100), make the story extra calming and simple.", s.Stress)
		} else if s.Relaxation > highLevel {
			fmt.Fprintf(&b, ". Since the patient seems relaxed (relaxation level: %.0f/100), you can include more details in the story.", s.Relaxation)
		}
		if s.Recognition < lowLevel {
			fmt.Fprintf(&b, " Since the patient may not recognize %s well (recognition level: %.0f/100), include more identifying details and clear context.", p.Name, s.Recognition)
		}
	}
	b.WriteString(" Keep the story short (3-4 sentences), positive, and written in second person as if speaking directly to the patient.")
	return b.String()
}

// HintsPrompt builds the request for three short recognition hints.
func HintsPrompt(p StoryParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate 3 short, helpful hints to help a dementia patient remember who %s is", p.Name)
	if p.Relationship != "" {
		fmt.Fprintf(&b, ", their %s", p.Relationship)
	}
	if p.Place != "" {
		fmt.Fprintf(&b, ". Include something about %s where they often meet", p.Place)
	}
	if p.MemoryNotes != "" {
		fmt.Fprintf(&b, ". Use these memory details: %s", p.MemoryNotes)
	}
	b.WriteString(`. Format the response as a JSON object {"hints": [...]} with 3 short, clear hints.`)
	return b.String()
}

// ChatSystem adapts the chat system prompt to the patient's current state.
func ChatSystem(s *signal.Vector) string {
	msg := chatSystemBase
	if s == nil {
		return msg
	}
	if s.Stress > highLevel {
		msg += " The patient is currently showing signs of stress, so be extra gentle and reassuring. Use very simple language."
	} else if s.Relaxation > highLevel {
		msg += " The patient is currently relaxed, so you can engage more deeply in conversation while still keeping things simple."
	}
	if s.Attention < lowLevel {
		msg += " The patient's attention seems low, so keep your response especially brief and focused."
	}
	return msg
}

// SuggestionsPrompt asks for three short reply options to the latest
// AI message.
func SuggestionsPrompt(latestMessage, personName string) string {
	return fmt.Sprintf(`Based on this message in a conversation about a person named %s: %q, generate 3 simple response options that a dementia patient might want to select as their reply. Format as a JSON object {"responses": [...]}, keeping each response under 40 characters.`,
		personName, latestMessage)
}
