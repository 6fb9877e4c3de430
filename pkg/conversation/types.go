package conversation

import (
	"strings"
	"time"

	"github.com/amverse/amverse/pkg/rag"
	"github.com/google/uuid"
)

// Sender is the rendering role of a message author
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// AssistantName is the display name attached to assistant messages
const AssistantName = "AmVerse"

// Message is a single entry in a transcript. Immutable once appended.
type Message struct {
	Sender      Sender       `json:"sender"`
	DisplayName string       `json:"display_name,omitempty"`
	Text        string       `json:"text"`
	Sources     []rag.Source `json:"sources,omitempty"`
}

// NewUserMessage creates a user message with the given display name
func NewUserMessage(displayName, text string) Message {
	return Message{Sender: SenderUser, DisplayName: displayName, Text: text}
}

// NewAssistantMessage creates an assistant message
func NewAssistantMessage(text string, sources []rag.Source) Message {
	return Message{Sender: SenderAssistant, DisplayName: AssistantName, Text: text, Sources: sources}
}

// Transcript is an ordered sequence of messages, insertion order
// significant. The first message's text is used as a derived chat title.
type Transcript []Message

// Title derives a chat title from the first message, falling back to the
// given default for empty transcripts
func (t Transcript) Title(fallback string) string {
	if len(t) > 0 && t[0].Text != "" {
		return t[0].Text
	}
	return fallback
}

// ContextWindow joins the trailing n message texts with sep into a single
// context string for the backend. n <= 0 means the whole transcript.
func (t Transcript) ContextWindow(n int, sep string) string {
	start := 0
	if n > 0 && len(t) > n {
		start = len(t) - n
	}

	texts := make([]string, 0, len(t)-start)
	for _, msg := range t[start:] {
		texts = append(texts, msg.Text)
	}
	return strings.Join(texts, sep)
}

// ChatRecord is the persisted representation of a transcript plus metadata
type ChatRecord struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Title      string     `json:"title"`
	Transcript Transcript `json:"transcript"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PromptTemplate is a per-user custom prompt, at most one per owner
type PromptTemplate struct {
	OwnerID  uuid.UUID `json:"owner_id"`
	Template string    `json:"template"`
}
