package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes who authored a chat message
type MessageType string

const (
	MessageTypeUser MessageType = "user"
	MessageTypeBot  MessageType = "bot"
)

// Message is one entry in a conversation transcript
type Message struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage creates a message with a fresh ID and the current timestamp
func NewMessage(msgType MessageType, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Type:      msgType,
		Timestamp: time.Now().UTC(),
	}
}

// Conversation is a chat transcript owned by one user
type Conversation struct {
	ID       string    `json:"conversation_id"`
	UserID   string    `json:"user_id"`
	Messages []Message `json:"messages"`
}

// NewConversation creates an empty conversation for the given user
func NewConversation(userID string) *Conversation {
	return &Conversation{
		ID:       uuid.NewString(),
		UserID:   userID,
		Messages: []Message{},
	}
}

// Append adds a message to the transcript
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// Intent is the structured understanding extracted from free-text model
// output once the assistant has identified what the customer wants
type Intent struct {
	Intent    string `json:"intent"`
	SubIntent string `json:"sub_intent"`
	Summary   string `json:"summary"`
}

// SuggestedQuestion is a follow-up prompt offered to the user after each
// assistant reply
type SuggestedQuestion struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// LLMConfig is the runtime-tunable model configuration
type LLMConfig struct {
	Provider    string  `json:"provider"`
	ModelName   string  `json:"modelName"`
	Temperature float64 `json:"temperature"`
}
