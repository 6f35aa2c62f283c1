// Package model defines data structures for the chat server.
package model

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single chat message. Messages are never modified once
// appended to a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage returns a user message with the given content.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage returns an assistant message with the given content.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage returns a system message with the given content.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// SendMessageRequest is the request to send a new message.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse is the response after sending a message.
type SendMessageResponse struct {
	ConversationID string   `json:"conversation_id"`
	UserMessage    Message  `json:"user_message"`
	Reply          *Message `json:"reply,omitempty"`
	Error          string   `json:"error,omitempty"`
	Model          string   `json:"model"`
	LatencyMs      int64    `json:"latency_ms"`
}

// RenderedMessage is a message whose content has been converted to HTML.
type RenderedMessage struct {
	Role Role   `json:"role"`
	HTML string `json:"html"`
}

// ListMessagesResponse is the response for listing messages.
type ListMessagesResponse struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []Message         `json:"messages"`
	Rendered       []RenderedMessage `json:"rendered,omitempty"`
	Active         bool              `json:"active"`
}
