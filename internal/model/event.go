package model

import (
	"time"
)

// EventType represents the type of state-change event.
type EventType string

const (
	EventConversationCreated EventType = "conversation_created"
	EventConversationRenamed EventType = "conversation_renamed"
	EventConversationDeleted EventType = "conversation_deleted"
	EventConversationCleared EventType = "conversation_cleared"
	EventMessageAppended     EventType = "message_appended"
	EventInferenceFailed     EventType = "inference_failed"
	EventPersonaSaved        EventType = "persona_saved"
)

// Event records a change to the chat state.
type Event struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
