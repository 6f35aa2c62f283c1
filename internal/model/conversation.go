package model

// ConversationSummary describes a conversation for listing.
type ConversationSummary struct {
	ID           string `json:"id"`
	MessageCount int    `json:"message_count"`
	Active       bool   `json:"active"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
	ActiveID      string                `json:"active_id,omitempty"`
}

// RenameConversationRequest is the request to rename a conversation.
type RenameConversationRequest struct {
	Name string `json:"name"`
}

// ActionResponse reports the outcome of a state-changing action.
type ActionResponse struct {
	Message  string `json:"message"`
	ActiveID string `json:"active_id,omitempty"`
}
