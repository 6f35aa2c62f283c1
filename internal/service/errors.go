package service

import (
	"fmt"
)

// ValidationError reports user input that was rejected. No state changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NoSelectionError reports an action that needs an active conversation when
// none is selected.
type NoSelectionError struct {
	Action string
}

func (e *NoSelectionError) Error() string {
	return fmt.Sprintf("no conversation selected to %s", e.Action)
}

// NotFoundError reports an unknown conversation or persona.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// BusyError reports that a conversation has a send in flight.
type BusyError struct {
	ConversationID string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("conversation %q is waiting for a reply", e.ConversationID)
}

// InferenceError wraps any failure from the inference client.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference with model %s failed: %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
