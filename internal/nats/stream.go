package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/athena-chat/athena/internal/model"
)

const (
	// StreamName is the name of the chat events stream.
	StreamName = "ATHENA_EVENTS"

	// SubjectPrefix is the prefix for all event subjects.
	SubjectPrefix = "athena"
)

// Publisher is the subset of JetStream used to publish events.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	client *Client
	pub    Publisher
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client, pub: client.JetStream()}
}

// NewStreamManagerWithPublisher creates a stream manager that only publishes.
func NewStreamManagerWithPublisher(pub Publisher) *StreamManager {
	return &StreamManager{pub: pub}
}

// EnsureStream ensures the events stream exists.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Chat conversation and persona events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// EventSubject returns the subject for an event. Conversation identifiers
// are free-form, so characters that are not valid in a subject token are
// replaced.
func EventSubject(eventType model.EventType, conversationID string) string {
	token := "_"
	if conversationID != "" {
		token = subjectToken(conversationID)
	}
	return fmt.Sprintf("%s.events.%s.%s", SubjectPrefix, eventType, token)
}

func subjectToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == '*' || r == '>':
			return '_'
		case r <= ' ' || r == 0x7f:
			return '_'
		}
		return r
	}, s)
}

// PublishEvent publishes an event to JetStream and returns its sequence.
func (m *StreamManager) PublishEvent(ctx context.Context, event *model.Event) (uint64, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := m.pub.Publish(ctx, EventSubject(event.Type, event.ConversationID), data, jetstream.WithMsgID(event.ID))
	if err != nil {
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}

	return ack.Sequence, nil
}
