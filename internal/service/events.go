// Package service provides the conversation, persona and chat logic.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/pkg/logger"
)

// EventPublisher receives state-change events. Publishing is best effort.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *model.Event) (uint64, error)
}

func publish(ctx context.Context, pub EventPublisher, log *logger.Logger, eventType model.EventType, conversationID, reason string, metadata map[string]any) {
	if pub == nil {
		return
	}

	event := &model.Event{
		ID:             uuid.Must(uuid.NewV7()).String(),
		Type:           eventType,
		ConversationID: conversationID,
		Reason:         reason,
		Metadata:       metadata,
		CreatedAt:      time.Now(),
	}

	if _, err := pub.PublishEvent(context.WithoutCancel(ctx), event); err != nil {
		log.Warn("failed to publish event",
			zap.String("type", string(eventType)),
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
	}
}
