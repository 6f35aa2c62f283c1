package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/athena-chat/athena/internal/llm"
	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/pkg/logger"
	"github.com/athena-chat/athena/pkg/metrics"
)

var tracer = otel.Tracer("github.com/athena-chat/athena/internal/service")

// ErrNoClient is wrapped in an InferenceError when no inference client is
// configured.
var ErrNoClient = errors.New("no inference client configured")

// SendResult describes a completed send.
type SendResult struct {
	ConversationID string
	UserMessage    model.Message
	Reply          *model.Message
	Model          string
	Latency        time.Duration
}

// ChatService sends user messages to the inference endpoint and records the
// replies.
type ChatService struct {
	conversations *ConversationService
	personas      *PersonaService
	client        llm.Client
	events        EventPublisher
	logger        *logger.Logger

	mu     sync.RWMutex
	model  string
	models []string
}

// NewChatService creates a chat service using defaultModel until another of
// models is selected.
func NewChatService(
	conversations *ConversationService,
	personas *PersonaService,
	client llm.Client,
	events EventPublisher,
	defaultModel string,
	models []string,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		personas:      personas,
		client:        client,
		events:        events,
		logger:        log,
		model:         defaultModel,
		models:        append([]string(nil), models...),
	}
}

// Model returns the selected model.
func (s *ChatService) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.model
}

// Models returns the selectable models.
func (s *ChatService) Models() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.models...)
}

// SelectModel selects the model used for subsequent sends.
func (s *ChatService) SelectModel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.models {
		if m == id {
			s.model = id
			s.logger.Info("model selected", zap.String("model", id))
			return nil
		}
	}
	return invalid("model", "Unknown model "+id+".")
}

// SendActive sends text to the active conversation.
func (s *ChatService) SendActive(ctx context.Context, text string) (*SendResult, error) {
	id := s.conversations.ActiveID()
	if id == "" {
		return nil, &NoSelectionError{Action: "send a message to"}
	}
	return s.Send(ctx, id, text)
}

// Send appends text as a user message, asks the endpoint for a reply and
// appends it. Blank text is ignored and returns (nil, nil).
//
// On an inference failure the user message is kept, the conversation is
// saved and an *InferenceError is returned together with the result.
func (s *ChatService) Send(ctx context.Context, conversationID, text string) (*SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	release, err := s.conversations.Acquire(conversationID)
	if err != nil {
		return nil, err
	}
	defer release()

	userMsg := model.NewUserMessage(text)
	if err := s.conversations.Append(conversationID, userMsg); err != nil {
		return nil, err
	}

	history, err := s.conversations.Messages(conversationID)
	if err != nil {
		return nil, err
	}

	modelID := s.Model()
	result := &SendResult{
		ConversationID: conversationID,
		UserMessage:    userMsg,
		Model:          modelID,
	}

	start := time.Now()
	reply, inferErr := s.complete(ctx, conversationID, modelID, s.buildRequest(history))
	result.Latency = time.Since(start)
	if inferErr == nil {
		result.Reply = &reply
		if err := s.conversations.Append(conversationID, reply); err != nil {
			return result, err
		}
	}

	if err := s.conversations.Save(ctx); err != nil {
		return result, err
	}

	if inferErr != nil {
		publish(ctx, s.events, s.logger, model.EventInferenceFailed, conversationID, inferErr.Error(), map[string]any{"model": modelID})
		return result, inferErr
	}

	publish(ctx, s.events, s.logger, model.EventMessageAppended, conversationID, "", map[string]any{"model": modelID, "messages": 2})
	return result, nil
}

// buildRequest prepends the persona prompt, when there is one, to the
// conversation history.
func (s *ChatService) buildRequest(history []model.Message) []llm.ChatMessage {
	if prompt := s.personas.SystemPrompt(); prompt != "" {
		history = append([]model.Message{model.NewSystemMessage(prompt)}, history...)
	}

	messages := make([]llm.ChatMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return messages
}

// complete performs one blocking round trip. The call is detached from ctx
// cancellation: once issued, a send runs until the endpoint answers or fails.
func (s *ChatService) complete(ctx context.Context, conversationID, modelID string, messages []llm.ChatMessage) (model.Message, error) {
	ctx, span := tracer.Start(context.WithoutCancel(ctx), "chat.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("conversation.id", conversationID),
		attribute.String("llm.model", modelID),
		attribute.Int("llm.messages", len(messages)),
	)

	metrics.InferenceInFlight.Inc()
	defer metrics.InferenceInFlight.Dec()

	start := time.Now()
	s.logger.Debug("sending completion request",
		zap.String("conversation_id", conversationID),
		zap.String("model", modelID),
		zap.Int("messages", len(messages)),
	)

	if s.client == nil {
		return model.Message{}, s.inferenceFailed(span, modelID, start, ErrNoClient)
	}

	resp, err := s.client.Complete(ctx, &llm.CompletionRequest{
		Model:    modelID,
		Messages: messages,
	})
	if err != nil {
		return model.Message{}, s.inferenceFailed(span, modelID, start, err)
	}

	duration := time.Since(start)
	metrics.RecordInference(modelID, "success", duration.Seconds(), resp.TokensIn, resp.TokensOut)
	span.SetAttributes(
		attribute.Int("llm.tokens_in", resp.TokensIn),
		attribute.Int("llm.tokens_out", resp.TokensOut),
	)
	s.logger.Info("completion received",
		zap.String("conversation_id", conversationID),
		zap.String("model", modelID),
		zap.Duration("latency", duration),
		zap.String("stop_reason", resp.StopReason),
	)

	return model.NewAssistantMessage(strings.TrimSpace(resp.Content)), nil
}

func (s *ChatService) inferenceFailed(span trace.Span, modelID string, start time.Time, err error) error {
	metrics.RecordInference(modelID, "error", time.Since(start).Seconds(), 0, 0)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Warn("completion failed", zap.String("model", modelID), zap.Error(err))
	return &InferenceError{Model: modelID, Err: err}
}
