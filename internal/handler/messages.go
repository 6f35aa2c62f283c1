package handler

import (
	"errors"
	"net/http"

	"github.com/athena-chat/athena/internal/middleware"
	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/internal/service"
	"github.com/athena-chat/athena/pkg/logger"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	chat   *service.ChatService
	logger *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(chat *service.ChatService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		chat:   chat,
		logger: log,
	}
}

// Send handles POST /api/v1/conversations/{id}/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.send(w, r, func(content string) (*service.SendResult, error) {
		return h.chat.Send(r.Context(), id, content)
	})
}

// SendActive handles POST /api/v1/session/messages
func (h *MessageHandler) SendActive(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, func(content string) (*service.SendResult, error) {
		return h.chat.SendActive(r.Context(), content)
	})
}

func (h *MessageHandler) send(w http.ResponseWriter, r *http.Request, fn func(string) (*service.SendResult, error)) {
	var req model.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := fn(req.Content)

	var inferErr *service.InferenceError
	switch {
	case err == nil && result == nil:
		w.WriteHeader(http.StatusNoContent)
	case err == nil:
		writeJSON(w, http.StatusCreated, sendResponse(result))
	case result != nil && errors.As(err, &inferErr):
		resp := sendResponse(result)
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
	default:
		writeServiceError(w, r, h.logger, "send message", err)
	}
}

func sendResponse(result *service.SendResult) model.SendMessageResponse {
	return model.SendMessageResponse{
		ConversationID: result.ConversationID,
		UserMessage:    result.UserMessage,
		Reply:          result.Reply,
		Model:          result.Model,
		LatencyMs:      result.Latency.Milliseconds(),
	}
}
