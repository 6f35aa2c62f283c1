// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/athena-chat/athena/internal/middleware"
	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/internal/render"
	"github.com/athena-chat/athena/internal/service"
	"github.com/athena-chat/athena/pkg/logger"
)

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	service  *service.ConversationService
	markdown *render.Markdown
	logger   *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.ConversationService, md *render.Markdown, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		service:  svc,
		markdown: md,
		logger:   log,
	}
}

// Create handles POST /api/v1/conversations
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.Create(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "create conversation", err)
		return
	}

	writeJSON(w, http.StatusCreated, model.ActionResponse{
		Message:  "Conversation created.",
		ActiveID: id,
	})
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List())
}

// Save handles POST /api/v1/conversations/save
func (h *ConversationHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Save(r.Context()); err != nil {
		writeServiceError(w, r, h.logger, "save conversations", err)
		return
	}

	writeJSON(w, http.StatusOK, model.ActionResponse{
		Message:  "Conversation saved successfully.",
		ActiveID: h.service.ActiveID(),
	})
}

// Get handles GET /api/v1/conversations/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := h.service.Messages(id)
	if err != nil {
		writeServiceError(w, r, h.logger, "get conversation", err)
		return
	}

	resp := model.ListMessagesResponse{
		ConversationID: id,
		Messages:       messages,
		Active:         id == h.service.ActiveID(),
	}
	if r.URL.Query().Get("format") == "html" {
		rendered, err := h.markdown.Messages(messages)
		if err != nil {
			writeServiceError(w, r, h.logger, "render conversation", err)
			return
		}
		resp.Rendered = rendered
	}

	writeJSON(w, http.StatusOK, resp)
}

// Rename handles PUT /api/v1/conversations/{id}
func (h *ConversationHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.rename(w, r, func(ctx context.Context, name string) error {
		return h.service.Rename(ctx, id, name)
	})
}

// RenameActive handles PUT /api/v1/session/conversation
func (h *ConversationHandler) RenameActive(w http.ResponseWriter, r *http.Request) {
	h.rename(w, r, h.service.RenameActive)
}

func (h *ConversationHandler) rename(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) error) {
	var req model.RenameConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := fn(r.Context(), req.Name); err != nil {
		writeServiceError(w, r, h.logger, "rename conversation", err)
		return
	}

	writeJSON(w, http.StatusOK, model.ActionResponse{
		Message:  fmt.Sprintf("Conversation renamed to '%s' successfully.", req.Name),
		ActiveID: h.service.ActiveID(),
	})
}

// Delete handles DELETE /api/v1/conversations/{id}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, "delete conversation", "Conversation deleted successfully.", func(id string) error {
		return h.service.Delete(r.Context(), id)
	})
}

// DeleteActive handles DELETE /api/v1/session/conversation
func (h *ConversationHandler) DeleteActive(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "delete conversation", "Conversation deleted successfully.",
		h.service.DeleteActive(r.Context()))
}

// Clear handles POST /api/v1/conversations/{id}/clear
func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, "clear conversation", "Conversation cleared successfully.", func(id string) error {
		return h.service.Clear(r.Context(), id)
	})
}

// ClearActive handles POST /api/v1/session/conversation/clear
func (h *ConversationHandler) ClearActive(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "clear conversation", "Conversation cleared successfully.",
		h.service.ClearActive(r.Context()))
}

// Select handles POST /api/v1/conversations/{id}/select
func (h *ConversationHandler) Select(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, "select conversation", "Conversation selected.", h.service.Select)
}

func (h *ConversationHandler) withID(w http.ResponseWriter, r *http.Request, action, message string, fn func(string) error) {
	id, err := conversationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w, r, action, message, fn(id))
}

func (h *ConversationHandler) respond(w http.ResponseWriter, r *http.Request, action, message string, err error) {
	if err != nil {
		writeServiceError(w, r, h.logger, action, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ActionResponse{
		Message:  message,
		ActiveID: h.service.ActiveID(),
	})
}
