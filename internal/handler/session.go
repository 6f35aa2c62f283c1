package handler

import (
	"net/http"

	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/internal/service"
	"github.com/athena-chat/athena/pkg/logger"
)

// SessionHandler serves the session snapshot and model selection.
type SessionHandler struct {
	title         string
	avatars       model.Avatars
	conversations *service.ConversationService
	personas      *service.PersonaService
	chat          *service.ChatService
	logger        *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(
	title string,
	avatars model.Avatars,
	conversations *service.ConversationService,
	personas *service.PersonaService,
	chat *service.ChatService,
	log *logger.Logger,
) *SessionHandler {
	return &SessionHandler{
		title:         title,
		avatars:       avatars,
		conversations: conversations,
		personas:      personas,
		chat:          chat,
		logger:        log,
	}
}

// Get handles GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.SessionState{
		Title:         h.title,
		Conversations: h.conversations.IDs(),
		ActiveID:      h.conversations.ActiveID(),
		Model:         h.chat.Model(),
		Models:        h.chat.Models(),
		Personas:      h.personas.List(),
		Editor:        h.personas.Editor(),
		Avatars:       h.avatars,
	})
}

// SelectModel handles PUT /api/v1/session/model
func (h *SessionHandler) SelectModel(w http.ResponseWriter, r *http.Request) {
	var req model.SelectModelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.chat.SelectModel(req.Model); err != nil {
		writeServiceError(w, r, h.logger, "select model", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"model": h.chat.Model(),
	})
}
