package handler

import (
	"fmt"
	"net/http"

	"github.com/athena-chat/athena/internal/middleware"
	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/internal/service"
	"github.com/athena-chat/athena/pkg/logger"
)

// PersonaHandler handles persona registry and editor endpoints.
type PersonaHandler struct {
	service *service.PersonaService
	logger  *logger.Logger
}

// NewPersonaHandler creates a new persona handler.
func NewPersonaHandler(svc *service.PersonaService, log *logger.Logger) *PersonaHandler {
	return &PersonaHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /api/v1/personas
func (h *PersonaHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"personas": h.service.List(),
	})
}

// Upsert handles POST /api/v1/personas
func (h *PersonaHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req model.UpsertPersonaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validatePersona(req.Name, req.Persona); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Upsert(r.Context(), req.Name, req.Persona)
	if err != nil {
		writeServiceError(w, r, h.logger, "save persona", err)
		return
	}

	h.writeSaved(w, req.Name, created)
}

// Select handles POST /api/v1/personas/select
func (h *PersonaHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req model.SelectPersonaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	editor, err := h.service.Select(req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, "select persona", err)
		return
	}

	writeJSON(w, http.StatusOK, editor)
}

// Editor handles GET /api/v1/personas/editor
func (h *PersonaHandler) Editor(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Editor())
}

// Edit handles PUT /api/v1/personas/editor
func (h *PersonaHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req model.EditPersonaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var name, text string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Persona != nil {
		text = *req.Persona
	}
	if err := validatePersona(name, text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.service.Edit(req.Name, req.Persona))
}

// New handles DELETE /api/v1/personas/editor
func (h *PersonaHandler) New(w http.ResponseWriter, r *http.Request) {
	h.service.NewEditor()
	writeJSON(w, http.StatusOK, h.service.Editor())
}

// SaveEditor handles POST /api/v1/personas/editor/save
func (h *PersonaHandler) SaveEditor(w http.ResponseWriter, r *http.Request) {
	editor, created, err := h.service.SaveEditor(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "save persona", err)
		return
	}

	h.writeSaved(w, editor.Name, created)
}

func (h *PersonaHandler) writeSaved(w http.ResponseWriter, name string, created bool) {
	status, verb := http.StatusOK, "updated"
	if created {
		status, verb = http.StatusCreated, "added"
	}
	writeJSON(w, status, model.ActionResponse{
		Message: fmt.Sprintf("Persona '%s' %s successfully!", name, verb),
	})
}

func validatePersona(name, text string) error {
	if err := middleware.ValidateName(name); err != nil {
		return err
	}
	return middleware.ValidatePersonaText(text)
}
