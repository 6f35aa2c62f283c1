package service

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/internal/store"
	"github.com/athena-chat/athena/pkg/logger"
)

// NoPersonaSelected is the selector option meaning "keep the editor as is".
const NoPersonaSelected = "__Select Persona__"

// PersonaService owns the persona registry and the persona editor buffer.
// The editor's text is the system prompt used for sends, whether or not it
// has been saved.
type PersonaService struct {
	store  store.Store
	events EventPublisher
	logger *logger.Logger

	mu       sync.RWMutex
	personas []model.Persona
	editor   model.PersonaEditor
}

// NewPersonaService loads personas from st.
func NewPersonaService(st store.Store, events EventPublisher, log *logger.Logger) (*PersonaService, error) {
	personas, err := st.LoadPersonas()
	if err != nil {
		return nil, err
	}

	return &PersonaService{
		store:    st,
		events:   events,
		logger:   log,
		personas: personas,
	}, nil
}

// Upsert replaces the text of the persona called name, or appends a new
// persona when none exists. It reports whether a persona was created.
func (s *PersonaService) Upsert(ctx context.Context, name, text string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, invalid("name", "Please provide a name for the persona.")
	}
	if strings.TrimSpace(text) == "" {
		return false, invalid("persona", "Persona content cannot be empty.")
	}

	created, err := s.upsert(name, text)
	if err != nil {
		return created, err
	}

	s.logger.Info("persona saved", zap.String("name", name), zap.Bool("created", created))
	publish(ctx, s.events, s.logger, model.EventPersonaSaved, "", "", map[string]any{"name": name, "created": created})

	return created, nil
}

func (s *PersonaService) upsert(name, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := true
	for i := range s.personas {
		if s.personas[i].Name == name {
			s.personas[i].Persona = text
			created = false
			break
		}
	}
	if created {
		s.personas = append(s.personas, model.Persona{Name: name, Persona: text})
	}

	if err := s.store.SavePersonas(s.personas); err != nil {
		s.logger.Error("failed to save personas", zap.Error(err))
		return created, errors.Wrap(err, "failed to save personas")
	}
	return created, nil
}

// SaveEditor upserts the persona currently in the editor.
func (s *PersonaService) SaveEditor(ctx context.Context) (model.PersonaEditor, bool, error) {
	editor := s.Editor()
	created, err := s.Upsert(ctx, editor.Name, editor.Text)
	return editor, created, err
}

// Select loads the named persona into the editor and returns it. The
// NoPersonaSelected sentinel, or an empty name, leaves the editor untouched
// and returns empty values.
func (s *PersonaService) Select(name string) (model.PersonaEditor, error) {
	if name == "" || name == NoPersonaSelected {
		return model.PersonaEditor{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.personas {
		if p.Name == name {
			s.editor = model.PersonaEditor{Name: p.Name, Text: p.Persona}
			return s.editor, nil
		}
	}
	return model.PersonaEditor{}, &NotFoundError{Kind: "persona", ID: name}
}

// NewEditor clears the editor buffer.
func (s *PersonaService) NewEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor = model.PersonaEditor{}
}

// Edit updates the editor fields that are non-nil.
func (s *PersonaService) Edit(name, text *string) model.PersonaEditor {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name != nil {
		s.editor.Name = *name
	}
	if text != nil {
		s.editor.Text = *text
	}
	return s.editor
}

// Editor returns the editor buffer.
func (s *PersonaService) Editor() model.PersonaEditor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.editor
}

// SystemPrompt returns the editor text when it is not blank.
func (s *PersonaService) SystemPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(s.editor.Text) == "" {
		return ""
	}
	return s.editor.Text
}

// List returns a copy of the registry.
func (s *PersonaService) List() []model.Persona {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.Persona{}, s.personas...)
}
