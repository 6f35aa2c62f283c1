// Package store persists conversations and personas as whole-file JSON
// documents.
package store

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/pkg/metrics"
)

// Conversations maps conversation identifiers to their messages, in
// creation order.
type Conversations = orderedmap.OrderedMap[string, []model.Message]

// NewConversations returns an empty conversation map.
func NewConversations() *Conversations {
	return orderedmap.New[string, []model.Message]()
}

// Store reads and writes the two state files. Every save rewrites the whole
// collection.
type Store interface {
	LoadConversations() (*Conversations, error)
	SaveConversations(convs *Conversations) error
	LoadPersonas() ([]model.Persona, error)
	SavePersonas(personas []model.Persona) error
}

// FileStore is a Store backed by two JSON files.
type FileStore struct {
	conversationsPath string
	personasPath      string
}

// NewFileStore creates a store for the given file paths. Files are created on
// first save.
func NewFileStore(conversationsPath, personasPath string) *FileStore {
	return &FileStore{
		conversationsPath: conversationsPath,
		personasPath:      personasPath,
	}
}

// ConversationsPath returns the conversations file path.
func (s *FileStore) ConversationsPath() string {
	return s.conversationsPath
}

// PersonasPath returns the personas file path.
func (s *FileStore) PersonasPath() string {
	return s.personasPath
}

type storedMessage struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

type storedPersona struct {
	Name    *string `json:"name"`
	Persona *string `json:"persona"`
}

// LoadConversations reads the conversations file. A missing file yields an
// empty map; a file of the wrong shape yields a *CorruptStateError.
func (s *FileStore) LoadConversations() (*Conversations, error) {
	path := s.conversationsPath

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewConversations(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	if !startsWith(data, '{') {
		return nil, corrupt(path, "expected a JSON object", nil)
	}

	raw := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, raw); err != nil {
		return nil, corrupt(path, "invalid JSON", err)
	}

	convs := NewConversations()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		if !startsWith(pair.Value, '[') {
			return nil, corrupt(path, "conversation "+pair.Key+" is not an array", nil)
		}

		var stored []storedMessage
		if err := json.Unmarshal(pair.Value, &stored); err != nil {
			return nil, corrupt(path, "conversation "+pair.Key+" has malformed messages", err)
		}

		messages := make([]model.Message, 0, len(stored))
		for i, m := range stored {
			if m.Role == nil || m.Content == nil {
				return nil, corrupt(path, messageReason(pair.Key, i, "missing role or content"), nil)
			}
			role := model.Role(*m.Role)
			if !role.Valid() {
				return nil, corrupt(path, messageReason(pair.Key, i, "unknown role "+*m.Role), nil)
			}
			messages = append(messages, model.Message{Role: role, Content: *m.Content})
		}
		convs.Set(pair.Key, messages)
	}

	return convs, nil
}

// SaveConversations overwrites the conversations file with convs.
func (s *FileStore) SaveConversations(convs *Conversations) error {
	start := time.Now()

	for pair := convs.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			pair.Value = []model.Message{}
		}
	}

	data, err := json.MarshalIndent(convs, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversations")
	}

	err = writeFileAtomic(s.conversationsPath, data, 0o644)
	metrics.RecordPersist("conversations", err, time.Since(start).Seconds())
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", s.conversationsPath)
	}
	return nil
}

// LoadPersonas reads the personas file. A missing file yields an empty slice.
func (s *FileStore) LoadPersonas() ([]model.Persona, error) {
	path := s.personasPath

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Persona{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	if !startsWith(data, '[') {
		return nil, corrupt(path, "expected a JSON array", nil)
	}

	var stored []storedPersona
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, corrupt(path, "invalid JSON", err)
	}

	seen := make(map[string]bool, len(stored))
	personas := make([]model.Persona, 0, len(stored))
	for i, p := range stored {
		if p.Name == nil || p.Persona == nil {
			return nil, corrupt(path, "persona "+strconv.Itoa(i)+" is missing name or persona", nil)
		}
		if strings.TrimSpace(*p.Name) == "" {
			return nil, corrupt(path, "persona "+strconv.Itoa(i)+" has a blank name", nil)
		}
		if strings.TrimSpace(*p.Persona) == "" {
			return nil, corrupt(path, "persona "+*p.Name+" has a blank text", nil)
		}
		if seen[*p.Name] {
			return nil, corrupt(path, "duplicate persona name "+*p.Name, nil)
		}
		seen[*p.Name] = true
		personas = append(personas, model.Persona{Name: *p.Name, Persona: *p.Persona})
	}

	return personas, nil
}

// SavePersonas overwrites the personas file with personas.
func (s *FileStore) SavePersonas(personas []model.Persona) error {
	start := time.Now()

	if personas == nil {
		personas = []model.Persona{}
	}

	data, err := json.MarshalIndent(personas, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal personas")
	}

	err = writeFileAtomic(s.personasPath, data, 0o644)
	metrics.RecordPersist("personas", err, time.Since(start).Seconds())
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", s.personasPath)
	}
	return nil
}

func startsWith(data []byte, c byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == c
}

func messageReason(id string, index int, reason string) string {
	return "conversation " + id + " message " + strconv.Itoa(index) + ": " + reason
}
