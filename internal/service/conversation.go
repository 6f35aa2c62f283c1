package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/internal/store"
	"github.com/athena-chat/athena/pkg/logger"
	"github.com/athena-chat/athena/pkg/metrics"
)

// ConversationService owns the in-memory conversations and the active
// selection. Every mutation is written through to the store.
type ConversationService struct {
	store  store.Store
	events EventPublisher
	logger *logger.Logger
	now    func() time.Time

	mu            sync.RWMutex
	conversations *store.Conversations
	activeID      string
	busy          map[string]bool
}

// NewConversationService loads conversations from st and selects the first
// one. A *store.CorruptStateError is returned unchanged so startup can
// refuse to continue.
func NewConversationService(st store.Store, events EventPublisher, log *logger.Logger) (*ConversationService, error) {
	convs, err := st.LoadConversations()
	if err != nil {
		return nil, err
	}

	s := &ConversationService{
		store:         st,
		events:        events,
		logger:        log,
		now:           time.Now,
		conversations: convs,
		busy:          make(map[string]bool),
	}
	s.activeID = s.firstID()
	metrics.ConversationsStored.Set(float64(convs.Len()))

	return s, nil
}

// Create adds an empty conversation, selects it and returns its identifier.
func (s *ConversationService) Create(ctx context.Context) (string, error) {
	id, err := s.create()
	if err != nil {
		return id, err
	}

	metrics.ConversationsTotal.Inc()
	s.logger.Info("conversation created", zap.String("conversation_id", id))
	publish(ctx, s.events, s.logger, model.EventConversationCreated, id, "", nil)

	return id, nil
}

func (s *ConversationService) create() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.conversations.Set(id, []model.Message{})
	s.activeID = id

	return id, s.persist()
}

// Rename moves the messages of oldID under newID.
func (s *ConversationService) Rename(ctx context.Context, oldID, newID string) error {
	if strings.TrimSpace(newID) == "" {
		return invalid("name", "Please enter a valid name for the conversation.")
	}

	renamed, err := s.rename(oldID, newID)
	if err != nil || !renamed {
		return err
	}

	s.logger.Info("conversation renamed", zap.String("from", oldID), zap.String("to", newID))
	publish(ctx, s.events, s.logger, model.EventConversationRenamed, newID, "", map[string]any{"previous_id": oldID})

	return nil
}

// rename reports whether the conversation moved. Renaming to the same
// identifier leaves everything as is.
func (s *ConversationService) rename(oldID, newID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, ok := s.conversations.Get(oldID)
	if !ok {
		return false, &NotFoundError{Kind: "conversation", ID: oldID}
	}
	if newID == oldID {
		return false, nil
	}
	if _, exists := s.conversations.Get(newID); exists {
		return false, invalid("name", "A conversation with this name already exists.")
	}
	if s.busy[oldID] {
		return false, &BusyError{ConversationID: oldID}
	}

	s.conversations.Delete(oldID)
	s.conversations.Set(newID, messages)
	if s.activeID == oldID {
		s.activeID = newID
	}

	return true, s.persist()
}

// RenameActive renames the active conversation.
func (s *ConversationService) RenameActive(ctx context.Context, newID string) error {
	id := s.ActiveID()
	if id == "" {
		return &NoSelectionError{Action: "rename"}
	}
	return s.Rename(ctx, id, newID)
}

// Delete removes a conversation. When it was active, the first remaining
// conversation becomes active.
func (s *ConversationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &NoSelectionError{Action: "delete"}
	}

	activeID, err := s.delete(id)
	if err != nil {
		return err
	}

	s.logger.Info("conversation deleted", zap.String("conversation_id", id), zap.String("active_id", activeID))
	publish(ctx, s.events, s.logger, model.EventConversationDeleted, id, "", nil)

	return nil
}

func (s *ConversationService) delete(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMutable(id); err != nil {
		return "", err
	}

	s.conversations.Delete(id)
	if s.activeID == id {
		s.activeID = s.firstID()
	}

	return s.activeID, s.persist()
}

// DeleteActive deletes the active conversation.
func (s *ConversationService) DeleteActive(ctx context.Context) error {
	return s.Delete(ctx, s.ActiveID())
}

// Clear empties a conversation's messages.
func (s *ConversationService) Clear(ctx context.Context, id string) error {
	if id == "" {
		return &NoSelectionError{Action: "clear"}
	}

	if err := s.clear(id); err != nil {
		return err
	}

	s.logger.Info("conversation cleared", zap.String("conversation_id", id))
	publish(ctx, s.events, s.logger, model.EventConversationCleared, id, "", nil)

	return nil
}

func (s *ConversationService) clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMutable(id); err != nil {
		return err
	}

	s.conversations.Set(id, []model.Message{})
	return s.persist()
}

// ClearActive clears the active conversation.
func (s *ConversationService) ClearActive(ctx context.Context) error {
	return s.Clear(ctx, s.ActiveID())
}

// Select makes id the active conversation.
func (s *ConversationService) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations.Get(id); !ok {
		return &NotFoundError{Kind: "conversation", ID: id}
	}
	s.activeID = id

	return nil
}

// Append adds msg to the end of a conversation. It does not persist; the
// caller saves once its flow is complete.
func (s *ConversationService) Append(id string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, ok := s.conversations.Get(id)
	if !ok {
		return &NotFoundError{Kind: "conversation", ID: id}
	}
	s.conversations.Set(id, append(messages, msg))
	metrics.MessagesTotal.WithLabelValues(string(msg.Role)).Inc()

	return nil
}

// Save writes every conversation to the store.
func (s *ConversationService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persist()
}

// Acquire marks a conversation as having a send in flight. The returned
// function releases it. While held, rename, delete, clear and further
// sends of that conversation fail with *BusyError.
func (s *ConversationService) Acquire(id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations.Get(id); !ok {
		return nil, &NotFoundError{Kind: "conversation", ID: id}
	}
	if s.busy[id] {
		return nil, &BusyError{ConversationID: id}
	}
	s.busy[id] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.busy, id)
			s.mu.Unlock()
		})
	}, nil
}

// ActiveID returns the active conversation, or "" when none exist.
func (s *ConversationService) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeID
}

// IDs returns every conversation identifier in creation order.
func (s *ConversationService) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, s.conversations.Len())
	for pair := s.conversations.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// List returns a summary of every conversation.
func (s *ConversationService) List() *model.ListConversationsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := &model.ListConversationsResponse{
		Conversations: make([]model.ConversationSummary, 0, s.conversations.Len()),
		ActiveID:      s.activeID,
	}
	for pair := s.conversations.Oldest(); pair != nil; pair = pair.Next() {
		resp.Conversations = append(resp.Conversations, model.ConversationSummary{
			ID:           pair.Key,
			MessageCount: len(pair.Value),
			Active:       pair.Key == s.activeID,
		})
	}
	return resp
}

// Messages returns a copy of a conversation's messages.
func (s *ConversationService) Messages(id string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.conversations.Get(id)
	if !ok {
		return nil, &NotFoundError{Kind: "conversation", ID: id}
	}
	return append([]model.Message{}, messages...), nil
}

func (s *ConversationService) checkMutable(id string) error {
	if _, ok := s.conversations.Get(id); !ok {
		return &NotFoundError{Kind: "conversation", ID: id}
	}
	if s.busy[id] {
		return &BusyError{ConversationID: id}
	}
	return nil
}

// newID derives an identifier from the current Unix time, suffixing it when
// a conversation with that name already exists.
func (s *ConversationService) newID() string {
	base := strconv.FormatInt(s.now().Unix(), 10)
	if _, exists := s.conversations.Get(base); !exists {
		return base
	}
	for n := 2; ; n++ {
		id := base + "-" + strconv.Itoa(n)
		if _, exists := s.conversations.Get(id); !exists {
			return id
		}
	}
}

func (s *ConversationService) firstID() string {
	if oldest := s.conversations.Oldest(); oldest != nil {
		return oldest.Key
	}
	return ""
}

func (s *ConversationService) persist() error {
	metrics.ConversationsStored.Set(float64(s.conversations.Len()))
	if err := s.store.SaveConversations(s.conversations); err != nil {
		s.logger.Error("failed to save conversations", zap.Error(err))
		return errors.Wrap(err, "failed to save conversations")
	}
	return nil
}
