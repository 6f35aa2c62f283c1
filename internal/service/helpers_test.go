package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/internal/store"
	"github.com/athena-chat/athena/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, event *model.Event) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return uint64(len(p.events)), nil
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.EventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store         *store.FileStore
	events        *recordingPublisher
	conversations *ConversationService
	personas      *PersonaService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	st := store.NewFileStore(
		filepath.Join(dir, "data", "conversations.json"),
		filepath.Join(dir, "personas", "all.json"),
	)
	return newFixtureWithStore(t, st)
}

func newFixtureWithStore(t *testing.T, st *store.FileStore) *fixture {
	t.Helper()
	events := &recordingPublisher{}
	log := logger.NewNop()

	convs, err := NewConversationService(st, events, log)
	require.NoError(t, err)
	personas, err := NewPersonaService(st, events, log)
	require.NoError(t, err)

	return &fixture{
		store:         st,
		events:        events,
		conversations: convs,
		personas:      personas,
	}
}

// clock returns a now function that advances by step on every call.
func clock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := current
		current = current.Add(step)
		return t
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func requireActiveInvariant(t *testing.T, s *ConversationService) {
	t.Helper()
	ids := s.IDs()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		require.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
	active := s.ActiveID()
	if active != "" {
		require.True(t, seen[active], "active id %q does not exist", active)
	}
	if len(ids) == 0 {
		require.Empty(t, active)
	}
}

func writeTestFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
