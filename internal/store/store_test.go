package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/athena-chat/athena/internal/model"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(
		filepath.Join(dir, "data", "conversations.json"),
		filepath.Join(dir, "personas", "all.json"),
	)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func keys(convs *Conversations) []string {
	var out []string
	for pair := convs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func TestLoadConversationsMissingFile(t *testing.T) {
	s := newTestStore(t)

	convs, err := s.LoadConversations()
	require.NoError(t, err)
	require.Equal(t, 0, convs.Len())
}

func TestSaveConversationsCreatesDirectoryAndIndents(t *testing.T) {
	s := newTestStore(t)

	convs := NewConversations()
	convs.Set("c1", []model.Message{
		model.NewUserMessage("hello"),
		model.NewAssistantMessage("hi there"),
	})
	require.NoError(t, s.SaveConversations(convs))

	data, err := os.ReadFile(s.ConversationsPath())
	require.NoError(t, err)
	require.Equal(t, `{
  "c1": [
    {
      "role": "user",
      "content": "hello"
    },
    {
      "role": "assistant",
      "content": "hi there"
    }
  ]
}`, string(data))
}

func TestConversationsRoundTripPreservesOrder(t *testing.T) {
	s := newTestStore(t)

	convs := NewConversations()
	convs.Set("zeta", []model.Message{model.NewUserMessage("1"), model.NewAssistantMessage("2")})
	convs.Set("alpha", []model.Message{})
	convs.Set("1700000000", []model.Message{model.NewUserMessage("3")})
	require.NoError(t, s.SaveConversations(convs))

	loaded, err := s.LoadConversations()
	require.NoError(t, err)
	require.Equal(t, []string{"zeta", "alpha", "1700000000"}, keys(loaded))

	msgs, ok := loaded.Get("zeta")
	require.True(t, ok)
	require.Equal(t, []model.Message{model.NewUserMessage("1"), model.NewAssistantMessage("2")}, msgs)

	empty, ok := loaded.Get("alpha")
	require.True(t, ok)
	require.Empty(t, empty)

	// Saving what was loaded reproduces the same file.
	before, err := os.ReadFile(s.ConversationsPath())
	require.NoError(t, err)
	require.NoError(t, s.SaveConversations(loaded))
	after, err := os.ReadFile(s.ConversationsPath())
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestSaveConversationsWritesNilAsEmptyArray(t *testing.T) {
	s := newTestStore(t)

	convs := NewConversations()
	convs.Set("c1", nil)
	require.NoError(t, s.SaveConversations(convs))

	loaded, err := s.LoadConversations()
	require.NoError(t, err)
	msgs, ok := loaded.Get("c1")
	require.True(t, ok)
	require.Empty(t, msgs)
}

func TestLoadConversationsCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"c1": [`,
		"empty file":      ``,
		"array":           `[]`,
		"null":            `null`,
		"value not array": `{"c1": {"role": "user"}}`,
		"null value":      `{"c1": null}`,
		"missing content": `{"c1": [{"role": "user"}]}`,
		"unknown role":    `{"c1": [{"role": "robot", "content": "x"}]}`,
		"message not obj": `{"c1": ["hello"]}`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			writeFile(t, s.ConversationsPath(), content)

			_, err := s.LoadConversations()
			require.Error(t, err)

			var corruptErr *CorruptStateError
			require.True(t, errors.As(err, &corruptErr), "got %v", err)
			require.Equal(t, s.ConversationsPath(), corruptErr.Path)
		})
	}
}

func TestLoadConversationsAcceptsSystemRole(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.ConversationsPath(), `{"c1": [{"role": "system", "content": "be brief"}]}`)

	convs, err := s.LoadConversations()
	require.NoError(t, err)
	msgs, _ := convs.Get("c1")
	require.Equal(t, []model.Message{model.NewSystemMessage("be brief")}, msgs)
}

func TestPersonasRoundTrip(t *testing.T) {
	s := newTestStore(t)

	personas, err := s.LoadPersonas()
	require.NoError(t, err)
	require.Empty(t, personas)

	want := []model.Persona{
		{Name: "A", Persona: "You are A."},
		{Name: "B", Persona: "You are B."},
	}
	require.NoError(t, s.SavePersonas(want))

	data, err := os.ReadFile(s.PersonasPath())
	require.NoError(t, err)
	require.Equal(t, `[
  {
    "name": "A",
    "persona": "You are A."
  },
  {
    "name": "B",
    "persona": "You are B."
  }
]`, string(data))

	got, err := s.LoadPersonas()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadPersonasCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":       `[{"name": "A"`,
		"object":         `{"name": "A", "persona": "x"}`,
		"missing field":  `[{"name": "A"}]`,
		"blank name":     `[{"name": "  ", "persona": "x"}]`,
		"blank persona":  `[{"name": "A", "persona": " \n"}]`,
		"duplicate name": `[{"name": "A", "persona": "x"}, {"name": "A", "persona": "y"}]`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			writeFile(t, s.PersonasPath(), content)

			_, err := s.LoadPersonas()
			var corruptErr *CorruptStateError
			require.True(t, errors.As(err, &corruptErr), "got %v", err)
		})
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SavePersonas(nil))

	entries, err := os.ReadDir(filepath.Dir(s.PersonasPath()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "all.json", entries[0].Name())

	data, err := os.ReadFile(s.PersonasPath())
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}
