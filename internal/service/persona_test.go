package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/athena-chat/athena/internal/model"
)

func TestUpsertExistingNameReplacesText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.personas.Upsert(ctx, "A", "old text")
	require.NoError(t, err)
	require.True(t, created)
	created, err = f.personas.Upsert(ctx, "B", "b text")
	require.NoError(t, err)
	require.True(t, created)

	created, err = f.personas.Upsert(ctx, "A", "new text")
	require.NoError(t, err)
	require.False(t, created)

	want := []model.Persona{
		{Name: "A", Persona: "new text"},
		{Name: "B", Persona: "b text"},
	}
	require.Equal(t, want, f.personas.List())

	onDisk, err := f.store.LoadPersonas()
	require.NoError(t, err)
	require.Equal(t, want, onDisk)
}

func TestUpsertNewNameAppendsOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.personas.Upsert(ctx, "A", "a")
	require.NoError(t, err)
	_, err = f.personas.Upsert(ctx, "C", "c")
	require.NoError(t, err)

	list := f.personas.List()
	require.Len(t, list, 2)
	require.Equal(t, model.Persona{Name: "C", Persona: "c"}, list[1])
}

func TestUpsertRejectsBlankFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.personas.Upsert(ctx, "  ", "text")
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, "name", validationErr.Field)

	_, err = f.personas.Upsert(ctx, "A", "\n\t ")
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, "persona", validationErr.Field)

	require.Empty(t, f.personas.List())
	require.Empty(t, readFile(t, f.store.PersonasPath()))
}

func TestSelectLoadsEditor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.personas.Upsert(ctx, "Pirate", "Talk like a pirate.")
	require.NoError(t, err)

	editor, err := f.personas.Select("Pirate")
	require.NoError(t, err)
	require.Equal(t, model.PersonaEditor{Name: "Pirate", Text: "Talk like a pirate."}, editor)
	require.Equal(t, editor, f.personas.Editor())
	require.Equal(t, "Talk like a pirate.", f.personas.SystemPrompt())

	// The sentinel keeps whatever the editor holds.
	empty, err := f.personas.Select(NoPersonaSelected)
	require.NoError(t, err)
	require.Equal(t, model.PersonaEditor{}, empty)
	require.Equal(t, editor, f.personas.Editor())

	_, err = f.personas.Select("Ghost")
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestEditorLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	name, text := "Poet", "Answer in verse."
	f.personas.Edit(&name, nil)
	editor := f.personas.Edit(nil, &text)
	require.Equal(t, model.PersonaEditor{Name: "Poet", Text: "Answer in verse."}, editor)

	saved, created, err := f.personas.SaveEditor(ctx)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, editor, saved)
	require.Equal(t, []model.Persona{{Name: "Poet", Persona: "Answer in verse."}}, f.personas.List())

	f.personas.NewEditor()
	require.Equal(t, model.PersonaEditor{}, f.personas.Editor())
	require.Empty(t, f.personas.SystemPrompt())

	_, _, err = f.personas.SaveEditor(ctx)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestUnsavedEditorTextIsSystemPrompt(t *testing.T) {
	f := newFixture(t)

	blank := "   "
	f.personas.Edit(nil, &blank)
	require.Empty(t, f.personas.SystemPrompt())

	text := "Be terse."
	f.personas.Edit(nil, &text)
	require.Equal(t, "Be terse.", f.personas.SystemPrompt())
	require.Empty(t, f.personas.List())
}

func TestPersonasReloaded(t *testing.T) {
	f := newFixture(t)
	_, err := f.personas.Upsert(context.Background(), "A", "a")
	require.NoError(t, err)

	reloaded := newFixtureWithStore(t, f.store)
	require.Equal(t, []model.Persona{{Name: "A", Persona: "a"}}, reloaded.personas.List())
	require.Equal(t, []model.EventType{model.EventPersonaSaved}, f.events.types())
}
