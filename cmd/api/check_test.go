package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/athena-chat/athena/internal/store"
)

func runCheck(t *testing.T, convs, personas string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	convPath := filepath.Join(dir, "conversations.json")
	personaPath := filepath.Join(dir, "all.json")
	if convs != "" {
		require.NoError(t, os.WriteFile(convPath, []byte(convs), 0o644))
	}
	if personas != "" {
		require.NoError(t, os.WriteFile(personaPath, []byte(personas), 0o644))
	}
	t.Setenv("CONVERSATIONS_FILE", convPath)
	t.Setenv("PERSONAS_FILE", personaPath)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", "--env-file", ""})
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckValidFiles(t *testing.T) {
	out, err := runCheck(t,
		`{"c1": [{"role": "user", "content": "hello"}], "c2": []}`,
		`[{"name": "A", "persona": "be brief"}]`,
	)
	require.NoError(t, err)
	require.Contains(t, out, "2 conversations")
	require.Contains(t, out, "1 personas")
}

func TestCheckMissingFiles(t *testing.T) {
	out, err := runCheck(t, "", "")
	require.NoError(t, err)
	require.Contains(t, out, "0 conversations")
	require.Contains(t, out, "0 personas")
}

func TestCheckCorruptFile(t *testing.T) {
	_, err := runCheck(t, `["not", "an", "object"]`, "")
	require.Error(t, err)

	var corrupt *store.CorruptStateError
	require.ErrorAs(t, err, &corrupt)
}
