package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer None", r.Header.Get("Authorization"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClientComplete(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "hermes-3-llama-3.2-3b",
		"choices": [
			{"index": 0, "message": {"role": "assistant", "content": "  hi there \n"}, "finish_reason": "stop"},
			{"index": 1, "message": {"role": "assistant", "content": "second"}, "finish_reason": "stop"}
		],
		"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
	}`, &captured)

	client, err := NewOpenAIClient(srv.URL+"/v1", "None")
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), &CompletionRequest{
		Model: "hermes-3-llama-3.2-3b",
		Messages: []ChatMessage{
			{Role: "system", Content: "be nice"},
			{Role: "user", Content: "hello"},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "  hi there \n", resp.Content)
	require.Equal(t, "hermes-3-llama-3.2-3b", resp.Model)
	require.Equal(t, 12, resp.TokensIn)
	require.Equal(t, 3, resp.TokensOut)
	require.Equal(t, "stop", resp.StopReason)

	require.Equal(t, "hermes-3-llama-3.2-3b", captured.Model)
	require.Equal(t, []ChatMessage{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "hello"},
	}, captured.Messages)
}

func TestOpenAIClientNoChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"id": "x", "model": "m", "choices": []}`, nil)

	client, err := NewOpenAIClient(srv.URL+"/v1", "None")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), &CompletionRequest{Model: "m"})
	require.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestOpenAIClientServerError(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, `{"error": {"message": "model not loaded", "type": "server_error"}}`, nil)

	client, err := NewOpenAIClient(srv.URL+"/v1", "None")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), &CompletionRequest{Model: "m"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model not loaded")
}

func TestOpenAIClientRequiresBaseURL(t *testing.T) {
	_, err := NewOpenAIClient("", "None")
	require.Error(t, err)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(ProviderOpenAI, Options{BaseURL: "http://localhost:1234/v1", APIKey: "None"})
	require.NoError(t, err)
	require.Equal(t, "openai", c.Name())

	_, err = NewClient(ProviderAnthropic, Options{})
	require.Error(t, err)

	_, err = NewClient("bogus", Options{})
	require.Error(t, err)
}
