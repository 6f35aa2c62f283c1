// Package llm provides chat-completion client interfaces and implementations.
package llm

import (
	"context"

	"github.com/pkg/errors"
)

// ErrEmptyResponse is returned when the endpoint answers without any choice.
var ErrEmptyResponse = errors.New("completion response contained no choices")

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model    string
	Messages []ChatMessage
}

// ChatMessage represents a chat message for the LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for chat-completion providers.
type Client interface {
	// Complete sends a completion request and returns the first choice.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	return f(ctx, req)
}

// Name returns "func".
func (f ClientFunc) Name() string {
	return "func"
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Options configures NewClient.
type Options struct {
	BaseURL string
	APIKey  string
}

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, opts Options) (Client, error) {
	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(opts.BaseURL, opts.APIKey)
	case ProviderAnthropic:
		return NewAnthropicClient(opts.APIKey)
	default:
		return nil, errors.Errorf("unknown LLM provider %q", provider)
	}
}
