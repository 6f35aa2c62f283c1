// Package render converts message content to HTML for chat bubbles.
package render

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/athena-chat/athena/internal/model"
)

// Markdown renders GitHub-flavored markdown. Raw HTML in the source is
// dropped.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a markdown renderer.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Render converts one markdown document to HTML.
func (m *Markdown) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return buf.String(), nil
}

// Messages renders each message's content.
func (m *Markdown) Messages(messages []model.Message) ([]model.RenderedMessage, error) {
	out := make([]model.RenderedMessage, 0, len(messages))
	for _, msg := range messages {
		rendered, err := m.Render(msg.Content)
		if err != nil {
			return nil, err
		}
		out = append(out, model.RenderedMessage{Role: msg.Role, HTML: rendered})
	}
	return out, nil
}
