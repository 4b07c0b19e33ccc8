// Package ai exposes the text-generation capability consumed by the agents.
// Responses are best-effort natural language, possibly JSON wrapped in code
// fences; callers parse defensively.
package ai

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/omnisales/leadgen-cli/pkg/anthropic"
)

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// CleanJSON strips markdown code-fence markers that models habitually wrap
// around JSON output.
func CleanJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Claude implements TextGenerator on the Anthropic Messages API.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClaude creates a Claude text generator.
func NewClaude(client anthropic.Client, model string, maxTokens int64) *Claude {
	return &Claude{client: client, model: model, maxTokens: maxTokens}
}

// GenerateText sends a single user prompt and returns the concatenated text
// content of the reply.
func (c *Claude) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", eris.Wrap(err, "ai: generate text")
	}

	text := resp.Text()
	if text == "" {
		return "", eris.New("ai: empty completion")
	}
	return text, nil
}
