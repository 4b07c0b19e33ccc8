package ai

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisales/leadgen-cli/pkg/anthropic"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"{\"a\": 1}", "{\"a\": 1}"},
		{"```json\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"```\n[1, 2]\n```", "[1, 2]"},
		{"  {\"a\": 1}  \n", "{\"a\": 1}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanJSON(tt.in))
	}
}

type fakeAnthropic struct {
	resp *anthropic.MessageResponse
	err  error
	req  anthropic.MessageRequest
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestClaudeGenerateText(t *testing.T) {
	fake := &fakeAnthropic{resp: &anthropic.MessageResponse{Content: []anthropic.ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "world"},
	}}}

	c := NewClaude(fake, "claude-haiku-4-5-20251001", 1024)
	got, err := c.GenerateText(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	assert.Equal(t, "claude-haiku-4-5-20251001", fake.req.Model)
	assert.Equal(t, int64(1024), fake.req.MaxTokens)
	require.Len(t, fake.req.Messages, 1)
	assert.Equal(t, "user", fake.req.Messages[0].Role)
}

func TestClaudeGenerateTextErrors(t *testing.T) {
	c := NewClaude(&fakeAnthropic{err: eris.New("overloaded")}, "m", 10)
	_, err := c.GenerateText(context.Background(), "p")
	assert.Error(t, err)

	c = NewClaude(&fakeAnthropic{resp: &anthropic.MessageResponse{}}, "m", 10)
	_, err = c.GenerateText(context.Background(), "p")
	assert.Error(t, err, "empty completion is an error")
}

func TestMockRepeatsLastResponse(t *testing.T) {
	m := &Mock{Responses: []string{"one", "two"}}
	for _, want := range []string{"one", "two", "two"} {
		got, err := m.GenerateText(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 3, m.CallCount())
	assert.Len(t, m.Prompts, 3)
}
