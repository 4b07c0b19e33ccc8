package ai

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
)

// Mock is a scripted TextGenerator for tests. Responses are returned in
// order; once exhausted the last one repeats. A non-nil Err fails every call.
type Mock struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
	calls     int
}

// GenerateText records the prompt and returns the next scripted response.
func (m *Mock) GenerateText(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", eris.New("ai mock: no responses scripted")
	}
	i := m.calls
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	m.calls++
	return m.Responses[i], nil
}

// CallCount returns how many times GenerateText was invoked.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
