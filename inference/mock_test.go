package inference

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// mockModel replays canned replies and records the prompts it was sent.
type mockModel struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]llms.MessageContent
}

func (m *mockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, messages)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &llms.ContentResponse{}, nil
	}
	resp := m.responses[(len(m.calls)-1)%len(m.responses)]
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: resp}},
	}, nil
}

func (m *mockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

func (m *mockModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func humanText(messages []llms.MessageContent) string {
	for _, msg := range messages {
		if msg.Role != llms.ChatMessageTypeHuman {
			continue
		}
		for _, part := range msg.Parts {
			if tp, ok := part.(llms.TextContent); ok {
				return tp.Text
			}
		}
	}
	return ""
}
