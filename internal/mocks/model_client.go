package mocks

import (
	"context"
	"iter"
	"sync"

	"github.com/phrazzld/studygen-api/internal/generation"
)

// MockModelClient implements generation.ModelClient for testing
type MockModelClient struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, prompt string) (string, error)

	// GenerateStreamFn allows test cases to mock the GenerateStream behavior
	GenerateStreamFn func(ctx context.Context, history []generation.Turn, message string) iter.Seq2[string, error]

	// Default values used when functions aren't explicitly defined
	Response string
	Chunks   []string
	Err      error

	mu            sync.Mutex
	prompts       []string
	streamCalls   int
	histories     [][]generation.Turn
	streamMessage []string
}

// Ensure MockModelClient implements generation.ModelClient
var _ generation.ModelClient = (*MockModelClient)(nil)

// Generate implements the generation.ModelClient interface
func (m *MockModelClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	return m.Response, m.Err
}

// GenerateStream implements the generation.ModelClient interface.
// By default it yields Chunks in order and then Err, if set.
func (m *MockModelClient) GenerateStream(
	ctx context.Context,
	history []generation.Turn,
	message string,
) iter.Seq2[string, error] {
	m.mu.Lock()
	m.streamCalls++
	m.histories = append(m.histories, history)
	m.streamMessage = append(m.streamMessage, message)
	m.mu.Unlock()

	if m.GenerateStreamFn != nil {
		return m.GenerateStreamFn(ctx, history, message)
	}

	chunks, err := m.Chunks, m.Err
	return func(yield func(string, error) bool) {
		for _, chunk := range chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

// GenerateCalls returns how many times Generate was called.
func (m *MockModelClient) GenerateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns every prompt passed to Generate.
func (m *MockModelClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// StreamCalls returns how many times GenerateStream was called.
func (m *MockModelClient) StreamCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamCalls
}

// LastStream returns the history and message of the most recent
// GenerateStream call.
func (m *MockModelClient) LastStream() ([]generation.Turn, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.streamCalls == 0 {
		return nil, ""
	}
	return m.histories[m.streamCalls-1], m.streamMessage[m.streamCalls-1]
}
