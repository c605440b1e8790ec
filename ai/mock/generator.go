package mock

import (
	"context"

	"github.com/poiesic/ragserve/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, returns a deterministic canned answer.
	GenerateFunc func(ctx context.Context, question, contextText string, opts ai.GenerateOptions) (string, error)

	// GenerateStreamFunc is called by GenerateStream if set.
	// If nil, streams the Generate result in fixed-size fragments.
	GenerateStreamFunc func(ctx context.Context, question, contextText string, opts ai.GenerateOptions, sink ai.StreamSink) (string, error)

	// AvailableFunc is called by Available if set.
	// If nil, Available reports true.
	AvailableFunc func(ctx context.Context) bool

	// StreamFragmentSize controls how many bytes each default streamed
	// fragment carries. Zero means 4.
	StreamFragmentSize int

	callCount int
}

// NewMockGenerator creates a mock generator with default behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a deterministic answer derived from the inputs.
func (m *MockGenerator) Generate(ctx context.Context, question, contextText string, opts ai.GenerateOptions) (string, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, question, contextText, opts)
	}

	if contextText != "" {
		return "contextual answer to: " + question, nil
	}
	return "answer to: " + question, nil
}

// GenerateStream streams the Generate result in fragments. Concatenating
// the fragments always reproduces the buffered result.
func (m *MockGenerator) GenerateStream(ctx context.Context, question, contextText string, opts ai.GenerateOptions, sink ai.StreamSink) (string, error) {
	m.callCount++

	if m.GenerateStreamFunc != nil {
		return m.GenerateStreamFunc(ctx, question, contextText, opts, sink)
	}

	answer, err := m.Generate(ctx, question, contextText, opts)
	if err != nil {
		return "", err
	}
	m.callCount-- // the nested Generate call is not a separate interaction

	size := m.StreamFragmentSize
	if size <= 0 {
		size = 4
	}

	for start := 0; start < len(answer); start += size {
		end := min(start+size, len(answer))
		if err := sink(ctx, answer[start:end]); err != nil {
			return "", err
		}
	}

	return answer, nil
}

// Available reports model availability.
func (m *MockGenerator) Available(ctx context.Context) bool {
	m.callCount++

	if m.AvailableFunc != nil {
		return m.AvailableFunc(ctx)
	}
	return true
}

// ModelInfo describes the mock model.
func (m *MockGenerator) ModelInfo() ai.ModelInfo {
	return ai.ModelInfo{Model: "mock", ServerURL: "mock://"}
}

// CallCount returns the number of generation interactions.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
	m.GenerateStreamFunc = nil
	m.AvailableFunc = nil
}
