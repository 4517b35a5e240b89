package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/careplan-api/internal/generation"
)

// MockGenerator implements generation.Generator for testing.
type MockGenerator struct {
	// GenerateFn replaces the default behavior when set.
	GenerateFn func(ctx context.Context, in generation.Input) (string, error)

	// Content and Err are returned when GenerateFn is nil. A non-nil Err is
	// wrapped as a provider error named "mock".
	Content string
	Err     error

	mu     sync.Mutex
	inputs []generation.Input
}

// Generate implements the generation.Generator interface.
func (m *MockGenerator) Generate(ctx context.Context, in generation.Input) (string, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, in)
	}
	if m.Err != nil {
		return "", generation.NewProviderError("mock", m.Err)
	}
	return m.Content, nil
}

// Calls returns how many times Generate was called.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// Inputs returns a copy of every input passed to Generate, in call order.
func (m *MockGenerator) Inputs() []generation.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Input(nil), m.inputs...)
}
