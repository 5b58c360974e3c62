package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// MockGenerationService is an in-memory GenerationService for testing
type MockGenerationService struct {
	mu       sync.Mutex
	reply    string
	failNext bool
	failAll  bool

	// lastPrompt captures the most recent prompt for assertions
	lastPrompt *domain.Prompt
	calls      int
}

// NewMockGenerationService creates a mock that echoes a canned reply
func NewMockGenerationService(reply string) *MockGenerationService {
	return &MockGenerationService{reply: reply}
}

func (m *MockGenerationService) Generate(ctx context.Context, prompt *domain.Prompt) (string, error) {
	m.mu.Lock()
	m.calls++
	m.lastPrompt = prompt
	fail := m.failAll || m.failNext
	m.failNext = false
	m.mu.Unlock()
	if fail {
		return "", fmt.Errorf("%w: 429 too many requests", domain.ErrGenerationUnavailable)
	}
	if m.reply != "" {
		return m.reply, nil
	}
	return "reply to: " + prompt.Question, nil
}

func (m *MockGenerationService) Model() string { return "mock-llm" }

func (m *MockGenerationService) Ping(ctx context.Context) error { return nil }

func (m *MockGenerationService) Close() error { return nil }

// Helper methods for testing

func (m *MockGenerationService) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

func (m *MockGenerationService) SetFailAll(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = fail
}

// LastPrompt returns the most recent prompt seen by Generate
func (m *MockGenerationService) LastPrompt() *domain.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

func (m *MockGenerationService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
