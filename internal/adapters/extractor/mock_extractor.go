package extractor

import (
	"context"
	"sync"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/ports"
)

// MockExtractor returns scripted extractions keyed by the exact inbound text.
// Unscripted text yields an empty OK extraction.
type MockExtractor struct {
	mu     sync.Mutex
	script map[string]ports.Extraction
	calls  []string
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{script: map[string]ports.Extraction{}}
}

// On scripts the result for text.
func (m *MockExtractor) On(text string, x ports.Extraction) *MockExtractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script[text] = x
	return m
}

func (m *MockExtractor) Interpret(_ context.Context, text string, _ domain.SlotUpdate) ports.Extraction {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, text)
	return m.script[text]
}

// Calls returns the texts Interpret was called with.
func (m *MockExtractor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
