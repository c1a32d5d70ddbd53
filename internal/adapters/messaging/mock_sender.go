package messaging

import (
	"context"
	"fmt"
	"sync"
)

// SentMessage is one call recorded by MockSender.
type SentMessage struct {
	Phone   string
	Message string
}

// MockSender records every Send and fails for the phones in FailFor.
type MockSender struct {
	mu      sync.Mutex
	sent    []SentMessage
	failFor map[string]bool
}

func NewMockSender(failFor ...string) *MockSender {
	m := &MockSender{failFor: make(map[string]bool, len(failFor))}
	for _, p := range failFor {
		m.failFor[p] = true
	}
	return m
}

func (m *MockSender) Send(_ context.Context, phone, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFor[phone] {
		return fmt.Errorf("mock sender: delivery to %s refused", phone)
	}
	m.sent = append(m.sent, SentMessage{Phone: phone, Message: message})
	return nil
}

// Fail makes later sends to phone fail (or succeed again when fail is false).
func (m *MockSender) Fail(phone string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[phone] = fail
}

// Sent returns a copy of the recorded messages in send order.
func (m *MockSender) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}

// SentTo returns the messages recorded for phone.
func (m *MockSender) SentTo(phone string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for _, s := range m.sent {
		if s.Phone == phone {
			out = append(out, s.Message)
		}
	}
	return out
}
