package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/platform/logger"
	"delivery-notify-service/internal/ports"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Options{Level: "disabled"})
	goleak.VerifyTestMain(m)
}

// rowStore is a BatchStore over flattened rows, so tests exercise the same
// round trip as the real stores.
type rowStore struct {
	mu      sync.Mutex
	rows    []Row
	saves   int
	loadErr error
	saveErr error
}

func (s *rowStore) Load(context.Context) (map[string]*domain.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return Unflatten(s.rows)
}

func (s *rowStore) Save(_ context.Context, b map[string]*domain.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.rows = Flatten(b)
	s.saves++
	return nil
}

func (s *rowStore) setErrs(load, save error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr, s.saveErr = load, save
}

type sent struct{ phone, text string }

type recordingSender struct {
	mu   sync.Mutex
	msgs []sent
	fail map[string]bool
}

func (r *recordingSender) Send(_ context.Context, phone, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[phone] {
		return fmt.Errorf("gateway refused %s", phone)
	}
	r.msgs = append(r.msgs, sent{phone, text})
	return nil
}

func (r *recordingSender) to(phone string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.msgs {
		if m.phone == phone {
			out = append(out, m.text)
		}
	}
	return out
}

// scriptExtractor answers by exact text; unscripted text is an empty OK result.
type scriptExtractor struct {
	mu     sync.Mutex
	script map[string]ports.Extraction
	calls  int
}

func (e *scriptExtractor) on(text string, x ports.Extraction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.script == nil {
		e.script = map[string]ports.Extraction{}
	}
	e.script[text] = x
}

func (e *scriptExtractor) Interpret(_ context.Context, text string, _ domain.SlotUpdate) ports.Extraction {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return e.script[text]
}

func update(u domain.SlotUpdate) ports.Extraction {
	return ports.Extraction{Status: ports.ExtractionOK, Update: u}
}
