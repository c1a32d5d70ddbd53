package ports

import (
	"context"

	"delivery-notify-service/internal/domain"
	perr "delivery-notify-service/internal/platform/errors"
)

// Outcome of one extraction call.
type ExtractionStatus int

const (
	// The extractor understood the message (possibly finding nothing new).
	ExtractionOK ExtractionStatus = iota
	// The extractor was unreachable or returned unusable output; Update is empty
	// and Reply holds a generic fallback.
	ExtractionDegraded
)

// Result of interpreting one inbound message.
type Extraction struct {
	Status ExtractionStatus
	Update domain.SlotUpdate
	Reply  string
	// Cause is set for degraded results, for logging only.
	Cause error
}

// Degraded reports whether the result is a fallback.
func (e Extraction) Degraded() bool { return e.Status == ExtractionDegraded }

// FallbackReply is sent when the extractor could not be used.
const FallbackReply = "סליחה, לא הבנתי. אפשר לנסח שוב?"

// DegradedExtraction builds the fallback result for cause.
func DegradedExtraction(cause error) Extraction {
	return Extraction{
		Status: ExtractionDegraded,
		Reply:  FallbackReply,
		Cause:  perr.Wrap(cause, perr.ErrorCodeExtractionDegraded, "extraction degraded"),
	}
}

// Contract for turning customer free text into slot values and a reply.
//
// Interpret never fails: on any error it returns DegradedExtraction so the
// conversation keeps going.
type SlotExtractor interface {
	Interpret(ctx context.Context, text string, known domain.SlotUpdate) Extraction
}
