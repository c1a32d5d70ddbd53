package ports

import "context"

// Contract for delivering a text message to a canonical phone key.
//
// Send is fire-and-forget from the core's point of view: a returned error is
// logged and reported to the operator, and never rolls back a delivery record.
// Retries, if any, are the implementation's business.
type MessageSender interface {
	Send(ctx context.Context, phone string, message string) error
}
