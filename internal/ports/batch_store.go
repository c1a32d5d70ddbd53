package ports

import (
	"context"

	"delivery-notify-service/internal/domain"
)

// Port: whole-collection persistence for batches.
//
// Implementations store flattened rows (one per delivery) and must satisfy the
// round-trip law of services.Flatten/Unflatten. Save replaces the stored
// collection wholesale; callers serialize saves.
type BatchStore interface {
	// Load every stored batch, keyed by batch id.
	Load(ctx context.Context) (map[string]*domain.Batch, error)
	// Replace the stored collection with batches.
	Save(ctx context.Context, batches map[string]*domain.Batch) error
}
