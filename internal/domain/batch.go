package domain

import (
	"fmt"
	"time"
)

// BatchIDPrefix starts every batch id; the rest is the creation timestamp so ids sort by time.
const BatchIDPrefix = "ROUTE-"

// Batch is one dispatcher's route. Its fields and delivery list are fixed at creation;
// only the deliveries themselves change afterwards.
type Batch struct {
	BatchID         string
	DispatcherPhone string
	CreatedAt       time.Time
	Deliveries      []*Delivery
}

// NewBatchID derives the id for a batch created at t.
func NewBatchID(t time.Time) string {
	return BatchIDPrefix + t.Format("20060102-150405")
}

// Delivery returns the delivery for phone, or nil.
func (b *Batch) Delivery(phone string) *Delivery {
	for _, d := range b.Deliveries {
		if d.RecipientPhone == phone {
			return d
		}
	}
	return nil
}

// Clone returns a deep copy of b.
func (b *Batch) Clone() *Batch {
	c := &Batch{
		BatchID:         b.BatchID,
		DispatcherPhone: b.DispatcherPhone,
		CreatedAt:       b.CreatedAt,
		Deliveries:      make([]*Delivery, 0, len(b.Deliveries)),
	}
	for _, d := range b.Deliveries {
		c.Deliveries = append(c.Deliveries, d.Clone())
	}
	return c
}

// CheckSequence verifies that sequence numbers are positive and unique within b.
func (b *Batch) CheckSequence() error {
	seen := make(map[int]struct{}, len(b.Deliveries))
	for _, d := range b.Deliveries {
		if d.SequenceNumber < 1 {
			return fmt.Errorf("batch %s: sequence number %d must be positive", b.BatchID, d.SequenceNumber)
		}
		if _, dup := seen[d.SequenceNumber]; dup {
			return fmt.Errorf("batch %s: duplicate sequence number %d", b.BatchID, d.SequenceNumber)
		}
		seen[d.SequenceNumber] = struct{}{}
	}
	return nil
}
