package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"delivery-notify-service/internal/domain"
	perr "delivery-notify-service/internal/platform/errors"
	"delivery-notify-service/internal/platform/logger"
	"delivery-notify-service/internal/platform/obs"
	"delivery-notify-service/internal/ports"
)

// DeliveryKey identifies one delivery across batches.
type DeliveryKey struct {
	BatchID string
	Phone   string
}

func (k DeliveryKey) String() string { return k.BatchID + "|" + k.Phone }

// Repository owns the in-memory batch collection for one running service and
// writes it through to a BatchStore.
//
// Mutations of a single delivery are serialized with Lock(key). Saves are
// serialized with each other and always write a consistent snapshot. The store
// is overwritten wholesale, so two processes saving to the same store can still
// lose each other's updates.
type Repository struct {
	store ports.BatchStore

	mu      sync.RWMutex
	batches map[string]*domain.Batch

	saveMu sync.Mutex
	locks  *keyedMutex

	// loadDegraded is set when the last load fell back to an empty collection.
	loadDegraded bool
}

// LoadBatches reads the store, degrading to an empty collection on failure.
// The returned error is informational (StoreUnavailable or DataIntegrity).
func LoadBatches(ctx context.Context, store ports.BatchStore) (_ map[string]*domain.Batch, err error) {
	defer obs.Time(ctx, "repository.Load")(&err)

	batches, err := store.Load(ctx)
	if err != nil {
		if !perr.IsCode(err, perr.ErrorCodeDataIntegrity) {
			err = perr.Wrap(err, perr.ErrorCodeStoreUnavailable, "load batches")
		}
		return map[string]*domain.Batch{}, err
	}
	if batches == nil {
		batches = map[string]*domain.Batch{}
	}
	return batches, nil
}

// OpenRepository loads the store into a new Repository. A failed load is logged
// and leaves the repository empty and usable.
func OpenRepository(ctx context.Context, store ports.BatchStore) *Repository {
	batches, err := LoadBatches(ctx, store)
	r := &Repository{store: store, batches: batches, locks: newKeyedMutex()}
	if err != nil {
		r.loadDegraded = true
		logger.C(ctx).Error().Err(err).Msg("batch store load failed; starting with an empty collection")
	}
	return r
}

// Reload replaces the in-memory collection with the store's content.
// On failure the current collection is kept and the error returned, so a
// flaky store cannot blank the service and then be overwritten by the next save.
func (r *Repository) Reload(ctx context.Context) error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	batches, err := LoadBatches(ctx, r.store)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.batches = batches
	r.loadDegraded = false
	r.mu.Unlock()
	return nil
}

// Save writes a snapshot of the whole collection to the store.
func (r *Repository) Save(ctx context.Context) (err error) {
	defer obs.Time(ctx, "repository.Save")(&err)

	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	snap := r.Snapshot()
	if r.degraded() {
		logger.C(ctx).Warn().Int("batches", len(snap)).Msg("saving after a degraded load; stored rows not loaded will be overwritten")
	}
	if err := r.store.Save(ctx, snap); err != nil {
		return perr.Wrap(err, perr.ErrorCodeStoreUnavailable, "save batches")
	}
	return nil
}

func (r *Repository) degraded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadDegraded
}

// Insert adds b under a unique id. If b.BatchID is taken, "-2", "-3"... is
// appended; the id actually used is returned and written into b and its deliveries.
func (r *Repository) Insert(b *domain.Batch) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := b.BatchID
	for n := 2; ; n++ {
		if _, taken := r.batches[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", b.BatchID, n)
	}

	b.BatchID = id
	for _, d := range b.Deliveries {
		d.BatchID = id
	}
	r.batches[id] = b
	return id
}

// Snapshot returns a deep copy of the collection.
func (r *Repository) Snapshot() map[string]*domain.Batch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*domain.Batch, len(r.batches))
	for id, b := range r.batches {
		out[id] = b.Clone()
	}
	return out
}

// Batch returns a copy of the batch with id.
func (r *Repository) Batch(id string) (*domain.Batch, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.batches[id]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// DeliveriesForDispatcher lists copies of every delivery routed by phone (a
// canonical key), newest batch first and route order within a batch.
func (r *Repository) DeliveriesForDispatcher(phone string) []*domain.Delivery {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Delivery
	for _, b := range r.batches {
		if b.DispatcherPhone != phone {
			continue
		}
		for _, d := range b.Deliveries {
			out = append(out, d.Clone())
		}
	}

	slices.SortStableFunc(out, func(a, b *domain.Delivery) int {
		if c := strings.Compare(b.BatchID, a.BatchID); c != 0 {
			return c
		}
		return a.SequenceNumber - b.SequenceNumber
	})
	return out
}

// Resolve finds the delivery an inbound message from phone belongs to: the
// newest batch with an open delivery for phone, else the newest delivery for phone.
func (r *Repository) Resolve(phone string) (DeliveryKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open, newest string
	for id, b := range r.batches {
		d := b.Delivery(phone)
		if d == nil {
			continue
		}
		if id > newest {
			newest = id
		}
		if d.Status != domain.StatusComplete && id > open {
			open = id
		}
	}

	switch {
	case open != "":
		return DeliveryKey{BatchID: open, Phone: phone}, true
	case newest != "":
		return DeliveryKey{BatchID: newest, Phone: phone}, true
	}
	return DeliveryKey{}, false
}

// Lock serializes work on one delivery. Hold it across read, extraction and mutation.
func (r *Repository) Lock(key DeliveryKey) func() {
	return r.locks.Lock(key.String())
}

// Delivery returns a copy of the delivery at key.
func (r *Repository) Delivery(key DeliveryKey) (*domain.Delivery, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d := r.lookup(key)
	if d == nil {
		return nil, false
	}
	return d.Clone(), true
}

// Mutate runs fn on the stored delivery at key.
func (r *Repository) Mutate(key DeliveryKey, fn func(d *domain.Delivery)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.lookup(key)
	if d == nil {
		return perr.NotFoundf("delivery %s not found", key)
	}
	fn(d)
	return nil
}

func (r *Repository) lookup(key DeliveryKey) *domain.Delivery {
	b, ok := r.batches[key.BatchID]
	if !ok {
		return nil
	}
	return b.Delivery(key.Phone)
}
