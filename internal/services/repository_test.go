package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"delivery-notify-service/internal/domain"
	perr "delivery-notify-service/internal/platform/errors"
)

func newBatch(id, dispatcher string, phones ...string) *domain.Batch {
	b := &domain.Batch{
		BatchID:         id,
		DispatcherPhone: dispatcher,
		CreatedAt:       time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	for i, p := range phones {
		b.Deliveries = append(b.Deliveries, &domain.Delivery{
			SequenceNumber: i + 1,
			RecipientPhone: p,
			BatchID:        id,
			Status:         domain.StatusSent,
		})
	}
	return b
}

func TestOpenRepository_DegradesOnLoadFailure(t *testing.T) {
	st := &rowStore{loadErr: errors.New("connection refused")}
	repo := OpenRepository(context.Background(), st)

	if len(repo.Snapshot()) != 0 || !repo.degraded() {
		t.Fatalf("expected empty degraded repository")
	}

	batches, err := LoadBatches(context.Background(), st)
	if !perr.IsCode(err, perr.ErrorCodeStoreUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if batches == nil {
		t.Fatalf("degraded load must return an empty map")
	}
}

func TestLoadBatches_KeepsIntegrityCode(t *testing.T) {
	st := &rowStore{rows: []Row{{ColBatchID: "ROUTE-X", ColSequenceNumber: "x", ColUploadTimeRef: "2026-03-02T08:00:00Z"}}}
	_, err := LoadBatches(context.Background(), st)
	if !perr.IsCode(err, perr.ErrorCodeDataIntegrity) {
		t.Fatalf("err = %v, want data integrity", err)
	}
}

func TestRepository_InsertCollision(t *testing.T) {
	repo := OpenRepository(context.Background(), &rowStore{})

	ids := []string{
		repo.Insert(newBatch("ROUTE-20260302-080000", "972501112222", "972501234567")),
		repo.Insert(newBatch("ROUTE-20260302-080000", "972501112222", "972521234567")),
		repo.Insert(newBatch("ROUTE-20260302-080000", "972501112222", "972531234567")),
	}
	want := []string{"ROUTE-20260302-080000", "ROUTE-20260302-080000-2", "ROUTE-20260302-080000-3"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}

	b, ok := repo.Batch("ROUTE-20260302-080000-3")
	if !ok || b.Deliveries[0].BatchID != "ROUTE-20260302-080000-3" {
		t.Fatalf("delivery back-reference not updated: %+v", b)
	}
}

func TestRepository_Resolve(t *testing.T) {
	repo := OpenRepository(context.Background(), &rowStore{})
	old := newBatch("ROUTE-20260301-080000", "972501112222", "972501234567")
	recent := newBatch("ROUTE-20260302-080000", "972501112222", "972501234567")
	recent.Deliveries[0].Status = domain.StatusComplete
	repo.Insert(old)
	repo.Insert(recent)

	key, ok := repo.Resolve("972501234567")
	if !ok || key.BatchID != "ROUTE-20260301-080000" {
		t.Fatalf("open delivery should win: %v %v", key, ok)
	}

	_ = repo.Mutate(key, func(d *domain.Delivery) { d.Status = domain.StatusComplete })
	key, _ = repo.Resolve("972501234567")
	if key.BatchID != "ROUTE-20260302-080000" {
		t.Fatalf("newest delivery should win when all are complete: %v", key)
	}

	if _, ok := repo.Resolve("972509999999"); ok {
		t.Fatalf("unknown phone resolved")
	}
}

func TestRepository_CopiesAreIsolated(t *testing.T) {
	repo := OpenRepository(context.Background(), &rowStore{})
	repo.Insert(newBatch("ROUTE-A", "972501112222", "972501234567"))
	key := DeliveryKey{BatchID: "ROUTE-A", Phone: "972501234567"}

	d, _ := repo.Delivery(key)
	d.Floor = domain.Ptr("7")
	d.Status = domain.StatusComplete

	again, _ := repo.Delivery(key)
	if again.Floor != nil || again.Status != domain.StatusSent {
		t.Fatalf("stored delivery mutated through a copy: %+v", again)
	}
}

func TestRepository_DeliveriesForDispatcher(t *testing.T) {
	repo := OpenRepository(context.Background(), &rowStore{})
	repo.Insert(newBatch("ROUTE-20260301-080000", "972501112222", "972501234567", "972521234567"))
	repo.Insert(newBatch("ROUTE-20260302-080000", "972501112222", "972531234567"))
	repo.Insert(newBatch("ROUTE-20260302-090000", "972503334444", "972541234567"))

	got := repo.DeliveriesForDispatcher("972501112222")
	var keys []string
	for _, d := range got {
		keys = append(keys, d.BatchID+"/"+d.RecipientPhone)
	}
	want := []string{
		"ROUTE-20260302-080000/972531234567",
		"ROUTE-20260301-080000/972501234567",
		"ROUTE-20260301-080000/972521234567",
	}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestRepository_SaveAndReload(t *testing.T) {
	st := &rowStore{}
	ctx := context.Background()
	repo := OpenRepository(ctx, st)
	repo.Insert(newBatch("ROUTE-20260302-080000", "972501112222", "972501234567"))

	if err := repo.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	other := OpenRepository(ctx, st)
	if _, ok := other.Batch("ROUTE-20260302-080000"); !ok {
		t.Fatalf("saved batch not visible to a new repository")
	}

	st.setErrs(errors.New("timeout"), errors.New("timeout"))
	if err := other.Reload(ctx); !perr.IsCode(err, perr.ErrorCodeStoreUnavailable) {
		t.Fatalf("reload err = %v", err)
	}
	if _, ok := other.Batch("ROUTE-20260302-080000"); !ok {
		t.Fatalf("failed reload dropped the current batches")
	}
	if err := other.Save(ctx); !perr.IsCode(err, perr.ErrorCodeStoreUnavailable) {
		t.Fatalf("save err = %v", err)
	}

	st.setErrs(nil, nil)
	if err := other.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
}

func TestRepository_ConcurrentMutationsSerialized(t *testing.T) {
	repo := OpenRepository(context.Background(), &rowStore{})
	repo.Insert(newBatch("ROUTE-A", "972501112222", "972501234567"))
	key := DeliveryKey{BatchID: "ROUTE-A", Phone: "972501234567"}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := repo.Lock(key)
			defer unlock()

			d, _ := repo.Delivery(key)
			n := len(d.LastMessage)
			_ = repo.Mutate(key, func(d *domain.Delivery) { d.LastMessage = string(make([]byte, n+1)) })
		}()
	}
	wg.Wait()

	d, _ := repo.Delivery(key)
	if len(d.LastMessage) != workers {
		t.Fatalf("lost updates: %d of %d applied", len(d.LastMessage), workers)
	}
	if repo.locks.size() != 0 {
		t.Fatalf("keyed locks leaked: %d", repo.locks.size())
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock("a")

	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by a")
	}
	unlockA()
	if k.size() != 0 {
		t.Fatalf("size = %d", k.size())
	}
}
