package services

import (
	"testing"
	"time"

	"delivery-notify-service/internal/domain"
	perr "delivery-notify-service/internal/platform/errors"

	"github.com/google/go-cmp/cmp"
)

func sampleBatches() map[string]*domain.Batch {
	t1 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 3, 9, 30, 15, 0, time.UTC)

	a := &domain.Batch{
		BatchID:         domain.NewBatchID(t1),
		DispatcherPhone: "972501112222",
		CreatedAt:       t1,
		Deliveries: []*domain.Delivery{
			{SequenceNumber: 1, RecipientName: "דנה", RecipientPhone: "972501234567", Status: domain.StatusSent, EstimatedTimeRange: "08:35-10:35", LastMessage: "היי"},
			{
				SequenceNumber: 2, RecipientName: "אבי", RecipientPhone: "972521234567", Status: domain.StatusAwaitingReply,
				SomeoneHome: domain.PresenceYes, Apartment: domain.Ptr("4"), Floor: domain.Ptr("2"),
				EstimatedTimeRange: "08:40-10:40", LastMessage: "יש קוד כניסה?",
			},
		},
	}
	b := &domain.Batch{
		BatchID:         domain.NewBatchID(t2),
		DispatcherPhone: "972503334444",
		CreatedAt:       t2,
		Deliveries: []*domain.Delivery{
			{
				SequenceNumber: 5, RecipientName: "רות", RecipientPhone: "972531234567", Status: domain.StatusComplete,
				SomeoneHome: domain.PresenceNo, DropLocation: domain.Ptr("לובי"), EntranceCode: domain.Ptr(domain.NotApplicable),
				EstimatedTimeRange: "10:05-12:05", LastMessage: "תודה",
			},
		},
	}
	out := map[string]*domain.Batch{a.BatchID: a, b.BatchID: b}
	for id, bb := range out {
		for _, d := range bb.Deliveries {
			d.BatchID = id
		}
	}
	return out
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	want := sampleBatches()

	rows := Flatten(want)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for _, r := range rows {
		if len(r) != len(Columns) {
			t.Fatalf("row has %d columns, want %d: %v", len(r), len(Columns), r)
		}
	}
	// unknown slots are written as the empty marker
	if rows[0][ColFloor] != "" || rows[0][ColSomeoneHome] != "" {
		t.Fatalf("unknown slots not empty: %v", rows[0])
	}

	got, err := Unflatten(rows)
	if err != nil {
		t.Fatalf("unflatten: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenOrder(t *testing.T) {
	rows := Flatten(sampleBatches())
	var ids []string
	for _, r := range rows {
		ids = append(ids, r[ColBatchID]+"#"+r[ColSequenceNumber])
	}
	want := []string{"ROUTE-20260302-080000#1", "ROUTE-20260302-080000#2", "ROUTE-20260303-093015#5"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestUnflattenSkipsRowsWithoutBatchID(t *testing.T) {
	rows := Flatten(sampleBatches())
	orphan := Row{ColSequenceNumber: "9", ColRecipientPhone: "972500000000", ColBatchID: "  "}
	rows = append(rows, orphan)

	got, err := Unflatten(rows)
	if err != nil {
		t.Fatalf("unflatten: %v", err)
	}
	n := 0
	for _, b := range got {
		n += len(b.Deliveries)
	}
	if n != 3 {
		t.Fatalf("deliveries = %d, want 3", n)
	}
}

func TestUnflattenRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rows []Row)
	}{
		{"diverging dispatcher", func(rows []Row) { rows[1][ColDispatcherPhoneRef] = "972509999999" }},
		{"diverging upload time", func(rows []Row) { rows[1][ColUploadTimeRef] = "2026-03-02T08:00:01Z" }},
		{"bad upload time", func(rows []Row) { rows[0][ColUploadTimeRef] = "yesterday" }},
		{"bad sequence", func(rows []Row) { rows[0][ColSequenceNumber] = "first" }},
		{"duplicate sequence", func(rows []Row) { rows[1][ColSequenceNumber] = "1" }},
		{"bad status", func(rows []Row) { rows[0][ColStatus] = "lost" }},
		{"bad presence", func(rows []Row) { rows[0][ColSomeoneHome] = "maybe" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows := Flatten(sampleBatches())
			tc.mutate(rows)
			_, err := Unflatten(rows)
			if !perr.IsCode(err, perr.ErrorCodeDataIntegrity) {
				t.Fatalf("err = %v, want data integrity", err)
			}
		})
	}
}

func TestUnflattenLegacyValues(t *testing.T) {
	rows := []Row{RowFromValues(
		[]string{ColBatchID, ColSequenceNumber, ColRecipientPhone, ColStatus, ColUploadTimeRef, ColDispatcherPhoneRef},
		[]string{"ROUTE-20250101-0900", "1", "972501234567", legacySentStatus, "2025-01-01 09:00", "972501112222"},
	)}

	got, err := Unflatten(rows)
	if err != nil {
		t.Fatalf("unflatten: %v", err)
	}
	b := got["ROUTE-20250101-0900"]
	if b == nil || len(b.Deliveries) != 1 {
		t.Fatalf("got %v", got)
	}
	if b.Deliveries[0].Status != domain.StatusSent {
		t.Fatalf("status = %q", b.Deliveries[0].Status)
	}
	want := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	if !b.CreatedAt.Equal(want) {
		t.Fatalf("created = %v, want %v", b.CreatedAt, want)
	}
}

func TestRowFromValuesMissingCells(t *testing.T) {
	r := RowFromValues([]string{ColBatchID, ColStatus}, []string{"ROUTE-X"})
	if r[ColBatchID] != "ROUTE-X" || r[ColStatus] != "" || r[ColFloor] != "" {
		t.Fatalf("row = %v", r)
	}
	if len(r.Values()) != len(Columns) {
		t.Fatalf("values = %d", len(r.Values()))
	}
}
