package services

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"delivery-notify-service/internal/domain"
	perr "delivery-notify-service/internal/platform/errors"
)

// Persisted column names. Column order carries no meaning.
const (
	ColSequenceNumber     = "sequence_number"
	ColRecipientName      = "recipient_name"
	ColRecipientPhone     = "recipient_phone"
	ColStatus             = "status"
	ColLastMessage        = "last_message"
	ColSomeoneHome        = "someone_home"
	ColDropLocation       = "drop_location"
	ColApartment          = "apartment"
	ColFloor              = "floor"
	ColEntranceCode       = "entrance_code"
	ColEstimatedTimeRange = "estimated_time_range"
	ColBatchID            = "batch_id"
	ColDispatcherPhoneRef = "dispatcher_phone_ref"
	ColUploadTimeRef      = "upload_time_ref"
)

// Columns lists every persisted column in the order stores write them.
var Columns = []string{
	ColSequenceNumber, ColRecipientName, ColRecipientPhone, ColStatus, ColLastMessage,
	ColSomeoneHome, ColDropLocation, ColApartment, ColFloor, ColEntranceCode,
	ColEstimatedTimeRange, ColBatchID, ColDispatcherPhoneRef, ColUploadTimeRef,
}

// UploadTimeLayout is how CreatedAt is written to upload_time_ref.
const UploadTimeLayout = time.RFC3339

// legacyUploadTimeLayout is accepted on read for rows written with minute precision.
const legacyUploadTimeLayout = "2006-01-02 15:04"

// legacySentStatus is the status value older rows carry for "sent".
const legacySentStatus = "נשלח"

// Row is one flattened delivery. Every column is present; "" marks an unknown value.
type Row map[string]string

// Values returns r's cells in Columns order.
func (r Row) Values() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = r[c]
	}
	return out
}

// RowFromValues zips header names with cells. Unknown headers are kept, missing ones read as "".
func RowFromValues(header, cells []string) Row {
	r := make(Row, len(Columns))
	for _, c := range Columns {
		r[c] = ""
	}
	for i, h := range header {
		if i < len(cells) {
			r[strings.TrimSpace(h)] = cells[i]
		}
	}
	return r
}

// Flatten emits one row per delivery, batches in id order and deliveries in route order.
// Each row carries the owning batch's id, dispatcher phone and creation time.
func Flatten(batches map[string]*domain.Batch) []Row {
	ids := make([]string, 0, len(batches))
	n := 0
	for id, b := range batches {
		ids = append(ids, id)
		n += len(b.Deliveries)
	}
	slices.Sort(ids)

	rows := make([]Row, 0, n)
	for _, id := range ids {
		b := batches[id]
		uploaded := b.CreatedAt.Format(UploadTimeLayout)
		for _, d := range b.Deliveries {
			rows = append(rows, Row{
				ColSequenceNumber:     strconv.Itoa(d.SequenceNumber),
				ColRecipientName:      d.RecipientName,
				ColRecipientPhone:     d.RecipientPhone,
				ColStatus:             string(d.Status),
				ColLastMessage:        d.LastMessage,
				ColSomeoneHome:        string(d.SomeoneHome),
				ColDropLocation:       marker(d.DropLocation),
				ColApartment:          marker(d.Apartment),
				ColFloor:              marker(d.Floor),
				ColEntranceCode:       marker(d.EntranceCode),
				ColEstimatedTimeRange: d.EstimatedTimeRange,
				ColBatchID:            id,
				ColDispatcherPhoneRef: b.DispatcherPhone,
				ColUploadTimeRef:      uploaded,
			})
		}
	}
	return rows
}

func marker(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func unmarker(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Unflatten groups rows back into batches.
//
// Rows without a batch_id are skipped as partial writes. Rows of one batch that
// disagree on dispatcher_phone_ref or upload_time_ref, or that cannot be parsed,
// fail the whole load with a DataIntegrity error.
func Unflatten(rows []Row) (map[string]*domain.Batch, error) {
	batches := make(map[string]*domain.Batch)
	refs := make(map[string][2]string)

	for i, r := range rows {
		id := strings.TrimSpace(r[ColBatchID])
		if id == "" {
			continue
		}

		ref := [2]string{r[ColDispatcherPhoneRef], r[ColUploadTimeRef]}
		b, ok := batches[id]
		if !ok {
			created, err := parseUploadTime(ref[1])
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeDataIntegrity, "unflatten: row %d: batch %s: upload_time_ref %q", i, id, ref[1])
			}
			b = &domain.Batch{BatchID: id, DispatcherPhone: ref[0], CreatedAt: created}
			batches[id] = b
			refs[id] = ref
		} else if refs[id] != ref {
			return nil, perr.Integrityf(
				"unflatten: row %d: batch %s reference fields diverge: have (%q, %q), row has (%q, %q)",
				i, id, refs[id][0], refs[id][1], ref[0], ref[1],
			)
		}

		d, err := deliveryFromRow(r, id)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDataIntegrity, "unflatten: row %d: batch %s", i, id)
		}
		b.Deliveries = append(b.Deliveries, d)
	}

	for _, b := range batches {
		if err := b.CheckSequence(); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDataIntegrity, "unflatten")
		}
	}
	return batches, nil
}

func parseUploadTime(s string) (time.Time, error) {
	t, err := time.Parse(UploadTimeLayout, s)
	if err == nil {
		return t, nil
	}
	if lt, lerr := time.ParseInLocation(legacyUploadTimeLayout, s, time.Local); lerr == nil {
		return lt, nil
	}
	return time.Time{}, err
}

func deliveryFromRow(r Row, batchID string) (*domain.Delivery, error) {
	seq, err := strconv.Atoi(strings.TrimSpace(r[ColSequenceNumber]))
	if err != nil {
		return nil, perr.Integrityf("sequence_number %q is not an integer", r[ColSequenceNumber])
	}

	status := domain.Status(r[ColStatus])
	switch {
	case status == "" || status == legacySentStatus:
		status = domain.StatusSent
	case !status.Valid():
		return nil, perr.Integrityf("unknown status %q", r[ColStatus])
	}

	home := domain.Presence(r[ColSomeoneHome])
	if home != domain.PresenceUnknown && !home.Known() {
		return nil, perr.Integrityf("unknown someone_home value %q", r[ColSomeoneHome])
	}

	return &domain.Delivery{
		SequenceNumber:     seq,
		RecipientName:      r[ColRecipientName],
		RecipientPhone:     r[ColRecipientPhone],
		BatchID:            batchID,
		Status:             status,
		SomeoneHome:        home,
		DropLocation:       unmarker(r[ColDropLocation]),
		Apartment:          unmarker(r[ColApartment]),
		Floor:              unmarker(r[ColFloor]),
		EntranceCode:       unmarker(r[ColEntranceCode]),
		EstimatedTimeRange: r[ColEstimatedTimeRange],
		LastMessage:        r[ColLastMessage],
	}, nil
}
