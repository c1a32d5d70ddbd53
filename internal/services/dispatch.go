package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"delivery-notify-service/internal/domain"
	perr "delivery-notify-service/internal/platform/errors"
	"delivery-notify-service/internal/platform/logger"
	"delivery-notify-service/internal/platform/obs"
	"delivery-notify-service/internal/ports"
)

// RouteStop is one stop as entered by the dispatcher. Seq 0 means "next free number".
type RouteStop struct {
	Seq   int
	Name  string
	Phone string
}

// RouteRequest is a finished route ready to become a batch.
type RouteRequest struct {
	DispatcherPhone string
	Stops           []RouteStop
}

// SendFailure records a greeting the gateway did not accept.
type SendFailure struct {
	SequenceNumber int
	Phone          string
	Err            error
}

// BatchReport is the result of submitting a route.
type BatchReport struct {
	Batch    *domain.Batch
	Sent     int
	Failures []SendFailure
}

// InboundResult is the result of handling one customer message.
type InboundResult struct {
	Key      DeliveryKey
	Delivery *domain.Delivery
	Outcome  Outcome
	// SendErr is set when the reply could not be sent. The merge is kept.
	SendErr error
}

// Dispatcher runs the two request flows: route submission and inbound replies.
type Dispatcher struct {
	Repo      *Repository
	Sender    ports.MessageSender
	Extractor ports.SlotExtractor
	Phones    domain.PhoneNormalizer
	ETA       domain.ETAPlanner
	Now       func() time.Time
}

func NewDispatcher(
	repo *Repository,
	sender ports.MessageSender,
	extractor ports.SlotExtractor,
	phones domain.PhoneNormalizer,
	eta domain.ETAPlanner,
) *Dispatcher {
	return &Dispatcher{
		Repo:      repo,
		Sender:    sender,
		Extractor: extractor,
		Phones:    phones,
		ETA:       eta,
		Now:       time.Now,
	}
}

// SubmitRoute validates req, creates its batch, greets every recipient and saves.
//
// Validation failures create nothing. A failed greeting is reported in the
// BatchReport and the delivery is kept in status sent. A failed save is returned
// together with the report; the batch stays in memory and is written by the next save.
func (s *Dispatcher) SubmitRoute(ctx context.Context, req RouteRequest) (_ *BatchReport, err error) {
	defer obs.Time(ctx, "dispatch.SubmitRoute")(&err)

	stops, err := s.validateRoute(req)
	if err != nil {
		return nil, err
	}

	now := s.Now().Truncate(time.Second)
	batch := &domain.Batch{
		BatchID:         domain.NewBatchID(now),
		DispatcherPhone: s.Phones.Normalize(strings.TrimSpace(req.DispatcherPhone)),
		CreatedAt:       now,
		Deliveries:      make([]*domain.Delivery, 0, len(stops)),
	}

	for i, st := range stops {
		d := &domain.Delivery{
			SequenceNumber:     st.Seq,
			RecipientName:      st.Name,
			RecipientPhone:     st.Phone,
			Status:             domain.StatusSent,
			EstimatedTimeRange: s.ETA.Estimate(i+1, now),
		}
		d.LastMessage = Greeting(d)
		batch.Deliveries = append(batch.Deliveries, d)
	}

	s.Repo.Insert(batch)
	report := &BatchReport{Batch: batch.Clone()}
	log := logger.C(ctx).With().Str("batch_id", batch.BatchID).Logger()

	for _, d := range report.Batch.Deliveries {
		if err := s.Sender.Send(ctx, d.RecipientPhone, d.LastMessage); err != nil {
			log.Warn().Err(err).Str("phone", d.RecipientPhone).Int("seq", d.SequenceNumber).Msg("greeting not sent")
			report.Failures = append(report.Failures, SendFailure{
				SequenceNumber: d.SequenceNumber,
				Phone:          d.RecipientPhone,
				Err:            perr.Wrap(err, perr.ErrorCodeTransportFailure, "send greeting"),
			})
			continue
		}
		report.Sent++
	}

	log.Info().Int("stops", len(stops)).Int("sent", report.Sent).Int("failed", len(report.Failures)).Msg("route submitted")

	if err := s.Repo.Save(ctx); err != nil {
		return report, fmt.Errorf("submit route: %w", err)
	}
	return report, nil
}

func (s *Dispatcher) validateRoute(req RouteRequest) ([]RouteStop, error) {
	if strings.TrimSpace(req.DispatcherPhone) == "" {
		return nil, perr.Validationf("dispatcher_phone", "dispatcher phone is required")
	}
	if len(req.Stops) == 0 {
		return nil, perr.Validationf("stops", "route has no stops")
	}

	next := 1
	for _, st := range req.Stops {
		if st.Seq >= next {
			next = st.Seq + 1
		}
	}

	out := make([]RouteStop, 0, len(req.Stops))
	seqs := make(map[int]int, len(req.Stops))
	phones := make(map[string]int, len(req.Stops))

	for i, st := range req.Stops {
		phone := strings.TrimSpace(st.Phone)
		if phone == "" {
			return nil, perr.Validationf(fmt.Sprintf("stops[%d].phone", i), "stop %d: phone is required", i+1)
		}
		phone = s.Phones.Normalize(phone)
		if j, dup := phones[phone]; dup {
			return nil, perr.Validationf(fmt.Sprintf("stops[%d].phone", i), "stop %d: phone %s already used by stop %d", i+1, phone, j+1)
		}
		phones[phone] = i

		seq := st.Seq
		switch {
		case seq < 0:
			return nil, perr.Validationf(fmt.Sprintf("stops[%d].seq", i), "stop %d: sequence number must be positive", i+1)
		case seq == 0:
			seq = next
			next++
		}
		if j, dup := seqs[seq]; dup {
			return nil, perr.Validationf(fmt.Sprintf("stops[%d].seq", i), "stop %d: sequence number %d already used by stop %d", i+1, seq, j+1)
		}
		seqs[seq] = i

		name := strings.TrimSpace(st.Name)
		if name == "" {
			name = DefaultCustomerName
		}
		out = append(out, RouteStop{Seq: seq, Name: name, Phone: phone})
	}
	return out, nil
}

// HandleInbound processes one customer message from phone.
//
// The delivery is locked for the whole read, extract, merge, save cycle. A
// complete delivery only records the text. A failed save is returned and no
// reply is sent; a failed reply is reported in SendErr only.
func (s *Dispatcher) HandleInbound(ctx context.Context, phone, text string) (_ *InboundResult, err error) {
	defer obs.Time(ctx, "dispatch.HandleInbound")(&err)

	canonical := s.Phones.Normalize(strings.TrimSpace(phone))
	key, ok := s.Repo.Resolve(canonical)
	if !ok {
		return nil, perr.NotFoundf("no delivery for phone %s", canonical)
	}

	unlock := s.Repo.Lock(key)
	defer unlock()

	cur, ok := s.Repo.Delivery(key)
	if !ok {
		return nil, perr.NotFoundf("delivery %s not found", key)
	}

	log := logger.C(ctx).With().Str("batch_id", key.BatchID).Str("phone", key.Phone).Logger()

	var x ports.Extraction
	if cur.Status != domain.StatusComplete {
		x = s.Extractor.Interpret(ctx, text, cur.KnownSlots())
		if x.Degraded() {
			log.Warn().Err(x.Cause).Msg("extraction degraded; using fallback reply")
		}
	}

	res := &InboundResult{Key: key}
	if err := s.Repo.Mutate(key, func(d *domain.Delivery) {
		res.Outcome = Reconcile(d, text, x)
		res.Delivery = d.Clone()
	}); err != nil {
		return nil, err
	}

	log.Info().
		Str("status", string(res.Delivery.Status)).
		Int("changed", len(res.Outcome.Changed)).
		Bool("completed", res.Outcome.Completed).
		Msg("reply reconciled")

	if err := s.Repo.Save(ctx); err != nil {
		return res, fmt.Errorf("handle inbound: %w", err)
	}

	if res.Outcome.Reply != "" {
		if err := s.Sender.Send(ctx, key.Phone, res.Outcome.Reply); err != nil {
			log.Warn().Err(err).Msg("reply not sent")
			res.SendErr = perr.Wrap(err, perr.ErrorCodeTransportFailure, "send reply")
		}
	}
	return res, nil
}
