package services

import (
	"strings"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/ports"
)

// Outcome describes what one inbound message did to a delivery.
type Outcome struct {
	Changed []domain.Slot
	// Reply is the text to send back. Empty means nothing is sent.
	Reply string
	// NextSlot is the slot the reply asks about; HasNext is false once nothing is missing.
	NextSlot domain.Slot
	HasNext  bool
	// Completed is true when this message moved the delivery to complete.
	Completed bool
	// AlreadyComplete is true when the delivery was complete before the message.
	AlreadyComplete bool
	Degraded        bool
}

// Reconcile applies an extraction for the inbound text to d and advances its status.
//
// Complete deliveries are terminal: the message is recorded in LastMessage and
// nothing is merged or asked. Otherwise the update is merged (see domain.Delivery.Apply),
// completeness is recomputed, and the extractor's reply (or the question for the
// next missing slot when the extractor had nothing to say) becomes LastMessage
// and the outbound reply. A completion without extractor reply is acknowledged
// with ClosingMessage; no further question is asked.
func Reconcile(d *domain.Delivery, inbound string, x ports.Extraction) Outcome {
	if d.Status == domain.StatusComplete {
		d.LastMessage = firstNonBlank(x.Reply, inbound)
		return Outcome{AlreadyComplete: true, Degraded: x.Degraded()}
	}

	out := Outcome{Degraded: x.Degraded()}
	out.Changed = d.Apply(x.Update)

	if x.Update.Declined || d.IsComplete() {
		d.Status = domain.StatusComplete
		out.Completed = true
	} else {
		d.Status = domain.StatusAwaitingReply
		out.NextSlot, out.HasNext = NextSlot(d)
	}

	out.Reply = strings.TrimSpace(x.Reply)
	switch {
	case out.Reply != "":
	case out.HasNext:
		out.Reply = Question(out.NextSlot)
	case out.Completed:
		out.Reply = ClosingMessage
	}
	d.LastMessage = firstNonBlank(out.Reply, inbound)

	return out
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
