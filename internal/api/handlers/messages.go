package handlers

import (
	"net/http"
	"strings"

	"delivery-notify-service/internal/api/dto"
	"delivery-notify-service/internal/platform/bind"
	perr "delivery-notify-service/internal/platform/errors"
	"delivery-notify-service/internal/platform/logger"
	"delivery-notify-service/internal/services"
)

const greenAPIIncoming = "incomingMessageReceived"

// MessageHandler accepts customer replies, either as plain JSON or as Green API webhooks.
type MessageHandler struct {
	Svc *services.Dispatcher
}

func (h *MessageHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	req, err := bind.ParseJSON[dto.InboundMessageRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Svc.HandleInbound(r.Context(), req.Phone, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, inboundResponse(res))
}

// GreenAPIWebhook handles Green API notifications. Anything that is not an
// incoming text from a known recipient is acknowledged and ignored so the
// gateway does not redeliver it.
func (h *MessageHandler) GreenAPIWebhook(w http.ResponseWriter, r *http.Request) {
	opts := bind.DefaultOptions()
	opts.DisallowUnknown = false
	hook, err := bind.ParseJSON[dto.GreenAPIWebhook](r, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log := logger.C(r.Context()).With().Str("type_webhook", hook.TypeWebhook).Str("id_message", hook.IDMessage).Logger()

	if hook.TypeWebhook != greenAPIIncoming {
		writeJSON(w, r, http.StatusOK, dto.WebhookAck{Reason: "ignored webhook type"})
		return
	}
	text := strings.TrimSpace(hook.Text())
	if text == "" {
		writeJSON(w, r, http.StatusOK, dto.WebhookAck{Reason: "no text"})
		return
	}
	if strings.HasSuffix(hook.SenderData.ChatID, "@g.us") {
		writeJSON(w, r, http.StatusOK, dto.WebhookAck{Reason: "group chat"})
		return
	}

	phone := hook.SenderPhone()
	res, err := h.Svc.HandleInbound(r.Context(), phone, text)
	switch {
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		log.Info().Str("phone", phone).Msg("message from unknown sender ignored")
		writeJSON(w, r, http.StatusOK, dto.WebhookAck{Reason: "unknown sender"})
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	log.Info().Str("batch_id", res.Key.BatchID).Str("status", string(res.Delivery.Status)).Msg("webhook handled")
	writeJSON(w, r, http.StatusOK, dto.WebhookAck{Handled: true})
}

func inboundResponse(res *services.InboundResult) dto.InboundMessageResponse {
	out := dto.InboundMessageResponse{
		Delivery:  deliveryResponse(res.Delivery),
		Reply:     res.Outcome.Reply,
		ReplySent: res.Outcome.Reply != "" && res.SendErr == nil,
		Changed:   make([]string, 0, len(res.Outcome.Changed)),
		Completed: res.Outcome.Completed,
		Degraded:  res.Outcome.Degraded,
	}
	for _, s := range res.Outcome.Changed {
		out.Changed = append(out.Changed, string(s))
	}
	return out
}
