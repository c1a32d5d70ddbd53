package handlers

import (
	"encoding/json"
	"net/http"

	"delivery-notify-service/internal/api/dto"
	"delivery-notify-service/internal/domain"
	perr "delivery-notify-service/internal/platform/errors"
	"delivery-notify-service/internal/platform/logger"
	"delivery-notify-service/internal/services"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.C(r.Context()).Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("encode failed")
	}
}

type errorResponse struct {
	Error perr.Wire `json:"error"`
}

// writeError maps err to its HTTP status. Unclassified errors are logged and
// reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, wire := perr.HTTP(err)
	if status >= http.StatusInternalServerError {
		logger.C(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, r, status, errorResponse{Error: wire})
}

// NotFound is the router fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, perr.NotFoundf("no route for %s", r.URL.Path))
}

// MethodNotAllowed is the router fallback for known paths with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusMethodNotAllowed, errorResponse{Error: perr.Wire{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	}})
}

func deliveryResponse(d *domain.Delivery) dto.DeliveryResponse {
	res := dto.DeliveryResponse{
		Seq:                d.SequenceNumber,
		RecipientName:      d.RecipientName,
		RecipientPhone:     d.RecipientPhone,
		BatchID:            d.BatchID,
		Status:             string(d.Status),
		DropLocation:       d.DropLocation,
		Apartment:          d.Apartment,
		Floor:              d.Floor,
		EntranceCode:       d.EntranceCode,
		EstimatedTimeRange: d.EstimatedTimeRange,
		LastMessage:        d.LastMessage,
		Complete:           d.Status == domain.StatusComplete,
	}
	if d.SomeoneHome.Known() {
		v := string(d.SomeoneHome)
		res.SomeoneHome = &v
	}
	if slot, ok := services.NextSlot(d); ok {
		res.NextQuestion = string(slot)
	}
	return res
}

func batchResponse(b *domain.Batch) dto.BatchResponse {
	res := dto.BatchResponse{
		BatchID:         b.BatchID,
		DispatcherPhone: b.DispatcherPhone,
		CreatedAt:       b.CreatedAt,
		Deliveries:      make([]dto.DeliveryResponse, 0, len(b.Deliveries)),
	}
	for _, d := range b.Deliveries {
		res.Deliveries = append(res.Deliveries, deliveryResponse(d))
	}
	return res
}
