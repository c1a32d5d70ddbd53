package handlers

import (
	"net/http"

	"delivery-notify-service/internal/api/dto"
	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/services"

	"github.com/go-chi/chi/v5"
)

// DispatcherHandler serves the dispatcher's view of their deliveries.
type DispatcherHandler struct {
	Svc *services.Dispatcher
}

// Deliveries lists every delivery the dispatcher routed, newest batch first.
func (h *DispatcherHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	phone := h.Svc.Phones.Normalize(chi.URLParam(r, "phone"))
	list := h.Svc.Repo.DeliveriesForDispatcher(phone)

	res := dto.DispatcherDeliveriesResponse{
		DispatcherPhone: phone,
		Deliveries:      make([]dto.DeliveryResponse, 0, len(list)),
	}
	for _, d := range list {
		res.Deliveries = append(res.Deliveries, deliveryResponse(d))
		res.Summary.Total++
		if d.Status == domain.StatusComplete {
			res.Summary.Complete++
		} else {
			res.Summary.Open++
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}
