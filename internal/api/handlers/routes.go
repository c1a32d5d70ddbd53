package handlers

import (
	"net/http"

	"delivery-notify-service/internal/api/dto"
	"delivery-notify-service/internal/platform/bind"
	"delivery-notify-service/internal/platform/logger"
	"delivery-notify-service/internal/services"
)

// RouteHandler accepts finished routes from dispatchers.
type RouteHandler struct {
	Svc *services.Dispatcher
}

// Submit creates a batch from the route, greets every recipient and returns the
// batch with per-stop send failures. A batch whose greetings were sent but whose
// save failed is reported as 503; it stays in memory and is written by the next save.
func (h *RouteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req, err := bind.ParseJSON[dto.RouteRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	svcReq := services.RouteRequest{
		DispatcherPhone: req.DispatcherPhone,
		Stops:           make([]services.RouteStop, 0, len(req.Stops)),
	}
	for _, s := range req.Stops {
		svcReq.Stops = append(svcReq.Stops, services.RouteStop{Seq: s.Seq, Name: s.Name, Phone: s.Phone})
	}

	report, err := h.Svc.SubmitRoute(r.Context(), svcReq)
	if err != nil {
		if report != nil {
			logger.C(r.Context()).Error().Err(err).Str("batch_id", report.Batch.BatchID).Msg("batch created but not saved")
		}
		writeError(w, r, err)
		return
	}

	res := dto.RouteResponse{
		Batch:    batchResponse(report.Batch),
		Sent:     report.Sent,
		Failures: make([]dto.SendFailureResponse, 0, len(report.Failures)),
	}
	for _, f := range report.Failures {
		res.Failures = append(res.Failures, dto.SendFailureResponse{
			Seq:   f.SequenceNumber,
			Phone: f.Phone,
			Error: f.Err.Error(),
		})
	}
	writeJSON(w, r, http.StatusCreated, res)
}
