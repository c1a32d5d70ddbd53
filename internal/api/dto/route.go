package dto

import "time"

type RouteStopRequest struct {
	Seq   int    `json:"seq" validate:"gte=0"`
	Name  string `json:"name" validate:"max=120"`
	Phone string `json:"phone" validate:"required,phone"`
}

type RouteRequest struct {
	DispatcherPhone string             `json:"dispatcher_phone" validate:"required,phone"`
	Stops           []RouteStopRequest `json:"stops" validate:"required,min=1,max=200,dive"`
}

type SendFailureResponse struct {
	Seq   int    `json:"seq"`
	Phone string `json:"phone"`
	Error string `json:"error"`
}

type BatchResponse struct {
	BatchID         string             `json:"batch_id"`
	DispatcherPhone string             `json:"dispatcher_phone"`
	CreatedAt       time.Time          `json:"created_at"`
	Deliveries      []DeliveryResponse `json:"deliveries"`
}

type RouteResponse struct {
	Batch    BatchResponse         `json:"batch"`
	Sent     int                   `json:"sent"`
	Failures []SendFailureResponse `json:"failures"`
}

type ReloadResponse struct {
	Batches int `json:"batches"`
}
