package dto

type DeliveryResponse struct {
	Seq                int     `json:"seq"`
	RecipientName      string  `json:"recipient_name"`
	RecipientPhone     string  `json:"recipient_phone"`
	BatchID            string  `json:"batch_id"`
	Status             string  `json:"status"`
	SomeoneHome        *string `json:"someone_home"`
	DropLocation       *string `json:"drop_location"`
	Apartment          *string `json:"apartment"`
	Floor              *string `json:"floor"`
	EntranceCode       *string `json:"entrance_code"`
	EstimatedTimeRange string  `json:"estimated_time_range"`
	LastMessage        string  `json:"last_message"`
	Complete           bool    `json:"complete"`
	// NextQuestion is the slot still being asked for, empty when nothing is missing.
	NextQuestion string `json:"next_question,omitempty"`
}

type DeliverySummary struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Complete int `json:"complete"`
}

type DispatcherDeliveriesResponse struct {
	DispatcherPhone string             `json:"dispatcher_phone"`
	Summary         DeliverySummary    `json:"summary"`
	Deliveries      []DeliveryResponse `json:"deliveries"`
}
