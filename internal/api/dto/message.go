package dto

import "strings"

type InboundMessageRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
	Text  string `json:"text" validate:"required,max=4096"`
}

type InboundMessageResponse struct {
	Delivery  DeliveryResponse `json:"delivery"`
	Reply     string           `json:"reply"`
	ReplySent bool             `json:"reply_sent"`
	Changed   []string         `json:"changed"`
	Completed bool             `json:"completed"`
	Degraded  bool             `json:"degraded"`
}

// GreenAPIWebhook is the subset of a Green API notification the service reads.
type GreenAPIWebhook struct {
	TypeWebhook string `json:"typeWebhook"`
	IDMessage   string `json:"idMessage"`
	SenderData  struct {
		ChatID     string `json:"chatId"`
		Sender     string `json:"sender"`
		SenderName string `json:"senderName"`
	} `json:"senderData"`
	MessageData struct {
		TypeMessage     string `json:"typeMessage"`
		TextMessageData struct {
			TextMessage string `json:"textMessage"`
		} `json:"textMessageData"`
		ExtendedTextMessageData struct {
			Text string `json:"text"`
		} `json:"extendedTextMessageData"`
	} `json:"messageData"`
}

// Text returns the message body for text and extended text messages.
func (w GreenAPIWebhook) Text() string {
	switch w.MessageData.TypeMessage {
	case "textMessage":
		return w.MessageData.TextMessageData.TextMessage
	case "extendedTextMessage":
		return w.MessageData.ExtendedTextMessageData.Text
	}
	return ""
}

type WebhookAck struct {
	Handled bool   `json:"handled"`
	Reason  string `json:"reason,omitempty"`
}

// SenderPhone strips the chat suffix ("@c.us") from the sender's chat id.
func (w GreenAPIWebhook) SenderPhone() string {
	id := w.SenderData.ChatID
	if i := strings.IndexByte(id, '@'); i >= 0 {
		return id[:i]
	}
	return id
}
