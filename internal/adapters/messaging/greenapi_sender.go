package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"delivery-notify-service/internal/platform/httpx"
	"delivery-notify-service/internal/platform/obs"
)

// GreenAPISender delivers WhatsApp messages through a Green API instance.
//
// Transient failures (network errors, 429 and 5xx) are retried with backoff.
// The sender is safe for concurrent use.
type GreenAPISender struct {
	client   *httpx.Client
	baseURL  string
	instance string
	token    string
}

func NewGreenAPISender(baseURL, instance, token string) (*GreenAPISender, error) {
	if instance == "" || token == "" {
		return nil, errors.New("green api instance and token are required")
	}
	if baseURL == "" {
		baseURL = "https://api.green-api.com"
	}
	return &GreenAPISender{
		client:   httpx.NewClient(10 * time.Second),
		baseURL:  strings.TrimRight(baseURL, "/"),
		instance: instance,
		token:    token,
	}, nil
}

// ChatID returns the Green API chat id for a canonical phone key.
func ChatID(phone string) string {
	return phone + "@c.us"
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	IDMessage string `json:"idMessage"`
}

func (g *GreenAPISender) Send(ctx context.Context, phone, message string) (err error) {
	defer obs.Time(ctx, "greenapi.Send")(&err)

	if phone == "" {
		return errors.New("green api send: empty phone")
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: ChatID(phone), Message: message})
	if err != nil {
		return fmt.Errorf("green api send: encode body: %w", err)
	}

	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", g.baseURL, g.instance, g.token)
	resp, err := g.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return httpx.JSONRequest(ctx, http.MethodPost, url, body)
	})
	if err != nil {
		return fmt.Errorf("green api send to %s: %w", phone, err)
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return fmt.Errorf("green api send to %s: decode response: %w", phone, err)
	}
	if out.IDMessage == "" {
		return fmt.Errorf("green api send to %s: response has no idMessage", phone)
	}
	return nil
}
