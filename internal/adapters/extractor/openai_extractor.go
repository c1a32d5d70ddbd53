package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/platform/httpx"
	"delivery-notify-service/internal/platform/obs"
	"delivery-notify-service/internal/ports"
)

// OpenAIConfig configures OpenAIExtractor.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// DefaultOpenAIConfig returns the chat-completions defaults for apiKey.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:      apiKey,
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		Timeout:     20 * time.Second,
	}
}

// OpenAIExtractor interprets messages with the OpenAI chat completions API in JSON mode.
type OpenAIExtractor struct {
	cfg    OpenAIConfig
	client *httpx.Client
}

func NewOpenAIExtractor(cfg OpenAIConfig) (*OpenAIExtractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	def := DefaultOpenAIConfig(cfg.APIKey)
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &OpenAIExtractor{cfg: cfg, client: httpx.NewClient(cfg.Timeout)}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAIExtractor) Interpret(ctx context.Context, text string, known domain.SlotUpdate) ports.Extraction {
	x, err := o.interpret(ctx, text, known)
	if err != nil {
		return ports.DegradedExtraction(err)
	}
	return x
}

func (o *OpenAIExtractor) interpret(ctx context.Context, text string, known domain.SlotUpdate) (_ ports.Extraction, err error) {
	defer obs.Time(ctx, "openai.Interpret")(&err)

	body, err := json.Marshal(chatRequest{
		Model: o.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(known)},
			{Role: "user", Content: UserPrompt(text)},
		},
		Temperature:    o.cfg.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("openai: encode request: %w", err)
	}

	url := o.cfg.BaseURL + "/chat/completions"
	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := httpx.JSONRequest(ctx, http.MethodPost, url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
		return req, nil
	})
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("openai: chat completion: %w", err)
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return ports.Extraction{}, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return ports.Extraction{}, errors.New("openai: no choices in response")
	}
	return ParseResponse(out.Choices[0].Message.Content)
}
