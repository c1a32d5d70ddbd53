package extractor

import (
	"context"
	"errors"
	"fmt"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/platform/obs"
	"delivery-notify-service/internal/ports"

	"google.golang.org/genai"
)

// GeminiExtractor interprets messages with a Gemini model through the genai SDK.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates a Gemini API client. baseURL is optional and only
// set for tests or proxies.
func NewGeminiExtractor(ctx context.Context, apiKey, model, baseURL string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

func (g *GeminiExtractor) Interpret(ctx context.Context, text string, known domain.SlotUpdate) ports.Extraction {
	x, err := g.interpret(ctx, text, known)
	if err != nil {
		return ports.DegradedExtraction(err)
	}
	return x
}

func (g *GeminiExtractor) interpret(ctx context.Context, text string, known domain.SlotUpdate) (_ ports.Extraction, err error) {
	defer obs.Time(ctx, "gemini.Interpret")(&err)

	contents := []*genai.Content{
		genai.NewContentFromText(UserPrompt(text), genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(known), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.7),
	})
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("gemini: generate content: %w", err)
	}
	return ParseResponse(resp.Text())
}
