package vlm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when the config names no model.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient runs extraction through the Gemini API instead of a
// self-hosted server. The API key comes from the environment
// (GEMINI_API_KEY or GOOGLE_API_KEY), following the SDK's default lookup.
type GeminiClient struct {
	Model  string
	client *genai.Client
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("vlm: create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{Model: model, client: client}, nil
}

// Generate sends the prompt with the page image attached inline.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, image []byte) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	if len(image) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: detectMIME(image),
				Data:     image,
			},
		})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := c.client.Models.GenerateContent(ctx, c.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("vlm: gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("vlm: empty response from gemini")
	}
	return text, nil
}

// detectMIME sniffs the attachment type from magic bytes. Statement uploads
// are PDFs or page screenshots.
func detectMIME(data []byte) string {
	switch {
	case len(data) >= 4 && string(data[:4]) == "%PDF":
		return "application/pdf"
	case len(data) >= 8 && string(data[1:4]) == "PNG":
		return "image/png"
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	default:
		return "image/png"
	}
}
