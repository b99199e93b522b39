// Package vlm talks to vision-language models that read statement images and
// PDFs. The engine only needs the raw model text back; everything wire-level
// stays in here.
package vlm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the surface the converter pipeline uses. Implementations send a
// prompt plus an optional page image and return the model's text verbatim.
type Client interface {
	Generate(ctx context.Context, prompt string, image []byte) (string, error)
}

// ExtractionPrompt asks the model for a transaction table the engine can
// parse. Pipe-delimited output keeps column boundaries unambiguous even when
// descriptions contain spaces.
const ExtractionPrompt = `Extract every transaction from this bank statement.
Output a pipe-delimited table with columns: Date | Description | Debit | Credit | Balance.
Include a header row. Leave a cell empty when the statement shows no value.
Copy amounts exactly as printed. Do not invent or summarize rows.`

// Part is one piece of a message: text or a base64 image. The Type tag
// drives which of the other fields is set.
type Part struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// Message pairs a role with its content parts.
type Message struct {
	Role    string `json:"role"`
	Content []Part `json:"content"`
}

type generateRequest struct {
	Messages     []Message `json:"messages"`
	MaxNewTokens int       `json:"max_new_tokens,omitempty"`
	Temperature  float64   `json:"temperature,omitempty"`
}

type generateResponse struct {
	Response       string         `json:"response"`
	Usage          map[string]int `json:"usage,omitempty"`
	ProcessingTime float64        `json:"processing_time,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// HTTPClient speaks to a self-hosted model server over its generate endpoint.
type HTTPClient struct {
	Endpoint     string
	MaxNewTokens int
	Temperature  float64
	HTTP         *http.Client
}

// NewHTTPClient builds a client for the given server base URL, e.g.
// "http://localhost:8000".
func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{
		Endpoint:     endpoint,
		MaxNewTokens: 4096,
		HTTP:         &http.Client{Timeout: 5 * time.Minute},
	}
}

// Generate sends the prompt and optional image and returns the model text.
func (c *HTTPClient) Generate(ctx context.Context, prompt string, image []byte) (string, error) {
	parts := []Part{{Type: "text", Text: prompt}}
	if len(image) > 0 {
		parts = append(parts, Part{
			Type:  "image",
			Image: base64.StdEncoding.EncodeToString(image),
		})
	}

	reqBody := generateRequest{
		Messages:     []Message{{Role: "user", Content: parts}},
		MaxNewTokens: c.MaxNewTokens,
		Temperature:  c.Temperature,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("vlm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.Endpoint+"/api/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("vlm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vlm: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("vlm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vlm: server returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("vlm: decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("vlm: model error: %s", out.Error)
	}
	return out.Response, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
