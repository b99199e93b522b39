package vlm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response":        "| Date | Description |",
			"processing_time": 1.5,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	out, err := c.Generate(context.Background(), "extract the table", []byte{0xFF, 0xD8, 0x01})
	if err != nil {
		t.Fatal(err)
	}
	if out != "| Date | Description |" {
		t.Errorf("response = %q", out)
	}

	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	parts := got.Messages[0].Content
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text != "extract the table" {
		t.Errorf("text part = %+v", parts[0])
	}
	if parts[1].Type != "image" || parts[1].Image == "" {
		t.Errorf("image part = %+v", parts[1])
	}
}

func TestHTTPClientTextOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages[0].Content) != 1 {
			t.Errorf("got %d parts, want 1", len(req.Messages[0].Content))
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.Generate(context.Background(), "hello", nil); err != nil {
		t.Fatal(err)
	}
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.Generate(context.Background(), "hello", nil); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestHTTPClientModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "context length exceeded"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.Generate(context.Background(), "hello", nil); err == nil {
		t.Error("expected error for model-reported failure")
	}
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"pdf", []byte("%PDF-1.7 rest"), "application/pdf"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"unknown", []byte{0x00, 0x01}, "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIME(tt.data); got != tt.expected {
				t.Errorf("detectMIME = %q, want %q", got, tt.expected)
			}
		})
	}
}
