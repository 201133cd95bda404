package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/requestarr/requestarr/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: baseURL,
		Model:   "gpt-4.1-nano",
		Timeout: 5,
	}, zerolog.Nop())
}

func completionBody(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
}

func TestExtractNotConfigured(t *testing.T) {
	client := NewClient(config.OpenAIConfig{}, zerolog.Nop())
	if _, err := client.Extract(context.Background(), "dune"); !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("Extract error = %v, want ErrAPIKeyMissing", err)
	}
}

func TestExtract(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(completionBody(`{"title":"Game of Thrones","seasons":[3]}`))
	}))
	defer server.Close()

	payload, err := newTestClient(server.URL).Extract(context.Background(), "game of thrones s03")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if payload.Title != "Game of Thrones" {
		t.Errorf("Title = %q, want %q", payload.Title, "Game of Thrones")
	}
	if len(payload.Seasons) != 1 || payload.Seasons[0] != 3 {
		t.Errorf("Seasons = %v, want [3]", payload.Seasons)
	}

	if got.Model != "gpt-4.1-nano" {
		t.Errorf("Model = %q, want gpt-4.1-nano", got.Model)
	}
	if got.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", got.Temperature)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("ResponseFormat = %+v, want json_object", got.ResponseFormat)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "game of thrones s03" {
		t.Errorf("Messages = %+v", got.Messages)
	}
}

func TestExtractRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limit exceeded", "type": "rate_limit"},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Extract(context.Background(), "dune")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Extract error = %v, want ErrRateLimited", err)
	}
}

func TestExtractAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "invalid model", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Extract(context.Background(), "dune")
	if !errors.Is(err, ErrAPIError) {
		t.Fatalf("Extract error = %v, want ErrAPIError", err)
	}
}

func TestExtractEmptyCompletion(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no choices", map[string]interface{}{"choices": []interface{}{}}},
		{"blank content", completionBody("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Extract(context.Background(), "dune")
			if !errors.Is(err, ErrEmptyCompletion) {
				t.Fatalf("Extract error = %v, want ErrEmptyCompletion", err)
			}
		})
	}
}

func TestExtractMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(completionBody("Sure! The title is Dune."))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Extract(context.Background(), "dune")
	if err == nil {
		t.Fatal("Extract succeeded on prose completion, want JSON error")
	}
}
