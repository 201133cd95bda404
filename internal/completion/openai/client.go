// Package openai implements the query completion client against the
// OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/requestarr/requestarr/internal/config"
	"github.com/requestarr/requestarr/internal/query"
)

var (
	ErrAPIKeyMissing   = errors.New("openai API key is not configured")
	ErrAPIError        = errors.New("openai API error")
	ErrRateLimited     = errors.New("openai API rate limited")
	ErrEmptyCompletion = errors.New("openai returned no completion")
)

// systemPrompt pins the extraction schema. The model does the
// natural-language work: title boundaries, year detection and season
// phrases like "s03", "ss5", "season 5 and 6".
const systemPrompt = `You extract structured media queries from chat messages.
The user asks about a movie or TV show. Respond with ONLY a JSON object with these fields:
- "title": the media title, without year or season specifiers (string, required)
- "year": the release year if the user named one (integer, omit otherwise)
- "seasons": season numbers if the user named any, recognizing patterns like "s3", "ss03", "season 4", "seasons 2 and 5" (array of integers, omit otherwise)
Do not invent a year or seasons the user did not mention. No prose, no markdown fences.`

// Client talks to the OpenAI chat completions endpoint and implements
// query.CompletionClient.
type Client struct {
	httpClient *http.Client
	config     config.OpenAIConfig
	logger     zerolog.Logger
}

// NewClient creates a new completion client.
func NewClient(cfg config.OpenAIConfig, logger zerolog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "openai").Logger(),
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Extract asks the model for the structured query payload.
func (c *Client) Extract(ctx context.Context, text string) (*query.Payload, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	reqBody := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := ""
		if completion.Error != nil {
			message = completion.Error.Message
		}
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("message", message).
			Msg("OpenAI API error")

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, ErrRateLimited
		}
		if message != "" {
			return nil, fmt.Errorf("%w: %s", ErrAPIError, message)
		}
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	if len(completion.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return nil, ErrEmptyCompletion
	}

	var payload query.Payload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("completion is not valid JSON: %w", err)
	}

	c.logger.Debug().
		Str("title", payload.Title).
		Int("year", payload.Year).
		Ints("seasons", payload.Seasons).
		Msg("Completion extracted")

	return &payload, nil
}
