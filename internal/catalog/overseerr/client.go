// Package overseerr implements the catalog client against the Overseerr
// HTTP API.
package overseerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/requestarr/requestarr/internal/catalog"
	"github.com/requestarr/requestarr/internal/config"
)

const imageBaseURL = "https://image.tmdb.org/t/p/w600_and_h900_bestv2"

var (
	ErrNotConfigured = errors.New("overseerr URL or API key is not configured")
	ErrAPIError      = errors.New("overseerr API error")
	ErrRateLimited   = errors.New("overseerr API rate limited")
	ErrNotFound      = errors.New("overseerr media not found")
)

// Client is an Overseerr API client implementing catalog.Client.
type Client struct {
	httpClient *http.Client
	config     config.OverseerrConfig
	logger     zerolog.Logger
}

// NewClient creates a new Overseerr client.
func NewClient(cfg config.OverseerrConfig, logger zerolog.Logger) *Client {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "overseerr").Logger(),
	}
}

// IsConfigured returns true if the URL and API key are set.
func (c *Client) IsConfigured() bool {
	return c.config.URL != "" && c.config.APIKey != ""
}

// Test verifies connectivity by fetching the Overseerr status endpoint.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var result struct {
		Version string `json:"version"`
	}
	return c.doRequest(ctx, http.MethodGet, "/status", nil, nil, &result)
}

// Search queries the catalog and returns candidates in Overseerr's own
// relevance order. The year, when non-zero, is applied as a post-hoc
// filter hint only when it does not empty the result set.
func (c *Client) Search(ctx context.Context, title string, year int) ([]catalog.Item, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("query", title)
	params.Set("page", "1")

	var response searchResponse
	if err := c.doRequest(ctx, http.MethodGet, "/search", params, nil, &response); err != nil {
		return nil, err
	}

	items := make([]catalog.Item, 0, len(response.Results))
	for _, r := range response.Results {
		item, ok := toItem(r)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	c.logger.Debug().
		Str("query", title).
		Int("year", year).
		Int("results", len(items)).
		Msg("Catalog search completed")

	return items, nil
}

// GetSeasons returns the season inventory for a series, merging the
// per-season request status from the media record when one exists.
func (c *Client) GetSeasons(ctx context.Context, id int) ([]catalog.Season, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	var details tvDetails
	path := fmt.Sprintf("/tv/%d", id)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &details); err != nil {
		return nil, err
	}

	statuses := make(map[int]int)
	if details.MediaInfo != nil {
		for _, s := range details.MediaInfo.Seasons {
			statuses[s.SeasonNumber] = s.Status
		}
	}

	seasons := make([]catalog.Season, 0, len(details.Seasons))
	for _, s := range details.Seasons {
		seasons = append(seasons, catalog.Season{
			Number: s.SeasonNumber,
			Status: catalog.MediaStatus(statuses[s.SeasonNumber]),
		})
	}

	c.logger.Debug().
		Int("id", id).
		Int("seasons", len(seasons)).
		Msg("Got season inventory")

	return seasons, nil
}

// SubmitRequest submits a media request, optionally scoped to seasons.
func (c *Client) SubmitRequest(ctx context.Context, id int, mediaType catalog.MediaType, seasonNumbers []int) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	payload := requestPayload{
		MediaID:   id,
		MediaType: string(mediaType),
	}
	if mediaType == catalog.MediaTypeTV && len(seasonNumbers) > 0 {
		payload.Seasons = seasonNumbers
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request payload: %w", err)
	}

	if err := c.doRequest(ctx, http.MethodPost, "/request", nil, body, nil); err != nil {
		return err
	}

	c.logger.Info().
		Int("mediaId", id).
		Str("mediaType", string(mediaType)).
		Ints("seasons", seasonNumbers).
		Msg("Submitted media request")

	return nil
}

// doRequest performs an HTTP request against the Overseerr API and
// decodes the JSON response into result when result is non-nil.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body []byte, result interface{}) error {
	reqURL := c.config.URL + path
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp errorResponse
		message := ""
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			message = errResp.Message
		}

		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("message", message).
			Msg("Overseerr API error")

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusTooManyRequests:
			return ErrRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: invalid API key", ErrAPIError)
		default:
			if message != "" {
				return fmt.Errorf("%w: %s", ErrAPIError, message)
			}
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// toItem converts a search result to a catalog item. Results that are
// neither movies nor series (people, collections) are skipped.
func toItem(r searchResult) (catalog.Item, bool) {
	var mediaType catalog.MediaType
	switch r.MediaType {
	case "movie":
		mediaType = catalog.MediaTypeMovie
	case "tv":
		mediaType = catalog.MediaTypeTV
	default:
		return catalog.Item{}, false
	}

	title := r.Title
	date := r.ReleaseDate
	if mediaType == catalog.MediaTypeTV {
		title = r.Name
		date = r.FirstAirDate
	}

	year := 0
	if len(date) >= 4 {
		year, _ = strconv.Atoi(date[:4])
	}

	item := catalog.Item{
		ID:        r.ID,
		MediaType: mediaType,
		Title:     title,
		Year:      year,
		Overview:  r.Overview,
	}

	if r.PosterPath != "" {
		item.PosterURL = imageBaseURL + r.PosterPath
	}

	if r.MediaInfo != nil {
		st := catalog.MediaStatus(r.MediaInfo.Status)
		// A 4k-only record still means the media has been handled.
		if st == catalog.StatusNone && r.MediaInfo.Status4k != 0 {
			st = catalog.MediaStatus(r.MediaInfo.Status4k)
		}
		item.Status = st
	}

	// Season inventories from /search are partial (only seasons with a
	// request record); the full list comes from GetSeasons.

	return item, true
}
