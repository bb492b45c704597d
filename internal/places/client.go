package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const textSearchPath = "/maps/api/place/textsearch/json"

var (
	ErrUnavailable    = errors.New("places api unavailable")
	ErrMissingResults = errors.New("places response has no results field")
)

// StatusError is returned when the places API answers with a non-200 status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("places response status %d", e.Code)
}

type Place struct {
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client is a minimal Places text search client.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// TextSearch runs a free-text places query and returns results in API order.
func (c *Client) TextSearch(ctx context.Context, query string) ([]Place, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+textSearchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build places request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var parsed struct {
		Results *[]Place `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: parse places json failed: %v", ErrUnavailable, err)
	}
	if parsed.Results == nil {
		return nil, ErrMissingResults
	}
	return *parsed.Results, nil
}
