package calendarview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ChefJodlak/prooptica-sub000/internal/calendar"
	"github.com/ChefJodlak/prooptica-sub000/internal/http/respond"
	"github.com/ChefJodlak/prooptica-sub000/internal/portal"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

// APIError is a non-200 response from GET /calendar.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("calendar api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("calendar api: %d %s", e.StatusCode, e.Code)
}

// Retryable reports whether a fresh attempt may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client calls the calendar adapter over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCalendar loads a specialist's week.
func (c *Client) FetchCalendar(ctx context.Context, specialistID string, q portal.WeekQuery) (*calendar.CalendarData, error) {
	params := url.Values{}
	params.Set("specialist", specialistID)
	if !q.IsZero() {
		params.Set("weekStart", q.WeekStart)
		params.Set("direction", string(q.Direction))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/calendar?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("calendar api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar api: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body respond.ErrorBody
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
			apiErr.Code = body.Error
			apiErr.Message = body.Message
		}
		c.logger.Debug("calendar api error", "specialist_id", specialistID, "status", resp.StatusCode, "code", apiErr.Code)
		return nil, apiErr
	}

	var data calendar.CalendarData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("calendar api: decode response: %w", err)
	}
	return &data, nil
}
