package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

var tracer = otel.Tracer("prooptica.internal.portal")

const (
	defaultTimeout    = 8 * time.Second
	defaultCookieName = "PHPSESSID"
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	maxPageBytes      = 4 << 20
)

// Phases reported to the Observer.
const (
	PhasePrime = "prime"
	PhaseFetch = "fetch"
)

// Observer receives one event per upstream call.
type Observer interface {
	ObserveUpstream(phase, outcome string, elapsed time.Duration)
}

// Client performs the priming and calendar requests against the portal.
// It keeps no session state between calls.
type Client struct {
	directory  *Directory
	httpClient *http.Client
	cookieName string
	userAgent  string
	logger     *logging.Logger
	observer   Observer
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client. Its redirect policy is used for
// calendar fetches; priming always disables redirects.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithCookieName sets the session cookie name looked up while priming.
func WithCookieName(name string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(name) != "" {
			c.cookieName = strings.TrimSpace(name)
		}
	}
}

// WithUserAgent overrides the browser user agent sent upstream.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver reports call outcomes, typically to metrics.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a portal client bound to a specialist directory.
func NewClient(directory *Directory, opts ...ClientOption) *Client {
	c := &Client{
		directory:  directory,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cookieName: defaultCookieName,
		userAgent:  defaultUserAgent,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Directory returns the allow-list the client resolves specialists against.
func (c *Client) Directory() *Directory {
	return c.directory
}

// AcquireSession primes a fresh upstream session for the specialist by
// requesting the base calendar URL without following redirects.
func (c *Client) AcquireSession(ctx context.Context, specialistID string) (SessionToken, error) {
	base, err := c.directory.Lookup(specialistID)
	if err != nil {
		return SessionToken{}, err
	}

	ctx, span := tracer.Start(ctx, "portal.acquire_session")
	defer span.End()
	span.SetAttributes(attribute.String("prooptica.specialist_id", specialistID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return SessionToken{}, fmt.Errorf("portal: create priming request: %w", err)
	}
	setBrowserHeaders(req.Header, c.userAgent, "", false)

	start := time.Now()
	resp, err := c.primingClient().Do(req)
	if err != nil {
		c.observe(PhasePrime, "transport_error", start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "priming request failed")
		return SessionToken{}, fmt.Errorf("portal: priming request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))

	for _, cookie := range resp.Cookies() {
		if cookie.Name == c.cookieName && cookie.Value != "" {
			c.observe(PhasePrime, "ok", start)
			c.logger.Debug("upstream session primed", "specialist_id", specialistID, "status", resp.StatusCode)
			return SessionToken{Name: cookie.Name, Value: cookie.Value}, nil
		}
	}

	c.observe(PhasePrime, "no_cookie", start)
	span.SetStatus(codes.Error, "no session cookie")
	c.logger.Warn("upstream priming returned no session cookie",
		"specialist_id", specialistID,
		"status", resp.StatusCode,
		"cookie_name", c.cookieName,
	)
	return SessionToken{}, ErrNoSessionCookie
}

// FetchCalendar downloads the calendar page for the requested week using the
// primed session. Redirects are followed; only the final page matters.
func (c *Client) FetchCalendar(ctx context.Context, token SessionToken, specialistID string, q WeekQuery) (*Page, error) {
	base, err := c.directory.Lookup(specialistID)
	if err != nil {
		return nil, err
	}
	target := BuildFetchURL(base, q)

	ctx, span := tracer.Start(ctx, "portal.fetch_calendar")
	defer span.End()
	span.SetAttributes(
		attribute.String("prooptica.specialist_id", specialistID),
		attribute.String("prooptica.week_start", q.WeekStart),
		attribute.String("prooptica.direction", string(q.Direction)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("portal: create calendar request: %w", err)
	}
	setBrowserHeaders(req.Header, c.userAgent, base.String(), !q.IsZero())
	req.Header.Set("Cookie", token.Cookie())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(PhaseFetch, "transport_error", start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "calendar request failed")
		return nil, fmt.Errorf("portal: calendar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(PhaseFetch, "bad_status", start)
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		span.SetStatus(codes.Error, "non-2xx calendar response")
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
		c.logger.Warn("upstream calendar non-2xx response",
			"specialist_id", specialistID,
			"status", resp.StatusCode,
			"week_start", q.WeekStart,
		)
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		c.observe(PhaseFetch, "transport_error", start)
		return nil, fmt.Errorf("portal: read calendar body: %w", err)
	}
	c.observe(PhaseFetch, "ok", start)

	return &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}

// primingClient shares the transport and timeout but never follows
// redirects, because the redirect response is the one carrying Set-Cookie.
func (c *Client) primingClient() *http.Client {
	return &http.Client{
		Transport: c.httpClient.Transport,
		Timeout:   c.httpClient.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (c *Client) observe(phase, outcome string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstream(phase, outcome, time.Since(start))
}

// setBrowserHeaders mimics a desktop browser; the portal serves a stripped
// page to clients that do not look like one.
func setBrowserHeaders(h http.Header, userAgent, referer string, ajax bool) {
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "pl-PL,pl;q=0.9,en-US;q=0.8,en;q=0.7")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	if referer != "" {
		h.Set("Referer", referer)
	}
	if ajax {
		h.Set("X-Requested-With", "XMLHttpRequest")
	}
}
