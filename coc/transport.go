package coc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public Clash of Clans API endpoint.
const DefaultBaseURL = "https://api.clashofclans.com/v1"

// Response is a completed round trip. Non-2xx statuses are still responses.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Transport performs a single request against the API. Implementations own
// the base URL, authentication and timeouts; path is relative to the base URL.
type Transport interface {
	Do(ctx context.Context, method, path string, query url.Values) (*Response, error)
}

// HTTPTransport is the resty-backed Transport used by default.
type HTTPTransport struct {
	client *resty.Client
	logger zerolog.Logger
}

// NewHTTPTransport creates a transport that authenticates every request with
// token as a bearer credential.
func NewHTTPTransport(baseURL, token string, logger zerolog.Logger, opts ...Option) (*HTTPTransport, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: API token is required", ErrInvalidConfig)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	var rc *resty.Client
	if options.httpClient != nil {
		rc = resty.NewWithClient(options.httpClient)
	} else {
		rc = resty.New()
	}

	rc.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", options.userAgent).
		SetTimeout(options.timeout).
		SetLogger(restyLogger{logger: logger})

	return &HTTPTransport{
		client: rc,
		logger: logger,
	}, nil
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, method, path string, query url.Values) (*Response, error) {
	start := time.Now()

	req := t.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Execute(method, "/"+strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	t.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Clash of Clans API request")

	return &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

// restyLogger routes resty's internal messages to zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
