// Package contactapi is the client of the HR contact REST API.
package contactapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hrconnect/hr-directory/internal/models"
	"github.com/hrconnect/hr-directory/pkg/circuitbreaker"
	apperrors "github.com/hrconnect/hr-directory/pkg/errors"
	"github.com/hrconnect/hr-directory/pkg/httpclient"
	"github.com/hrconnect/hr-directory/pkg/logger"
	"github.com/hrconnect/hr-directory/pkg/metrics"
	"github.com/hrconnect/hr-directory/pkg/retry"
	"github.com/hrconnect/hr-directory/pkg/tracing"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	ListPath   = "/api/v1/contact/all"
	CreatePath = "/api/v1/contact/create"

	serviceName = "contact-api"
)

// Client talks to the contact API with retries on reads and a circuit breaker on all calls
type Client struct {
	baseURL     string
	httpClient  httpclient.Client
	breaker     *gobreaker.CircuitBreaker
	retryConfig retry.Config
}

// Option customizes a Client
type Option func(*Client)

// WithRetryConfig overrides the retry policy of list calls
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) {
		c.retryConfig = cfg
	}
}

// WithBreakerConfig overrides the circuit breaker settings
func WithBreakerConfig(cfg circuitbreaker.Config) Option {
	return func(c *Client) {
		c.breaker = circuitbreaker.NewCircuitBreaker(cfg)
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, httpClient httpclient.Client, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid contact API base URL %q", baseURL)
	}
	if httpClient == nil {
		httpClient = httpclient.NewStandardClient()
	}

	c := &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		breaker:     circuitbreaker.NewCircuitBreaker(BreakerConfig()),
		retryConfig: retry.ContactAPIConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}

	logger.Info("Contact API client initialized", zap.String("base_url", baseURL))
	return c, nil
}

// Available reports whether the circuit breaker lets calls through
func (c *Client) Available() bool {
	return !circuitbreaker.IsCircuitOpen(c.breaker)
}

// BreakerConfig is the default breaker for the contact API. Client errors and
// cancellations do not count as failures.
func BreakerConfig() circuitbreaker.Config {
	cfg := circuitbreaker.DefaultConfig(serviceName)
	cfg.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, context.Canceled) {
			return true
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return !apiErr.Retryable()
		}
		return false
	}
	return cfg
}

// List fetches one page of contacts. Empty filters are omitted; page is always sent.
func (c *Client) List(ctx context.Context, params models.ListParams) (*models.ListResult, error) {
	const operation = "list"

	ctx, span := tracing.StartSpan(ctx, "contactapi.List",
		attribute.String("contact.search_query", params.SearchQuery),
		attribute.String("contact.role", params.Role),
		attribute.String("contact.location", params.Location),
		attribute.Int("contact.page", params.Page),
	)

	start := time.Now()
	result, err := circuitbreaker.Execute(c.breaker, func() (*models.ListResult, error) {
		return retry.DoWithResult(ctx, c.retryConfig, "contactapi."+operation, func() (*models.ListResult, error) {
			return c.fetchList(ctx, params)
		})
	})
	err = c.finish(ctx, operation, start, err)
	tracing.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	if result.Data == nil {
		result.Data = []models.ContactRecord{}
	}
	return result, nil
}

func (c *Client) fetchList(ctx context.Context, params models.ListParams) (*models.ListResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ListPath+"?"+EncodeListParams(params), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	tracing.InjectHeaders(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError("list", resp)
	}

	var result models.ListResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &APIError{Operation: "list", StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return &result, nil
}

// Create submits a new contact. Writes are not retried.
func (c *Client) Create(ctx context.Context, rec models.ContactRecord) error {
	const operation = "create"

	ctx, span := tracing.StartSpan(ctx, "contactapi.Create",
		attribute.String("contact.role", rec.Role),
		attribute.String("contact.location", rec.Location),
	)

	start := time.Now()
	_, err := circuitbreaker.Execute(c.breaker, func() (struct{}, error) {
		return struct{}{}, c.postCreate(ctx, rec)
	})
	err = c.finish(ctx, operation, start, err)
	tracing.EndSpan(span, err)
	return err
}

func (c *Client) postCreate(ctx context.Context, rec models.ContactRecord) error {
	body, err := json.Marshal(rec.ToCreateRequest())
	if err != nil {
		return fmt.Errorf("failed to encode contact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CreatePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	tracing.InjectHeaders(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError("create", resp)
	}
	return nil
}

// finish records metrics and logs for a call and maps transport failures onto ErrUnavailable
func (c *Client) finish(ctx context.Context, operation string, start time.Time, err error) error {
	duration := metrics.MeasureDuration(start)

	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		status = "canceled"
	default:
		status = "error"
	}

	metrics.ContactAPIRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.ContactAPIRequestTotal.WithLabelValues(operation, status).Inc()

	switch status {
	case "success":
		logger.LogAPICall(ctx, serviceName, operation, status, duration)
		return nil
	case "canceled":
		logger.LogAPICall(ctx, serviceName, operation, status, duration)
		return err
	}

	logger.LogAPICall(ctx, serviceName, operation, status, duration, zap.Error(err))

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	// transport failures, timeouts and an open breaker
	return apperrors.UnavailableError(serviceName, err)
}

// EncodeListParams renders the list query string
func EncodeListParams(p models.ListParams) string {
	v := url.Values{}
	if p.SearchQuery != "" {
		v.Set("searchQuery", p.SearchQuery)
	}
	if p.Role != "" {
		v.Set("role", p.Role)
	}
	if p.Location != "" {
		v.Set("location", p.Location)
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	return v.Encode()
}
