// Package remote implements the repositories against a hosted PostgREST-style backend.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/metrics"
)

// Postgres error codes relayed by the backend in error bodies
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Config configures the remote client
type Config struct {
	// BaseURL is the REST root, e.g. https://project.example.co/rest/v1
	BaseURL             string
	APIKey              string
	Timeout             time.Duration
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerTimeout      time.Duration
	HTTPClient          *http.Client
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote backend returned %d (%s): %s", e.Status, e.Code, e.Message)
}

// IsUniqueViolation reports a duplicate key answer
func (e *APIError) IsUniqueViolation() bool {
	return e.Code == codeUniqueViolation
}

// IsForeignKeyViolation reports a missing referenced row
func (e *APIError) IsForeignKeyViolation() bool {
	return e.Code == codeForeignKeyViolation
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

type request struct {
	method string
	table  string
	query  url.Values
	body   any
	prefer []string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// Client talks to the backend through a circuit breaker
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[*response]
	name    string
	logger  zerolog.Logger
}

// NewClient creates a client. Client errors (4xx) do not count as breaker failures.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	minRequests := cfg.BreakerMinRequests
	if minRequests == 0 {
		minRequests = 10
	}
	failureRatio := cfg.BreakerFailureRatio
	if failureRatio <= 0 {
		failureRatio = 0.6
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = 30 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		name:    "remote-storage",
		logger:  logger.With().Str("component", "remote-storage").Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(c.name).Set(0)

	c.cb = gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        c.name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= failureRatio {
				c.logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio).Msg("Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			apiErr, ok := asAPIError(err)
			return ok && apiErr.Status < http.StatusInternalServerError
		},
	})

	return c
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// do executes req through the breaker
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	start := time.Now()
	resp, err := c.cb.Execute(func() (*response, error) {
		return c.roundTrip(ctx, req)
	})
	metrics.RecordRemoteRequest(req.method, req.table, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		if _, ok := asAPIError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, req request) (*response, error) {
	endpoint := c.baseURL + "/" + req.table
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if len(req.prefer) > 0 {
		httpReq.Header.Set("Prefer", strings.Join(req.prefer, ","))
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.table, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: httpResp.StatusCode}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, apiErr)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(httpResp.StatusCode)
		}
		c.logger.Debug().Int("status", apiErr.Status).Str("code", apiErr.Code).Str("table", req.table).Msg("Remote request failed")
		return nil, apiErr
	}

	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: raw}, nil
}

// selectRows performs a GET and decodes the JSON array into out
func (c *Client) selectRows(ctx context.Context, table string, query url.Values, out any) error {
	resp, err := c.do(ctx, request{method: http.MethodGet, table: table, query: query})
	if err != nil {
		return err
	}
	return decodeBody(resp.body, out)
}

// insertRows posts body and decodes the returned representation into out
func (c *Client) insertRows(ctx context.Context, table string, body any, out any) error {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		table:  table,
		body:   body,
		prefer: []string{"return=representation"},
	})
	if err != nil {
		return err
	}
	return decodeBody(resp.body, out)
}

// updateRows patches the rows matched by query and decodes the updated rows into out
func (c *Client) updateRows(ctx context.Context, table string, query url.Values, body any, out any) error {
	resp, err := c.do(ctx, request{
		method: http.MethodPatch,
		table:  table,
		query:  query,
		body:   body,
		prefer: []string{"return=representation"},
	})
	if err != nil {
		return err
	}
	return decodeBody(resp.body, out)
}

// deleteRows removes the rows matched by query and decodes them into out
func (c *Client) deleteRows(ctx context.Context, table string, query url.Values, out any) error {
	resp, err := c.do(ctx, request{
		method: http.MethodDelete,
		table:  table,
		query:  query,
		prefer: []string{"return=representation"},
	})
	if err != nil {
		return err
	}
	return decodeBody(resp.body, out)
}

// count returns the exact row count of the rows matched by query
func (c *Client) count(ctx context.Context, table string, query url.Values) (int, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodHead,
		table:  table,
		query:  query,
		prefer: []string{"count=exact"},
	})
	if err != nil {
		return 0, err
	}
	return parseContentRange(resp.header.Get("Content-Range"))
}

// parseContentRange reads the total from "0-24/3573" or "*/0"
func parseContentRange(value string) (int, error) {
	idx := strings.LastIndex(value, "/")
	if idx < 0 || idx == len(value)-1 {
		return 0, fmt.Errorf("missing total in content range %q", value)
	}
	total, err := strconv.Atoi(value[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("invalid content range %q: %w", value, err)
	}
	return total, nil
}

func decodeBody(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
