// Package apiclient is the console's HTTP client for the backend REST API. It stamps the bearer
// token from the token store, and on a 401 performs at most one refresh and one retry before
// terminating the session.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"event-admin-console/internal/logging"
	"event-admin-console/internal/navigation"
	"event-admin-console/internal/security"
	"event-admin-console/internal/session/domain"
)

const (
	instrumentationName = "event-admin-console/internal/apiclient"
	maxBodyBytes        = 2 << 20
	requestIDHeader     = "X-Request-ID"
)

// TokenStore is the part of tokenstore.Store the client needs.
type TokenStore interface {
	Tokens(ctx context.Context) (access, refresh string)
	Save(ctx context.Context, a domain.Artifacts) error
	Clear(ctx context.Context)
}

// RefreshListener is told about refresh outcomes so session state can follow the store.
type RefreshListener interface {
	// TokensRefreshed is called after a new pair has been persisted.
	TokensRefreshed(ctx context.Context, profile domain.UserProfile)
	// SessionTerminated is called after a failed refresh cleared the store, before navigation.
	SessionTerminated(ctx context.Context)
}

// Options configures a Client. BaseURL, Store, Codec and Navigator are required.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	Transport    http.RoundTripper
	Store        TokenStore
	Codec        security.Codec
	Navigator    navigation.Navigator
	LandingRoute string
	// SingleFlight collapses concurrent refreshes into one backend call.
	SingleFlight bool
	Logger       *slog.Logger
}

// Request describes one API call. Body, when set, is sent as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Client is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	jar          *resettableJar
	store        TokenStore
	codec        security.Codec
	navigator    navigation.Navigator
	landing      string
	singleFlight bool
	logger       *slog.Logger

	refreshGroup singleflight.Group

	mu       sync.RWMutex
	listener RefreshListener

	tracer    trace.Tracer
	requests  metric.Int64Counter
	refreshes metric.Int64Counter
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", opts.BaseURL)
	}
	if opts.Store == nil || opts.Codec == nil || opts.Navigator == nil {
		return nil, errors.New("apiclient: store, codec and navigator are required")
	}
	landing := opts.LandingRoute
	if landing == "" {
		landing = "/"
	}

	jar := newResettableJar()
	c := &Client{
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
			Jar:       jar,
		},
		jar:          jar,
		store:        opts.Store,
		codec:        opts.Codec,
		navigator:    opts.Navigator,
		landing:      landing,
		singleFlight: opts.SingleFlight,
		logger:       logging.Or(opts.Logger),
		tracer:       otel.Tracer(instrumentationName),
	}

	meter := otel.Meter(instrumentationName)
	if c.requests, err = meter.Int64Counter("console.api.requests",
		metric.WithDescription("API requests issued, by method and status")); err != nil {
		return nil, err
	}
	if c.refreshes, err = meter.Int64Counter("console.api.refresh",
		metric.WithDescription("Token refresh attempts, by outcome")); err != nil {
		return nil, err
	}
	return c, nil
}

// SetListener registers the refresh listener. It replaces any previous listener.
func (c *Client) SetListener(l RefreshListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

func (c *Client) currentListener() RefreshListener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listener
}

// ClearCookies drops every cookie the backend has set.
func (c *Client) ClearCookies() {
	if c == nil {
		return
	}
	c.jar.Reset()
}

// Cookies returns the cookies the client would send to path on the backend.
func (c *Client) Cookies(path string) []*http.Cookie {
	u, err := url.Parse(c.baseURL + ensureLeadingSlash(path))
	if err != nil {
		return nil
	}
	return c.jar.Cookies(u)
}

// Do issues req with the refresh state machine:
//
//	ISSUE -> 2xx/4xx/5xx other than 401        -> return
//	ISSUE -> 401, no refresh token              -> return the 401
//	ISSUE -> 401, refresh token -> REFRESH ok   -> RETRY once -> return whatever it yields
//	ISSUE -> 401, refresh token -> REFRESH fail -> TERMINATE, return the 401 with *domain.RefreshError
//
// A non-nil error with a nil Response means the request never completed.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, ErrNotInitialized
	}
	resp, sentAccess, err := c.issue(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	access, refresh := c.store.Tokens(ctx)
	if refresh == "" {
		return resp, nil
	}
	if c.singleFlight && access != "" && access != sentAccess {
		// Another request already rotated the pair while this one was in flight.
		retry, _, err := c.issue(ctx, req)
		return retry, err
	}

	if err := c.refreshSession(ctx, refresh); err != nil {
		return resp, err
	}
	retry, _, err := c.issue(ctx, req)
	return retry, err
}

// DoJSON calls Do and decodes the body into out (which may be nil). Non-2xx responses and
// envelopes flagged as errors become *APIError.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	op := strings.ToLower(req.Method) + " " + req.Path
	resp, err := c.Do(ctx, req)
	if err != nil {
		if resp != nil {
			apiErr := newAPIError(op, resp)
			apiErr.Err = err
			return apiErr
		}
		return &APIError{Op: op, Err: err}
	}
	if !resp.OK() {
		return newAPIError(op, resp)
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	var head envelopeHead
	if json.Unmarshal(resp.Body, &head) == nil && head.Failed() {
		apiErr := newAPIError(op, resp)
		if head.StatusCode != 0 {
			apiErr.StatusCode = head.StatusCode
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Call issues req and returns the decoded envelope result.
func Call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var env Envelope[T]
	if err := c.DoJSON(ctx, req, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Result, nil
}

// issue performs one HTTP round trip with the current access token, without refresh handling.
// It returns the access token it stamped.
func (c *Client) issue(ctx context.Context, req Request) (*Response, string, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	path := ensureLeadingSlash(req.Path)

	ctx, span := c.tracer.Start(ctx, "apiclient "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer span.End()

	target := c.baseURL + path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			span.RecordError(err)
			return nil, "", fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		span.RecordError(err)
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)
	access, _ := c.store.Tokens(ctx)
	if access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.requests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", method), attribute.String("status", "error")))
		c.logger.Debug("api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, access, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		return nil, access, fmt.Errorf("read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))
	if httpResp.StatusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(httpResp.StatusCode))
	}
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method), attribute.String("status", strconv.Itoa(httpResp.StatusCode))))
	c.logger.Debug("api request", "method", method, "path", path, "status", httpResp.StatusCode, "request_id", requestID)

	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, access, nil
}

func ensureLeadingSlash(p string) string {
	if p == "" || p[0] != '/' {
		return "/" + p
	}
	return p
}
