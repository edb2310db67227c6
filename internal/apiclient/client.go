package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pos-agent/internal/models"
	"pos-agent/internal/session"
	"pos-agent/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const maxResponseBytes = 10 << 20

// TokenRefresher obtains a fresh anti-forgery token for the session.
type TokenRefresher interface {
	Refresh(ctx context.Context) error
}

// SessionEventPublisher is notified when the client forces a login redirect.
type SessionEventPublisher interface {
	PublishSessionExpired(ctx context.Context, event *models.SessionExpiredEvent) error
}

// Request is one call to the remote API. Attempt counts resends of this call;
// it is owned by the call, never shared between calls.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	Attempt     int
}

// JSONRequest builds a request with v encoded as the JSON body. A nil v sends no body.
func JSONRequest(method, path string, v interface{}) (*Request, error) {
	req := &Request{Method: method, Path: path}
	if v == nil {
		return req, nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
	}
	req.Body = body
	req.ContentType = "application/json"
	return req, nil
}

type Option func(*Client)

// WithTimeout bounds calls whose context carries no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLoginPath sets where the operator is sent after repeated auth failures.
func WithLoginPath(path string) Option {
	return func(c *Client) { c.loginPath = path }
}

func WithSessionEvents(p SessionEventPublisher) Option {
	return func(c *Client) { c.events = p }
}

// Client is the single request pipeline to the remote API. It attaches the
// CSRF header, resends a failed state-changing call once with a refreshed
// token, and forces a login redirect after repeated auth failures.
type Client struct {
	httpClient *http.Client
	session    *session.Session
	refresher  TokenRefresher
	navigator  session.Navigator
	events     SessionEventPublisher
	loginPath  string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewHTTPClient returns an http.Client that carries the session's cookies.
func NewHTTPClient(sess *session.Session) *http.Client {
	return &http.Client{Jar: sess.Jar()}
}

// NewClient creates the request pipeline.
func NewClient(
	httpClient *http.Client,
	sess *session.Session,
	refresher TokenRefresher,
	navigator session.Navigator,
	opts ...Option,
) *Client {
	c := &Client{
		httpClient: httpClient,
		session:    sess,
		refresher:  refresher,
		navigator:  navigator,
		loginPath:  "/login",
		timeout:    15 * time.Second,
		logger:     util.Named("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session exposes the shared session for read access.
func (c *Client) Session() *session.Session {
	return c.session
}

// Do sends req and decodes a successful JSON answer into out (if non-nil).
func (c *Client) Do(ctx context.Context, req *Request, out interface{}) error {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := util.StartSpan(ctx, "APIClient.Do",
		attribute.String("http.method", req.Method),
		attribute.String("pos.path", req.Path),
		attribute.Int("pos.attempt", req.Attempt))
	defer span.End()

	status, body, err := c.send(ctx, req)
	if err != nil {
		util.RecordError(span, err)
		return err
	}

	if status >= 200 && status <= 299 {
		c.session.RecordSuccess()
		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", req.Method, req.Path, err)
		}
		return nil
	}

	apiErr := newError(req, status, body)
	util.RecordError(span, apiErr)

	if apiErr.IsAuthFailure() {
		if req.Attempt == 0 && req.Method != http.MethodGet {
			return c.retryWithFreshToken(ctx, req, out)
		}

		if redirect, failures := c.session.RecordAuthFailure(); redirect {
			c.forceLogin(ctx, failures)
		}
	}

	return apiErr
}

func (c *Client) retryWithFreshToken(ctx context.Context, req *Request, out interface{}) error {
	util.AuthRetriesTotal.Inc()
	c.logger.Info("Auth failure on state-changing request, retrying with fresh CSRF token",
		zap.String("method", req.Method),
		zap.String("path", req.Path))

	if c.refresher != nil {
		if err := c.refresher.Refresh(ctx); err != nil {
			c.logger.Warn("CSRF refresh before retry failed", zap.Error(err))
		}
	}

	retry := *req
	retry.Attempt = req.Attempt + 1
	return c.Do(ctx, &retry, out)
}

func (c *Client) forceLogin(ctx context.Context, failures int) {
	util.LoginRedirectsTotal.Inc()
	c.logger.Warn("Redirecting to login after repeated auth failures",
		zap.Int("failures", failures),
		zap.String("redirect", c.loginPath))

	c.session.ClearSessionCookies()
	if c.navigator != nil {
		c.navigator.Navigate(c.loginPath)
	}

	if c.events == nil {
		return
	}
	event := &models.SessionExpiredEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSessionExpired,
			Timestamp: time.Now(),
		},
		Failures: failures,
		Redirect: c.loginPath,
	}
	if err := c.events.PublishSessionExpired(ctx, event); err != nil {
		c.logger.Error("Failed to publish SessionExpired event", zap.Error(err))
	}
}

func (c *Client) send(ctx context.Context, req *Request) (int, []byte, error) {
	endpoint := c.endpoint(req)

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build %s %s: %w", req.Method, req.Path, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.New().String())
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if header, token, ok := c.session.CSRFToken(); ok {
		httpReq.Header.Set(header, token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	util.APIRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		util.APIRequestsTotal.WithLabelValues(req.Method, "error").Inc()
		return 0, nil, fmt.Errorf("%s %s failed: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	util.APIRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read %s %s response: %w", req.Method, req.Path, err)
	}
	return resp.StatusCode, payload, nil
}

func (c *Client) endpoint(req *Request) string {
	base := strings.TrimRight(c.session.BaseURL().String(), "/")
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	endpoint := base + path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}
	return endpoint
}
