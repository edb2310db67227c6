package csrf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pos-agent/internal/session"
	"pos-agent/internal/util"

	"go.uber.org/zap"
)

const tokenPath = "/csrf"

// ErrNoToken is returned when the token endpoint answered without a token.
var ErrNoToken = errors.New("csrf: response carried no token")

type tokenBody struct {
	Token      string `json:"token"`
	HeaderName string `json:"headerName"`
}

// Bootstrap fetches the anti-forgery token and stores it in the Session.
type Bootstrap struct {
	httpClient *http.Client
	session    *session.Session
	logger     *zap.Logger
}

// NewBootstrap creates a bootstrap that shares the session's cookie jar.
func NewBootstrap(httpClient *http.Client, sess *session.Session) *Bootstrap {
	return &Bootstrap{
		httpClient: httpClient,
		session:    sess,
		logger:     util.Named("csrf"),
	}
}

// Refresh requests a fresh token. Like any successful API answer, a token
// resets the auth failure counter. Failure is logged and returned; callers
// treat it as non-fatal.
func (b *Bootstrap) Refresh(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "CSRF.Refresh")
	defer span.End()

	header, token, err := b.fetch(ctx)
	if err != nil {
		util.CSRFRefreshTotal.WithLabelValues("failed").Inc()
		util.RecordError(span, err)
		b.logger.Warn("CSRF init failed, state-changing requests may be rejected", zap.Error(err))
		return err
	}

	b.session.SetCSRFToken(header, token)
	b.session.RecordSuccess()
	util.CSRFRefreshTotal.WithLabelValues("ok").Inc()
	b.logger.Debug("CSRF token refreshed", zap.String("header", header))
	return nil
}

func (b *Bootstrap) fetch(ctx context.Context) (string, string, error) {
	endpoint := strings.TrimRight(b.session.BaseURL().String(), "/") + tokenPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build csrf request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("csrf request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("csrf endpoint returned status %d", resp.StatusCode)
	}

	header, _, _ := b.session.CSRFToken()
	if token := resp.Header.Get(header); token != "" {
		return header, token, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", "", fmt.Errorf("failed to read csrf response: %w", err)
	}
	var body tokenBody
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil && body.Token != "" {
		return body.HeaderName, body.Token, nil
	}
	return "", "", ErrNoToken
}
