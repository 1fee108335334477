/**
* Name:         client.go
* Description:  thin REST client for the Cash4Edu backend
* Workflow:     build request, attach bearer token, send, normalize envelope / error, toast on failure
 */
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cash4edu/internal/models"
	"cash4edu/internal/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

// TokenSource supplies the persisted bearer token. "" means no token.
type TokenSource interface {
	GetToken(ctx context.Context) string
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Notifier   notify.Notifier
	Metrics    *Metrics
	Logger     *zap.Logger
}

// Client performs one request per call against a fixed base URL. It never
// retries; retry is the caller's business.
type Client struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	tokens   TokenSource
	notifier notify.Notifier
	metrics  *Metrics
	logger   *zap.Logger
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:  cfg.Timeout,
		http:     httpClient,
		tokens:   cfg.Tokens,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// Request describes one call. Form takes precedence over Body.
type Request struct {
	Method   string
	Endpoint string
	Header   http.Header
	Body     any
	Form     *Form
	SkipAuth bool
	// Quiet suppresses the failure toast; the caller reports instead.
	Quiet bool
}

// Do sends req and returns the decoded envelope. Failures come back as
// *Error and, unless req.Quiet, also as an error toast.
func (c *Client) Do(ctx context.Context, req Request) (*models.Envelope, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	endpoint := strings.TrimPrefix(req.Endpoint, "/")

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	env, status, err := c.do(ctx, method, endpoint, req)
	c.metrics.observe(method, metricEndpoint(endpoint), status, time.Since(start))

	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			apiErr = &Error{Kind: KindNetwork, Err: err}
		}
		apiErr.Endpoint = endpoint
		c.logger.Warn("Client.Do(): request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", apiErr.Status),
			zap.Error(apiErr))
		if !req.Quiet {
			notify.Error(c.notifier, apiErr.Title(), apiErr.Detail())
		}
		return nil, apiErr
	}
	return env, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, req Request) (*models.Envelope, int, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		buf, ct, err := req.Form.encode()
		if err != nil {
			return nil, 0, fmt.Errorf("encode form: %w", err)
		}
		body, contentType = buf, ct
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode body: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if !req.SkipAuth && c.tokens != nil {
		if token := c.tokens.GetToken(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Kind: KindStatus, Status: resp.StatusCode}
		var env models.Envelope
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Message
		}
		return nil, resp.StatusCode, apiErr
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return &models.Envelope{Success: true}, resp.StatusCode, nil
	}
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, resp.StatusCode, &Error{Kind: KindDecode, Status: resp.StatusCode, Err: err}
	}
	c.logger.Debug("Client.do(): response",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Bool("success", env.Success))
	return &env, resp.StatusCode, nil
}

// DecodeData decodes env.data into v and validates it. An absent payload or
// a payload that fails validation is a KindValidation error.
func DecodeData(env *models.Envelope, v any) error {
	if !env.HasData() {
		msg := "response has no data"
		if env != nil && env.Message != "" {
			msg = env.Message
		}
		return &Error{Kind: KindValidation, Message: msg}
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &Error{Kind: KindValidation, Message: "unexpected response shape", Err: err}
	}
	if err := models.ValidateValue(v); err != nil {
		return &Error{Kind: KindValidation, Message: "invalid response data", Err: err}
	}
	return nil
}

// metricEndpoint collapses ids out of paths so label cardinality stays
// bounded: profile/u1 -> profile/:id.
func metricEndpoint(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.Split(endpoint, "/")
	if len(parts) > 1 {
		switch parts[0] {
		case "profile", "perks":
			parts[1] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
