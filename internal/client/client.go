package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role-probe endpoints. A 403/404 from these is an expected negative result.
const (
	AdminProbePath  = "/admin/sellers"
	SellerProbePath = "/seller/products"
)

const maxErrorBody = 1 << 20

// TokenSource supplies the bearer credential for outbound requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

type staticToken string

func (t staticToken) Token() string { return string(t) }

// Client dispatches requests to the storefront REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	probes     map[string]bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithProbePaths replaces the set of paths whose 403/404 answers are not
// reported as errors.
func WithProbePaths(paths ...string) Option {
	return func(c *Client) {
		c.probes = make(map[string]bool, len(paths))
		for _, p := range paths {
			c.probes[p] = true
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("API base URL must start with http:// or https://, got %q", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		probes: map[string]bool{
			AdminProbePath:  true,
			SellerProbePath: true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithToken returns a copy of the client bound to a fixed credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.tokens = staticToken(token)
	return &cp
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path, out)
}

// doForm sends an application/x-www-form-urlencoded POST.
func (c *Client) doForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, path, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, path string, out any) error {
	start := time.Now()
	requestID := req.Header.Get("X-Request-ID")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", req.Method, path, ctxErr)
		}
		utils.Zlog.Warn("API request failed to send",
			zap.String("method", req.Method),
			zap.String("path", path),
			zap.String("requestId", requestID),
			zap.Error(err))
		return &NetworkError{Method: req.Method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(req.Method, path, resp.StatusCode, body)
		c.report(apiErr, requestID)
		return apiErr
	}

	utils.Zlog.Debug("API request completed",
		zap.String("method", req.Method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("requestId", requestID),
		zap.Duration("duration", time.Since(start)))

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// report logs a failed response. Role-probe rejections are expected and stay
// out of the error channel; they still reach the caller.
func (c *Client) report(apiErr *APIError, requestID string) {
	fields := []zap.Field{
		zap.String("method", apiErr.Method),
		zap.String("path", apiErr.Path),
		zap.Int("status", apiErr.Status),
		zap.String("kind", apiErr.Kind.String()),
		zap.String("requestId", requestID),
	}
	if c.IsProbe(apiErr.Path) && apiErr.AuthorizationDenied() {
		utils.Zlog.Debug("Role probe answered negatively", fields...)
		return
	}
	utils.Zlog.Warn("API request failed", append(fields, zap.String("message", apiErr.Message))...)
}

func (c *Client) IsProbe(path string) bool {
	return c.probes[path]
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
