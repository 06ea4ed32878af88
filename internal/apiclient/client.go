package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/domain/session"
	"go.uber.org/zap"
)

const maxResponseBytes = 10 << 20

// Config holds the remote API location.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client, e.g. with an httptest one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client is a thin wrapper over the admin REST endpoints. Every method makes
// exactly one HTTP call and never retries.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  session.TokenStore
	metrics *Metrics
	logger  *zap.Logger
}

func New(cfg Config, tokens session.TokenStore, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		logger:  logger.Named("APIClient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e *envelope) env() *envelope { return e }

func (e *envelope) serverMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

type enveloped interface {
	env() *envelope
}

type loginResponse struct {
	envelope
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

type licensesResponse struct {
	envelope
	Licenses []license.License `json:"licenses"`
}

type licenseResponse struct {
	envelope
	License *license.License `json:"license"`
}

type statsResponse struct {
	envelope
	Stats license.Stats `json:"stats"`
}

type logsResponse struct {
	envelope
	Logs []activity.Entry `json:"logs"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type revokeRequest struct {
	LicenseKey string `json:"license_key"`
}

// Login exchanges admin credentials for a bearer token. It does not store the
// token; that is the session gate's job.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, OpLogin, http.MethodPost, "/admin/login", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		return "", newError(OpLogin, http.StatusOK, "", fmt.Errorf("login response carried no token"))
	}
	return token, nil
}

func (c *Client) ListLicenses(ctx context.Context) ([]license.License, error) {
	var resp licensesResponse
	if err := c.do(ctx, OpListLicenses, http.MethodGet, "/admin/licenses", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Licenses == nil {
		return []license.License{}, nil
	}
	return resp.Licenses, nil
}

// CreateLicense returns the created record when the server echoes it, nil
// otherwise.
func (c *Client) CreateLicense(ctx context.Context, req license.CreateRequest) (*license.License, error) {
	var resp licenseResponse
	if err := c.do(ctx, OpCreateLicense, http.MethodPost, "/admin/licenses", req, &resp); err != nil {
		return nil, err
	}
	return resp.License, nil
}

func (c *Client) UpdateLicense(ctx context.Context, key string, req license.UpdateRequest) error {
	var resp envelope
	return c.do(ctx, OpUpdateLicense, http.MethodPut, "/admin/licenses/"+url.PathEscape(key), req, &resp)
}

func (c *Client) RevokeLicense(ctx context.Context, key string) error {
	var resp envelope
	return c.do(ctx, OpRevokeLicense, http.MethodPost, "/admin/licenses/revoke", revokeRequest{LicenseKey: key}, &resp)
}

func (c *Client) DeleteLicense(ctx context.Context, key string) error {
	var resp envelope
	return c.do(ctx, OpDeleteLicense, http.MethodDelete, "/admin/licenses/"+url.PathEscape(key), nil, &resp)
}

func (c *Client) GetStats(ctx context.Context) (license.Stats, error) {
	var resp statsResponse
	if err := c.do(ctx, OpStats, http.MethodGet, "/admin/stats", nil, &resp); err != nil {
		return license.Stats{}, err
	}
	return resp.Stats, nil
}

func (c *Client) GetLogs(ctx context.Context) ([]activity.Entry, error) {
	var resp logsResponse
	if err := c.do(ctx, OpLogs, http.MethodGet, "/admin/logs", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Logs == nil {
		return []activity.Entry{}, nil
	}
	return resp.Logs, nil
}

func (c *Client) do(ctx context.Context, op Op, method, path string, body any, out enveloped) (err error) {
	started := time.Now()
	defer func() { c.metrics.observe(op, started, err) }()

	log := c.logger.With(zap.String("op", string(op)), zap.String("method", method), zap.String("path", path))

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return newError(op, 0, "", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		log.Warn("Failed to read session token", zap.Error(err))
		return newError(op, 0, "", fmt.Errorf("read session token: %w", err))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("Transport error", zap.Error(err))
		return newError(op, 0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newError(op, resp.StatusCode, "", fmt.Errorf("read response body: %w", err))
	}

	decodeErr := json.Unmarshal(raw, out)
	env := out.env()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug("Remote returned non-2xx", zap.Int("status", resp.StatusCode))
		return newError(op, resp.StatusCode, env.serverMessage(), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return newError(op, resp.StatusCode, "", fmt.Errorf("decode response: %w", decodeErr))
	}
	if !env.Success {
		log.Debug("Remote reported failure", zap.String("message", env.serverMessage()))
		return newError(op, resp.StatusCode, env.serverMessage(), nil)
	}

	log.Debug("Remote call succeeded", zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(started)))
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
