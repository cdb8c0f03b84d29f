// Package backend is the HTTP client for the model-serving backend. The
// launch sequence talks to two endpoints: POST /v1/models registers an
// instance and POST /v1/ui/{uid} provisions its UI; the remaining calls
// cover listing, describing and terminating running instances.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"launchpad/pkg/types"
)

type Client struct {
	baseURL    string
	reqTimeout time.Duration
	httpClient *http.Client
}

// NewClient constructs a backend client. Timeouts of zero fall back to the
// transport defaults; no timeout is enforced beyond those and the request
// context.
func NewClient(baseURL string, reqTimeout, connectTimeout time.Duration) *Client {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0 on the client: deadlines ride on the request context so
	// a caller-supplied context always wins.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		reqTimeout: reqTimeout,
		httpClient: cli,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// EndpointURL is the browsing URL of a launched instance.
func (c *Client) EndpointURL(uid string) string { return c.baseURL + "/" + uid }

// CreateModel registers a model instance with the backend.
func (c *Client) CreateModel(ctx context.Context, p types.LaunchPayload) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/models", p)
	return err
}

// ProvisionUI provisions the per-instance UI keyed by the same uid.
func (c *Client) ProvisionUI(ctx context.Context, uid string, p types.LaunchPayload) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/ui/"+uid, p)
	return err
}

// TerminateModel stops and removes a running instance.
func (c *Client) TerminateModel(ctx context.Context, uid string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/models/"+uid, nil)
	return err
}

// ListModels returns the running instances keyed by model uid.
func (c *Client) ListModels(ctx context.Context) (map[string]json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return nil, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, decodeError{path: "/v1/models", err: err}
	}
	return out, nil
}

// DescribeModel returns the backend's detail document for one instance.
func (c *Client) DescribeModel(ctx context.Context, uid string) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/models/"+uid, nil)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, decodeError{path: "/v1/models/" + uid, err: err}
	}
	return out, nil
}

// do issues one request and verifies the response decodes as JSON. The
// decoded value is discarded; callers that need the body re-decode the
// returned raw bytes.
func (c *Client) do(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("new request %s: %w", path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError{status: resp.StatusCode, path: path, body: strings.TrimSpace(string(raw))}
	}
	// Some endpoints answer 2xx with no body; only a non-empty body must be JSON.
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, decodeError{path: path, err: err}
	}
	return raw, nil
}
