package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mithrel/lessonplan/pkg/api"
)

// HTTPError is returned for non-2xx replies. Message is the body's "error"
// field when present, otherwise "HTTP <code>: <status text>".
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

// NetworkError wraps a transport failure: the backend was never reached or
// the connection broke before a reply was read.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a 2xx reply that still carries an "error" field.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// Client talks to the lesson backend. Requests are never retried.
type Client struct {
	base       string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: strings.TrimSpace(token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the backend address without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// Ask submits a lesson request to POST /ask.
func (c *Client) Ask(ctx context.Context, req api.AskRequest) (api.AskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return api.AskResponse{}, fmt.Errorf("encode request: %w", err)
	}
	respBody, code, status, err := c.execRequest(ctx, http.MethodPost, c.base+"/ask", "application/json", body)
	if err != nil {
		return api.AskResponse{}, err
	}
	if code < 200 || code >= 300 {
		return api.AskResponse{}, httpError(code, status, respBody)
	}

	var out api.AskResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return api.AskResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return out, &ServerError{Message: out.Error}
	}
	return out, nil
}

// Health fetches GET /health.
func (c *Client) Health(ctx context.Context) (api.Health, error) {
	respBody, code, status, err := c.execRequest(ctx, http.MethodGet, c.base+"/health", "", nil)
	if err != nil {
		return api.Health{}, err
	}
	var h api.Health
	if jerr := json.Unmarshal(respBody, &h); jerr != nil && code < 300 {
		return api.Health{}, fmt.Errorf("decode health: %w", jerr)
	}
	if code < 200 || code >= 300 {
		return h, httpError(code, status, respBody)
	}
	return h, nil
}

func (c *Client) execRequest(ctx context.Context, method, url, contentType string, body []byte) ([]byte, int, string, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, 0, "", err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", &NetworkError{Err: err}
	}
	return respBody, resp.StatusCode, http.StatusText(resp.StatusCode), nil
}

func httpError(code int, statusText string, body []byte) *HTTPError {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return &HTTPError{Status: code, Message: payload.Error}
	}
	return &HTTPError{Status: code, Message: fmt.Sprintf("HTTP %d: %s", code, statusText)}
}
