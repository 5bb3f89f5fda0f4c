package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "LLMDEPLOY_HTTP_TIMEOUT"
	secretEnvKey       = "LLMDEPLOY_SECRET"
	DefaultSubmitPath  = "/api-endpoint"
)

// Client is a simple HTTP client for the llmdeploy service.
type Client struct {
	baseURL    string
	submitPath string
	http       *http.Client
	authToken  string
}

// NewClient creates a new API client. An empty submitPath uses DefaultSubmitPath.
func NewClient(baseURL, submitPath string) *Client {
	if submitPath == "" {
		submitPath = DefaultSubmitPath
	}
	if !strings.HasPrefix(submitPath, "/") {
		submitPath = "/" + submitPath
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		submitPath: submitPath,
		http:       &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken:  strings.TrimSpace(os.Getenv(secretEnvKey)),
	}
}

// WithSecret sets the bearer secret used for authenticated reads. An empty
// secret keeps the value taken from the environment.
func (c *Client) WithSecret(secret string) *Client {
	if secret = strings.TrimSpace(secret); secret != "" {
		c.authToken = secret
	}
	return c
}

// Ping checks whether the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Submit posts a task request.
func (c *Client) Submit(ctx context.Context, req TaskSubmitRequest) (SubmitResponse, error) {
	var resp SubmitResponse
	err := c.do(ctx, http.MethodPost, c.submitPath, req, &resp)
	return resp, err
}

// TaskStatus reads the tracking entry for a repository name and round.
func (c *Client) TaskStatus(ctx context.Context, name string, round int) (TrackingResponse, error) {
	var resp TrackingResponse
	path := "/v1/tasks/" + url.PathEscape(name) + "/rounds/" + strconv.Itoa(round)
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
	}
	return apiErr
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
