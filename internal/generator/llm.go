package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4.1-mini"
	DefaultTimeout = 120 * time.Second

	completionsPath = "/chat/completions"
	errorBodyLimit  = 4 << 10
)

var (
	// ErrMissingAPIKey is returned by NewLLMClient when no key is configured.
	ErrMissingAPIKey = zerr.New("llm api key is required")
	// ErrEmptyCompletion is returned when the provider answers without content.
	ErrEmptyCompletion = zerr.New("llm returned no content")
)

// LLMOptions configures an OpenAI-compatible chat completions client.
type LLMOptions struct {
	BaseURL     string
	Model       string
	APIKey      string
	Timeout     time.Duration
	Temperature *float64
	HTTPClient  *http.Client
}

func (o *LLMOptions) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
}

// LLMClient sends a single request per completion; it never retries.
type LLMClient struct {
	url    string
	apiKey string
	model  string
	temp   *float64
	do     func(*http.Request) (*http.Response, error)
}

// NewLLMClient validates opts and returns a client.
func NewLLMClient(opts LLMOptions) (*LLMClient, error) {
	opts.defaults()
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &LLMClient{
		url:    strings.TrimRight(opts.BaseURL, "/") + completionsPath,
		apiKey: opts.APIKey,
		model:  opts.Model,
		temp:   opts.Temperature,
		do:     hc.Do,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// upstreamError carries a non-2xx provider response.
type upstreamError struct {
	status int
	msg    string
}

func (e upstreamError) Error() string {
	return fmt.Sprintf("llm upstream %d: %s", e.status, e.msg)
}

// StatusCode reports the provider's HTTP status.
func (e upstreamError) StatusCode() int { return e.status }

// Complete sends a system and a user message and returns the first choice's text.
func (c *LLMClient) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temp,
	})
	if err != nil {
		return "", zerr.Wrap(err, "encode completion request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", zerr.Wrap(err, "build completion request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", ctx.Err()
		}
		return "", zerr.Wrap(err, "completion request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", upstreamError{status: resp.StatusCode, msg: strings.TrimSpace(string(slurp))}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", zerr.Wrap(err, "decode completion response")
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return decoded.Choices[0].Message.Content, nil
}
