// Package notify reports completed deployments to the evaluation endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.trai.ch/zerr"

	"llmdeploy/internal/models"
	"llmdeploy/internal/retry"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultAttempts     = 5
	DefaultInitialDelay = time.Second

	maxErrorBody = 4 << 10
)

// Options configures a Notifier. Zero values take the defaults above.
type Options struct {
	Timeout      time.Duration
	Attempts     int
	InitialDelay time.Duration
	HTTPClient   *http.Client
}

// Notifier posts evaluation payloads with exponential backoff.
type Notifier struct {
	http     *http.Client
	attempts int
	initial  time.Duration
	logger   *slog.Logger
}

// New builds a Notifier.
func New(opts Options, logger *slog.Logger) *Notifier {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultInitialDelay
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		http:     client,
		attempts: opts.Attempts,
		initial:  opts.InitialDelay,
		logger:   logger.With("component", "notify"),
	}
}

// Notify POSTs payload as JSON to url. Non-2xx responses are retried like transport errors.
func (n *Notifier) Notify(ctx context.Context, url string, payload models.EvaluationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return zerr.Wrap(err, "encode evaluation payload")
	}

	hooks := retry.Hooks{
		BeforeAttempt: func(attempt int) {
			n.logger.Debug("posting evaluation", "url", url, "attempt", attempt)
		},
		OnFailure: func(attempt int, err error) {
			n.logger.Warn("evaluation post failed", "url", url, "attempt", attempt, "error", err)
		},
	}
	status, err := retry.Retry(ctx, n.attempts, n.initial, hooks, func(ctx context.Context) (int, error) {
		return n.post(ctx, url, body)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "notify evaluation"), "url", url)
	}

	n.logger.Info("evaluation notified", "url", url, "status", status, "task", payload.TaskName, "round", payload.Round)
	return nil
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, zerr.Wrap(err, "build evaluation request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := zerr.With(zerr.Wrap(models.ErrNotifyStatus, "post evaluation"), "status", resp.StatusCode)
		if msg := strings.TrimSpace(string(slurp)); msg != "" {
			err = zerr.With(err, "body", msg)
		}
		return resp.StatusCode, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
