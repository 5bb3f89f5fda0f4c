package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmdeploy/internal/models"
	"llmdeploy/internal/retry"
)

func testPayload() models.EvaluationPayload {
	return models.EvaluationPayload{
		RequesterID: "student@example.test",
		TaskName:    "hello-world",
		Round:       models.RoundCreate,
		Nonce:       "n-1",
		DeploymentResult: models.DeploymentResult{
			RepositoryURL: "https://github.com/octo/hello-world",
			CommitHash:    "abc123",
			PagesURL:      "https://octo.github.io/hello-world/",
		},
	}
}

func TestNotify_PostsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(Options{}, nil)
	require.NoError(t, n.Notify(context.Background(), srv.URL, testPayload()))

	assert.Equal(t, map[string]any{
		"email":      "student@example.test",
		"task":       "hello-world",
		"round":      float64(1),
		"nonce":      "n-1",
		"repo_url":   "https://github.com/octo/hello-world",
		"commit_sha": "abc123",
		"pages_url":  "https://octo.github.io/hello-world/",
	}, got)
}

func TestNotify_RetriesNon2xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "not yet", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := New(Options{InitialDelay: time.Millisecond}, nil)
	require.NoError(t, n.Notify(context.Background(), srv.URL, testPayload()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestNotify_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := New(Options{Attempts: 3, InitialDelay: time.Millisecond}, nil)
	err := n.Notify(context.Background(), srv.URL, testPayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrExhausted)
	assert.ErrorIs(t, err, models.ErrNotifyStatus)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNotify_SingleAttemptServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(Options{Attempts: 1}, nil)
	err := n.Notify(context.Background(), srv.URL, testPayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotifyStatus)
	assert.ErrorIs(t, err, retry.ErrExhausted)
}

func TestNotify_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	n := New(Options{Attempts: 2, InitialDelay: time.Millisecond}, nil)
	err := n.Notify(context.Background(), url, testPayload())
	assert.ErrorIs(t, err, retry.ErrExhausted)
}
