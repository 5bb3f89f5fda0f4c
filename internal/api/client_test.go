package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}

func TestClientSubmit(t *testing.T) {
	var got TaskSubmitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/hooks/task" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(SubmitResponse{Status: "accepted"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "hooks/task")
	resp, err := client.Submit(context.Background(), TaskSubmitRequest{Email: "a@b.co", Task: "demo", Round: 1})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Status != "accepted" {
		t.Fatalf("status = %q", resp.Status)
	}
	if got.Email != "a@b.co" || got.Task != "demo" || got.Round != 1 {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestClientDecodesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid secret", Code: "unauthorized", ErrorCode: 3001})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Submit(context.Background(), TaskSubmitRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.ErrorCode != 3001 {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if apiErr.Error() != "unauthorized: invalid secret" {
		t.Fatalf("message = %q", apiErr.Error())
	}
}

func TestClientTaskStatusSendsBearer(t *testing.T) {
	t.Setenv(secretEnvKey, "s3cret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tasks/hello-world/rounds/2" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode(TrackingResponse{Name: "hello-world", Round: 2, Status: "processing"})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "").TaskStatus(context.Background(), "hello-world", 2)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if resp.Status != "processing" || resp.Round != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           *APIError
		wantMessage   string
		wantRejected  bool
		wantFault     bool
		wantLLMDeploy bool
	}{
		{name: "nil", err: nil, wantMessage: ""},
		{name: "rejected round", err: &APIError{Status: 400, Code: "invalid_argument", ErrorCode: 1003, Message: "round must be 1 or 2"}, wantMessage: "invalid_argument: round must be 1 or 2", wantRejected: true, wantLLMDeploy: true},
		{name: "foreign 404", err: &APIError{Status: 404}, wantMessage: "llmdeploy server: 404 Not Found", wantRejected: true},
		{name: "store failure", err: &APIError{Status: 500, Code: "internal", Message: "internal error"}, wantMessage: "internal: internal error", wantFault: true, wantLLMDeploy: true},
		{name: "empty", err: &APIError{}, wantMessage: "llmdeploy server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Fatalf("Error() = %q, want %q", got, tt.wantMessage)
			}
			if got := tt.err.Rejected(); got != tt.wantRejected {
				t.Fatalf("Rejected() = %v, want %v", got, tt.wantRejected)
			}
			if got := tt.err.ServerFault(); got != tt.wantFault {
				t.Fatalf("ServerFault() = %v, want %v", got, tt.wantFault)
			}
			if got := tt.err.FromLLMDeploy(); got != tt.wantLLMDeploy {
				t.Fatalf("FromLLMDeploy() = %v, want %v", got, tt.wantLLMDeploy)
			}
		})
	}
}
