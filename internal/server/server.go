package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"llmdeploy/internal/auth"
	"llmdeploy/internal/deploy"
	"llmdeploy/internal/models"
)

const (
	allowRemoteEnvKey = "LLMDEPLOY_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second

	DefaultEndpointPath = "/api-endpoint"
)

// Orchestrator is the part of the deployment pipeline the HTTP surface drives.
type Orchestrator interface {
	Submit(ctx context.Context, req models.TaskRequest) (deploy.Outcome, models.TrackingKey, error)
	Status(ctx context.Context, key models.TrackingKey) (models.TrackingEntry, bool, error)
}

// Server wraps HTTP handlers for the task intake API.
type Server struct {
	addr         string
	endpointPath string
	orch         Orchestrator
	verifier     *auth.Verifier
	logger       *slog.Logger
}

// New creates a new server instance.
func New(addr, endpointPath string, orch Orchestrator, verifier *auth.Verifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	endpointPath = strings.TrimSpace(endpointPath)
	if endpointPath == "" {
		endpointPath = DefaultEndpointPath
	}
	if !strings.HasPrefix(endpointPath, "/") {
		endpointPath = "/" + endpointPath
	}

	return &Server{
		addr:         addr,
		endpointPath: endpointPath,
		orch:         orch,
		verifier:     verifier,
		logger:       logger.With("component", "server"),
	}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.routes())
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log().Info("starting server", "addr", s.addr, "endpoint", s.endpointPath)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAddr validates a listen address, refusing non-loopback hosts unless
// remote access is explicitly allowed.
func ListenAddr(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("listen address is required")
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}
	return addr, nil
}

func isAllowedListenHost(host string) bool {
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
