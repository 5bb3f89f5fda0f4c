package main

import (
	"context"
	"errors"
	"net"

	"llmdeploy/internal/api"
	"llmdeploy/internal/generator"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized":
			lines = append(lines, "hint: verify the request secret or LLMDEPLOY_SECRET matches the server.")
		case "invalid_argument":
			lines = append(lines, "hint: check the request file fields (email, task, round, evaluation_url).")
		case "not_found":
			lines = append(lines, "hint: the task round has not been submitted to this server.")
		}
		if apiErr.Rejected() && apiErr.FromLLMDeploy() {
			lines = append(lines, "hint: no deployment was started; fix the request and resubmit.")
		}
		if !apiErr.FromLLMDeploy() {
			lines = append(lines, "hint: verify --server points to an llmdeploy server.")
		}
		if apiErr.ServerFault() {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, generator.ErrMissingAPIKey) {
		lines = append(lines, "hint: set LLM_API_KEY or llm.api_key.")
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase LLMDEPLOY_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure an llmdeploy server is reachable at --server.",
			"hint: start one with: llmdeploy srv",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
