package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"llmdeploy/internal/api"
	"llmdeploy/internal/config"
)

func newSubmitCmd(cfg *config.Config) *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "submit <request.yaml|request.json>",
		Short: "Send a task request file to a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadTaskRequest(args[0])
			if err != nil {
				return err
			}
			if req.Secret == "" {
				req.Secret = cfg.Secret
			}

			client := api.NewClient(serverBaseURL(serverURL, cfg), cfg.EndpointPath)
			resp, err := client.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "server base URL (defaults to http://<listen_addr>)")
	return cmd
}

// loadTaskRequest reads a request file. JSON parses as YAML, so one decoder covers both.
func loadTaskRequest(path string) (api.TaskSubmitRequest, error) {
	var req api.TaskSubmitRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse %s: %w", path, err)
	}
	return req, nil
}

func serverBaseURL(flagValue string, cfg *config.Config) string {
	if value := strings.TrimSpace(flagValue); value != "" {
		return value
	}
	return "http://" + cfg.ListenAddr
}
