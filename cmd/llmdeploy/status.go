package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"llmdeploy/internal/api"
	"llmdeploy/internal/config"
	"llmdeploy/internal/models"
)

func newStatusCmd(cfg *config.Config) *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "status <task> <round>",
		Short: "Show the tracking entry for a task round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			round, err := strconv.Atoi(args[1])
			if err != nil || !models.IsValidRound(models.Round(round)) {
				return fmt.Errorf("round must be 1 or 2, got %q", args[1])
			}

			client := api.NewClient(serverBaseURL(serverURL, cfg), cfg.EndpointPath).WithSecret(cfg.Secret)
			resp, err := client.TaskStatus(cmd.Context(), args[0], round)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "server base URL (defaults to http://<listen_addr>)")
	return cmd
}
