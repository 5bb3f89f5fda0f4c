package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"llmdeploy/internal/models"
)

func newNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name <task name>",
		Short: "Print the repository name a task name maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			name := models.CanonicalName(raw)
			if name == "" {
				return fmt.Errorf("task name %q has no usable characters", raw)
			}
			return writePlain(cmd.OutOrStdout(), "%s\n", name)
		},
	}
}
