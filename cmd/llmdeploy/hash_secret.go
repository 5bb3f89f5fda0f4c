package main

import (
	"github.com/spf13/cobra"

	"llmdeploy/internal/auth"
)

func newHashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret <secret>",
		Short: "Print a bcrypt hash suitable for secret_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashSecret(args[0])
			if err != nil {
				return err
			}
			return writePlain(cmd.OutOrStdout(), "%s\n", hash)
		},
	}
}
