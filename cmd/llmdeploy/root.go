package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"llmdeploy/internal/config"
	"llmdeploy/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var logLevel string
	var output string

	cmd := &cobra.Command{
		Use:           "llmdeploy",
		Short:         "llmdeploy turns task briefs into published GitHub Pages sites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			formatter, err := format.Lookup(output)
			if err != nil {
				return err
			}
			outputFormatter = formatter
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "output format (json, yaml)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newPublishCmd(cfg),
		newSubmitCmd(cfg),
		newStatusCmd(cfg),
		newNameCmd(),
		newConfigCmd(cfg),
		newMigrateCmd(cfg),
		newHashSecretCmd(),
	)

	return cmd
}
