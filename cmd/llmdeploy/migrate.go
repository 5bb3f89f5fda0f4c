package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"llmdeploy/internal/config"
	"llmdeploy/internal/tracking"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	var inspect bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect tracking database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Tracking.DBPath
			if cfg.Tracking.Backend != tracking.BackendSQLite || path == "" || path == tracking.MemoryPath {
				return fmt.Errorf("migrate needs tracking.backend = sqlite with a tracking.db_path file")
			}

			if inspect {
				plan, err := tracking.InspectSQLite(path)
				if err != nil {
					return fmt.Errorf("inspect migrations: %w", err)
				}
				return writeOutput(cmd.OutOrStdout(), plan)
			}

			st, err := tracking.OpenSQLite(path)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer st.Close()

			status, err := st.MigrationStatus()
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), status)
		},
	}

	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status without applying")
	return cmd
}
