package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/persistence"
	"github.com/spec-kit/staff-admin/migrations"
)

func newMigrateCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded schema migrations to POSTGRES_DSN",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				files, err := persistence.MigrationFiles(migrations.FS)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			}

			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()

			applied, err := persistence.RunMigrations(cmd.Context(), pg.Pool, migrations.FS, logger)
			if err != nil {
				return err
			}
			logger.Info("migrations complete", zap.Int("applied", applied))
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List embedded migrations without applying them")
	return cmd
}
