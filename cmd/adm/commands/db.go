package commands

import (
	"fmt"

	"quizgen/internal/database"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(dbManager *database.Manager, logger *observability.Logger, databaseURL string) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the quiz service.

Available commands:
  migrate  - Apply all pending migrations
  rollback - Roll back the most recent migration`,
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := dbManager.RunMigrations(databaseURL); err != nil {
				return contextutils.WrapError(err, "failed to run migrations")
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	})

	dbCmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Roll back the most recent migration",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := dbManager.Rollback(databaseURL); err != nil {
				return contextutils.WrapError(err, "failed to roll back migration")
			}
			fmt.Println("Rolled back one migration.")
			return nil
		},
	})

	return dbCmd
}
