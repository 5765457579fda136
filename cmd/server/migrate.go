package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/pokedex-api/internal/config"
	sqliteRepo "github.com/sakif/pokedex-api/internal/repository/sqlite"
)

// NewMigrateCmd creates the migrate command and its subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Manage the database schema. Migrations are embedded in the
binary; "serve" applies pending ones on its own.`,
	}

	cmd.AddCommand(
		newMigrateStep("up", "Apply all pending migrations", func(db *sqliteRepo.DB) error {
			return db.Migrate()
		}),
		newMigrateStep("down", "Revert every migration (drops all data)", func(db *sqliteRepo.DB) error {
			return db.MigrateDown()
		}),
		newMigrateVersionCmd(),
	)

	return cmd
}

func newMigrateStep(use, short string, step func(*sqliteRepo.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(func(_ config.Config, db *sqliteRepo.DB) error {
				if err := step(db); err != nil {
					return err
				}
				return printVersion(cmd, db)
			})
		},
	}
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(func(_ config.Config, db *sqliteRepo.DB) error {
				return printVersion(cmd, db)
			})
		},
	}
}

func printVersion(cmd *cobra.Command, db *sqliteRepo.DB) error {
	version, dirty, err := db.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("schema version %d (dirty)\n", version)
		return nil
	}
	cmd.Printf("schema version %d\n", version)
	return nil
}

// withDatabase loads the configuration, opens the configured database,
// runs fn and closes it.
func withDatabase(fn func(config.Config, *sqliteRepo.DB) error) error {
	cfg, err := config.LoadWithoutAuth()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	db, err := openDatabase(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return fn(cfg, db)
}
