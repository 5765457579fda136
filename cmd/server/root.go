package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/pokedex-api/internal/config"
	sqliteRepo "github.com/sakif/pokedex-api/internal/repository/sqlite"
)

// NewRootCmd creates the root command for the pokedex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pokedex",
		Short: "Pokedex catalog API",
		Long: `Pokedex serves a pokemon catalog with email/password accounts,
search, type filters and per-user favorites.

Configuration comes from the environment (PORT, DB_PATH, JWT_SECRET, ...);
with ENV=dev a .env file is read as well.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}

// setupLogger builds the process logger from cfg and makes it the slog
// default, so package-level slog calls share its handler.
func setupLogger(cfg config.Config) *slog.Logger {
	logger := config.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// openDatabase opens the database at path without migrating, creating the
// parent directory first.
func openDatabase(path string) (*sqliteRepo.DB, error) {
	if path != sqliteRepo.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	return sqliteRepo.Open(path)
}
