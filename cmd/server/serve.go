package main

import (
	"github.com/spf13/cobra"

	"github.com/sakif/pokedex-api/internal/config"
	"github.com/sakif/pokedex-api/internal/server"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. Pending migrations are applied first; with
SEED_ON_START=true the catalog is loaded before the listener opens.
SIGINT or SIGTERM drains in-flight requests and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)

			srv, err := server.New(server.Config{
				Port:        cfg.Port,
				DBPath:      cfg.DBPath,
				JWTSecret:   cfg.JWTSecret,
				TokenTTL:    cfg.TokenTTL,
				BcryptCost:  cfg.BcryptCost,
				SeedOnStart: cfg.SeedOnStart,
				SeedFile:    cfg.SeedFile,
			}, logger)
			if err != nil {
				return err
			}

			// Start blocks until the server is shut down.
			return srv.Start(cmd.Context())
		},
	}
}
