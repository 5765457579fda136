package main

import (
	"github.com/spf13/cobra"

	"github.com/sakif/pokedex-api/internal/config"
	sqliteRepo "github.com/sakif/pokedex-api/internal/repository/sqlite"
	"github.com/sakif/pokedex-api/internal/seed"
)

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the pokemon catalog into the database",
		Long: `Load the pokemon catalog into the database, applying pending
migrations first. Without --file (or SEED_FILE) the embedded catalog is
used. Existing pokemon are updated in place, so favorites survive and
running it twice is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(func(cfg config.Config, db *sqliteRepo.DB) error {
				if err := db.Migrate(); err != nil {
					return err
				}

				path := file
				if path == "" {
					path = cfg.SeedFile
				}
				catalog, err := seed.Load(path)
				if err != nil {
					return err
				}

				n, err := seed.Apply(cmd.Context(), db, catalog)
				if err != nil {
					return err
				}
				cmd.Printf("seeded %d pokemon\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file (default: embedded catalog)")

	return cmd
}
