package cmd

import (
	"github.com/spf13/cobra"

	"github.com/netra-news/backend/internal/seed"
)

// newSeedCmd creates the 'seed' subcommand generating demo data.
func newSeedCmd() *cobra.Command {
	var (
		users    int
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fills the database with demo users, votes, and bookmarks",
		Long: `Creates demonstration accounts and spreads their bias votes and
bookmarks over the loaded article catalog, so the listing and statistics
endpoints return realistic data. Requires articles to be loaded first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeedCommand(cmd, users, password)
		},
	}

	cmd.Flags().IntVar(&users, "users", 50, "number of demo accounts to create")
	cmd.Flags().StringVar(&password, "password", "demo123", "password shared by the demo accounts")
	return cmd
}

func runSeedCommand(cmd *cobra.Command, users int, password string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	seeder := seed.New(store, logger, seed.Config{
		Users:    users,
		Password: password,
	})
	_, err = seeder.Run(ctx)
	return err
}
