package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/cli/config"
	"github.com/secmon-lab/libris/pkg/repository/postgres"
	"github.com/secmon-lab/libris/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var settingsCfg config.Settings
	var repoCfg config.Repository

	flags := []cli.Flag{}
	flags = append(flags, settingsCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create the PostgreSQL schema and search function",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			settings, err := settingsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load settings")
			}

			if repoCfg.PostgresDSN() == "" {
				return goerr.New("postgres-dsn is required for migrate")
			}

			client, err := postgres.New(ctx, repoCfg.PostgresDSN(), settings.EmbeddingDimension)
			if err != nil {
				return goerr.Wrap(err, "failed to connect to PostgreSQL")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logging.Default().Error("failed to close postgres client", "error", err.Error())
				}
			}()

			logging.Default().Info("Applying migrations", "dimension", settings.EmbeddingDimension)

			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}

			logging.Default().Info("Migrations applied successfully")
			return nil
		},
	}
}
