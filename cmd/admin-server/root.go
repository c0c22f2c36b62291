package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upb/voice-admin/config"
	"github.com/upb/voice-admin/repositories/postgres"
	"go.uber.org/zap"
)

// openRepositories opens the database for commands that need it. Tests replace it.
var openRepositories = postgres.NewRepositoryFactory

// cli carries state shared by every subcommand after PersistentPreRunE
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "admin-server",
		Short: "Voice agent admin server",
		Long: `Admin server for ElevenLabs voice agents. It serves the guarded JSON API
and the server-rendered admin pages, and manages local user records.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.AddCommand(newServeCmd(c), newDBCmd(c), newUsersCmd(c))
	return root
}

// setup loads the configuration, .env included, and builds the logger from it
func (c *cli) setup(ctx context.Context) error {
	cfg, err := config.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := initLogger(cfg.Observability)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

// repositories opens the database, failing when it is disabled
func (c *cli) repositories() (*postgres.RepositoryFactory, error) {
	if !c.cfg.Database.Enabled {
		return nil, fmt.Errorf("database is disabled (DB_ENABLED=false)")
	}
	factory, err := openRepositories(c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return factory, nil
}
