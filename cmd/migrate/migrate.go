package migrate

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"dupescan/config"
	"dupescan/db"
	"dupescan/logger"
)

type Command struct {
	configPath string
}

func (*Command) Name() string     { return "migrate" }
func (*Command) Synopsis() string { return "Run database migrations" }
func (*Command) Usage() string {
	return `migrate [-config <file>]:
  Run schema migrations on the configured SQLite database.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", config.DefaultPath, "config file path")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		logger.Get().Error().Err(err).Msg("failed to load config")
		return subcommands.ExitFailure
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		logger.Get().Error().Err(err).Msg("failed to initialize logging")
		return subcommands.ExitFailure
	}

	if cfg.StorageType != config.StorageSQLite {
		logger.Get().Error().Str("storage_type", cfg.StorageType).Msg("migrations only apply to the sqlite backend")
		return subcommands.ExitFailure
	}

	logger.Get().Info().Str("db", cfg.SQLite.Path).Msg("running database migrations")
	if err := db.RunMigrations(cfg.SQLite.Path); err != nil {
		logger.Get().Error().Err(err).Msg("failed to run migrations")
		return subcommands.ExitFailure
	}
	logger.Get().Info().Msg("database migrations completed")

	return subcommands.ExitSuccess
}
