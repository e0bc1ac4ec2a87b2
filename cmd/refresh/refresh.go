package refresh

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"dupescan/config"
	"dupescan/logger"
	"dupescan/storage"
)

type Command struct {
	configPath string
}

func (*Command) Name() string     { return "refresh" }
func (*Command) Synopsis() string { return "Drop duplicate groups with members missing on disk" }
func (*Command) Usage() string {
	return `refresh [-config <file>]:
  Re-validate every persisted duplicate group and drop the groups that have
  lost a member on disk.
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

	store, err := storage.New(cfg)
	if err != nil {
		logger.Get().Error().Err(err).Msg("failed to set up storage")
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.RefreshDuplicates(); err != nil {
		logger.Get().Error().Err(err).Msg("refresh failed")
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
