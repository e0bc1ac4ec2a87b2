package report

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"dupescan/config"
	"dupescan/logger"
	"dupescan/report"
	"dupescan/storage"
)

type Command struct {
	configPath string
	outPath    string
	endpoint   string
}

func (*Command) Name() string     { return "report" }
func (*Command) Synopsis() string { return "Generate a static HTML duplicate viewer" }
func (*Command) Usage() string {
	return `report [-config <file>] [-out <file>] [-endpoint <url>]:
  Render the first duplicate groups into a standalone HTML page with delete
  buttons pointing at the given API endpoint.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", config.DefaultPath, "config file path")
	f.StringVar(&c.outPath, "out", "duplicate_viewer.html", "output HTML file")
	f.StringVar(&c.endpoint, "endpoint", "http://localhost:8080/delete-file", "delete-file API endpoint")
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

	groups, err := store.GetDuplicateGroups(1, report.MaxGroups)
	if err != nil {
		logger.Get().Error().Err(err).Msg("failed to get duplicate groups")
		return subcommands.ExitFailure
	}

	if err := report.Generate(c.outPath, groups, c.endpoint); err != nil {
		logger.Get().Error().Err(err).Msg("failed to generate report")
		return subcommands.ExitFailure
	}

	logger.Get().Info().Str("out", c.outPath).Int("groups", len(groups)).Msg("report generated")
	return subcommands.ExitSuccess
}
