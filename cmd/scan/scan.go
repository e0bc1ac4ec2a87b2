package scan

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"dupescan/config"
	"dupescan/dedup"
	"dupescan/logger"
	"dupescan/storage"
)

type Command struct {
	configPath string
	roots      string
	workers    int
}

func (*Command) Name() string     { return "scan" }
func (*Command) Synopsis() string { return "Scan directories and persist file metadata and duplicates" }
func (*Command) Usage() string {
	return `scan -roots <dir>[,<dir>...] [-config <file>] [-workers <n>]:
  Scan directories recursively, fingerprint every file with SHA-256 and
  persist the file set and duplicate groups in the configured storage.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", config.DefaultPath, "config file path")
	f.StringVar(&c.roots, "roots", "", "comma-separated directories to scan (required)")
	f.IntVar(&c.workers, "workers", 0, "worker count (0 = min(32, cpu count + 4))")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.roots == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	setupSignalHandling(cancel)

	var roots []string
	for _, root := range strings.Split(c.roots, ",") {
		if root = strings.TrimSpace(root); root != "" {
			roots = append(roots, root)
		}
	}

	pipeline := dedup.NewPipeline(store, c.workers)
	if _, err := pipeline.Run(ctx, roots); err != nil {
		logger.Get().Error().Err(err).Msg("scan failed")
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// setupSignalHandling cancels the scan on the first SIGINT/SIGTERM and force
// quits on a quick second one.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var forceQuit atomic.Bool

	go func() {
		for sig := range sigChan {
			logger.Get().Info().Str("signal", sig.String()).Msg("received signal")
			if forceQuit.Load() {
				logger.Get().Warn().Msg("forcing immediate shutdown")
				os.Exit(1)
			}

			forceQuit.Store(true)
			logger.Get().Info().Msg("aborting scan, press Ctrl+C again to force quit")
			cancel()

			go func() {
				time.Sleep(5 * time.Second)
				forceQuit.Store(false)
			}()
		}
	}()
}
