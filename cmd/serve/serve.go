package serve

import (
	"context"
	"flag"
	"net/http"

	"github.com/google/subcommands"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dupescan/api"
	"dupescan/config"
	"dupescan/logger"
	"dupescan/storage"
)

type Command struct {
	configPath string
	port       string
}

func (*Command) Name() string     { return "serve" }
func (*Command) Synopsis() string { return "Start HTTP server for the duplicate-file API" }
func (*Command) Usage() string {
	return `serve [-config <file>] [-port <port>]:
  Start an HTTP server exposing the duplicate groups, the delete endpoint and
  the HTML viewer.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", config.DefaultPath, "config file path")
	f.StringVar(&c.port, "port", "8080", "port to listen on")
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

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h := api.NewHandler(store)

	e.POST("/delete-file", h.DeleteFile)
	e.GET("/duplicates", h.GetDuplicates)
	e.GET("/stats", h.GetStats)
	e.GET("/report", h.GetReport)

	logger.Get().Info().Str("port", c.port).Msg("starting server")
	if err := e.Start(":" + c.port); err != nil && err != http.ErrServerClosed {
		logger.Get().Error().Err(err).Msg("failed to start server")
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
