package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/sa6mwa/drpod/internal/infra/adapters/configurator"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:      "drpod",
		Usage:     "Republish the DR podcast catalog as RSS feeds with iTunes extensions.",
		Copyright: "Copyright SA6MWA 2022-2025 sa6mwa@gmail.com, https://github.com/sa6mwa/drpod",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				EnvVars: []string{configurator.ConfigFileEnv},
				Usage:   "Optional YAML configuration file, the environment overrides it",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{configurator.LogLevelEnv},
				Usage:   "Log level: debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:    "log-format",
				EnvVars: []string{configurator.LogFormatEnv},
				Usage:   "Log format: text, logfmt or json (default text on a terminal, json otherwise)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "generate",
				Aliases: []string{"g"},
				Usage:   "Run one generation cycle: feeds, site and optional upload",
				Action:  generate,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Value:   false,
						Usage:   "Fetch and build everything but print a diff against the files on disk instead of writing them",
					},
					&cli.BoolFlag{
						Name:    "upload",
						Aliases: []string{"u"},
						Value:   false,
						Usage:   fmt.Sprintf("Upload the site directory to the S3 bucket in %s", configurator.S3BucketEnv),
					},
				},
			},
			{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "Regenerate feeds periodically until interrupted, immediately when the podcast list changes",
				Action:  refresh,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Usage:   fmt.Sprintf("Minutes between cycles, overrides %s", configurator.RefreshIntervalEnv),
					},
					&cli.BoolFlag{
						Name:  "no-watch",
						Value: false,
						Usage: "Do not watch the podcast list for changes",
					},
					&cli.BoolFlag{
						Name:    "upload",
						Aliases: []string{"u"},
						Value:   false,
						Usage:   "Upload the site after every cycle (also enabled when a bucket is configured)",
					},
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List configured podcasts and the state of their feeds on disk",
				Action:  list,
			},
		},
	}
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.DefaultLogger().Error("drpod failed", "error", err)
		stop()
		os.Exit(1)
	}
}
