package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andrebq/toolshelf/cmd/toolshelf/seed"
	"github.com/andrebq/toolshelf/cmd/toolshelf/serve"
	"github.com/andrebq/toolshelf/cmd/toolshelf/users"
	"github.com/andrebq/toolshelf/internal/cmdflags"
	"github.com/andrebq/toolshelf/internal/config"
	"github.com/andrebq/toolshelf/internal/logutil"
)

func main() {
	var configFile, dbPath, logLevel string
	var logPretty bool
	cfg := config.Default()
	app := &cli.App{
		Name:  "toolshelf",
		Usage: "A curated shelf of free online tools",
		Flags: []cli.Flag{
			cmdflags.ConfigFile(&configFile),
			cmdflags.DBPath(&dbPath),
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Minimum level of logged messages (overrides log.level)",
				Destination: &logLevel,
			},
			&cli.BoolFlag{
				Name:        "log-pretty",
				Usage:       "Log human readable lines instead of json (overrides log.pretty)",
				Destination: &logPretty,
			},
		},
		Before: func(ctx *cli.Context) error {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				return err
			}
			cmdflags.Override(ctx, "db", &cfg.DB.Path, dbPath)
			cmdflags.Override(ctx, "log-level", &cfg.Log.Level, logLevel)
			cmdflags.Override(ctx, "log-pretty", &cfg.Log.Pretty, logPretty)
			logger := logutil.Setup(cfg.Log.Level, cfg.Log.Pretty)
			ctx.Context = logutil.WithLogger(ctx.Context, logger)
			return nil
		},
		Commands: []*cli.Command{
			serve.Cmd(&cfg),
			seed.Cmd(&cfg),
			users.Cmd(&cfg),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
