package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.ResolveConfig("config.toml", ".env")
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}
	if err := shared.SetLogLevel(logger, config.Log.Level); err != nil {
		logger.Warn("ignoring log level", "error", err)
	}

	tokens := services.NewFileTokenStore(config.Auth.TokenPath)
	client := services.NewClient(config.API.BaseURL, tokens, nil)

	runner := NewRunner(RunnerOpts{
		Config: config,
		Movies: services.NewMovieService(client),
		Auth:   services.NewMovieService(services.NewClient(config.API.BaseURL, nil, nil)),
		Client: client,
		Tokens: tokens,
		Logger: logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "mmx",
		Usage:    "Swipe through movies and find the ones everyone likes",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			runner.Close()
			logger.Fatalf("application error: %v", err)
		}
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file and initialize the decision journal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.SetupDatabase,
		Commands: []*cli.Command{
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent journal migration",
				Action: r.SetupRollback,
			},
		},
	}
}
