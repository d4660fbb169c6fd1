package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spins/internal/services"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)
	ctx := context.Background()

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}
	if os.Getenv("SPINS_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	configPath := defaultConfigPath
	if p := os.Getenv("SPINS_CONFIG"); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	config.ApplyEnv()

	var spotifyService services.OAuthService
	if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
		if token := config.Credentials.Spotify.Token(); token != nil {
			if err := svc.OAuthenticate(ctx, token); err != nil {
				logger.Warn("stored Spotify token rejected", "error", err)
			}
		}
		spotifyService = svc
	} else {
		logger.Debug("spotify disabled", "reason", err)
	}

	var summarizer services.Summarizer
	if svc, err := services.NewOpenAIService(config.Credentials.OpenAI); err == nil {
		summarizer = svc
	} else {
		logger.Debug("insights disabled", "reason", err)
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		logger.Warn("database unavailable, run 'spins setup database'", "path", config.Database.Path, "error", err)
	} else {
		defer db.Close()
	}

	opts := RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Summarizer: summarizer,
		DB:         db,
		Logger:     logger,
	}
	if spotifyService != nil {
		opts.Spotify = spotifyService
	}
	runner := NewRunner(opts)

	if spotifyService != nil {
		spotifyService.SetTokenRefreshCallback(func(token *oauth2.Token) {
			if err := runner.saveTokens(token); err != nil {
				logger.Warn("failed to persist refreshed token", "error", err)
			}
		})
	}

	app := &cli.Command{
		Name:     "spins",
		Usage:    "Personal listening analytics for Spotify",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
