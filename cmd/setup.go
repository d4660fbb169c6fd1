package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/desertthunder/spins/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadConfigAt returns the runner's config when configPath is the one it was loaded from,
// and otherwise reads configPath, falling back to defaults.
func (r *Runner) loadConfigAt(configPath string) *shared.Config {
	if r.config != nil && (configPath == "" || configPath == r.configPath) {
		return r.config
	}

	if _, err := os.Stat(configPath); err != nil {
		return shared.DefaultConfig()
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warnf("failed to load config, using defaults %v", err)
		return shared.DefaultConfig()
	}
	config.ApplyEnv()
	return config
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	config.ApplyEnv()

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.spotify.client_id and client_secret in %s, then run 'spins spotify auth'\n", configPath)
	r.writePlain("2. Run 'spins history import StreamingHistory*.json' to load your exported history\n")
	return nil
}

// SetupStatus prints every known migration and whether it has been applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.database(cmd.String("config"))
	if err != nil {
		return err
	}
	defer closeDB()

	statuses, err := shared.Migrations(db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		if s.Applied {
			r.writePlain("✓ %04d %s (%s)\n", s.Version, s.Name, s.AppliedAt.Local().Format("2006-01-02 15:04"))
		} else {
			r.writePlain("· %04d %s (pending)\n", s.Version, s.Name)
		}
	}
	return nil
}

// database returns the runner's connection, or opens the database named by the config at configPath.
func (r *Runner) database(configPath string) (*sql.DB, func(), error) {
	if r.db != nil && (configPath == "" || configPath == r.configPath) {
		return r.db, func() {}, nil
	}

	config := r.loadConfigAt(configPath)
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, func() { db.Close() }, nil
}

// SetupRollback reverts the latest applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.database(cmd.String("config"))
	if err != nil {
		return err
	}
	defer closeDB()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	r.logger.Info("rolled back latest migration")
	return r.writePlain("✓ Rolled back the latest migration\n")
}
