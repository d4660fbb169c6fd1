package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spins/internal/formatter"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/tasks"
	"github.com/urfave/cli/v3"
)

// HistoryImport replaces the stored history with the given files and prints the new statistics.
func (r *Runner) HistoryImport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(); err != nil {
		return err
	}

	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("%w: at least one history file is required", shared.ErrMissingArgument)
	}

	sources := make([]tasks.Source, len(files))
	for i, f := range files {
		sources[i] = tasks.FileSource(f)
	}

	r.logger.Info("importing listening history", "files", len(files))

	progressCh, wait := r.printProgress()
	summary, err := r.history.Upload(ctx, sources, progressCh)
	wait()
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	data, err := formatter.SummaryToText(summary)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// HistoryStats renders statistics for the stored history.
func (r *Runner) HistoryStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	year := cmd.Int("year")
	if year < 0 {
		return fmt.Errorf("%w: year must be positive", shared.ErrInvalidFlag)
	}

	summary, err := r.history.Load(year)
	if err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("%w: run 'spins history import <files...>' first", shared.ErrNoHistory)
	}

	data, err := formatter.Summary(summary, format)
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteExport(data, output, "spins_stats", format)
		if err != nil {
			return err
		}
		r.logger.Infof("statistics written to %v", path)
		return r.writePlain("✓ Statistics written to %s\n", path)
	}

	return r.writeBytes(data)
}

// HistoryExport writes the stored plays to a JSON or CSV file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	events, err := r.history.Events()
	if err != nil {
		return err
	}

	data, err := formatter.History(events, format)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(data, cmd.String("output"), "spins_history", format)
	if err != nil {
		return err
	}

	r.logger.Infof("history exported to %v with %v plays", path, len(events))
	return r.writePlain("✓ Exported %s plays to %s\n", shared.FormatCount(len(events)), path)
}

// HistoryClear deletes the stored history.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(); err != nil {
		return err
	}

	if err := r.history.Clear(); err != nil {
		return err
	}

	r.logger.Info("listening history cleared")
	return r.writePlain("✓ Listening history cleared\n")
}
