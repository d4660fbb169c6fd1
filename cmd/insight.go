package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/spins/internal/formatter"
	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/urfave/cli/v3"
)

// InsightSpotify summarizes the user's Spotify top items.
func (r *Runner) InsightSpotify(ctx context.Context, cmd *cli.Command) error {
	return r.generateInsight(ctx, cmd, models.SourceSpotify)
}

// InsightHistory summarizes the stored listening history.
func (r *Runner) InsightHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(); err != nil {
		return err
	}
	return r.generateInsight(ctx, cmd, models.SourceHistory)
}

func (r *Runner) generateInsight(ctx context.Context, cmd *cli.Command, source models.InsightSource) error {
	if r.summarizer == nil {
		return fmt.Errorf("%w: set credentials.openai.api_key or OPENAI_API_KEY", shared.ErrServiceUnavailable)
	}

	r.logger.Info("generating insight", "source", source)

	var insight *models.Insight
	call := func() error {
		if cmd.Bool("json") {
			var err error
			insight, err = r.insights.Generate(ctx, source, nil)
			return err
		}

		progressCh, wait := r.printProgress()
		defer wait()

		var err error
		insight, err = r.insights.Generate(ctx, source, progressCh)
		return err
	}

	var err error
	if source == models.SourceSpotify {
		err = r.withSpotify(ctx, cmd, call)
	} else {
		err = call()
	}
	if err != nil {
		return err
	}

	return r.writeInsight(insight, cmd)
}

// InsightPlaylist writes a playlist description from free text given as arguments or via --file.
func (r *Runner) InsightPlaylist(ctx context.Context, cmd *cli.Command) error {
	if r.summarizer == nil {
		return fmt.Errorf("%w: set credentials.openai.api_key or OPENAI_API_KEY", shared.ErrServiceUnavailable)
	}

	history := strings.Join(cmd.Args().Slice(), " ")
	if path := cmd.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		history = string(data)
	}
	if strings.TrimSpace(history) == "" {
		return fmt.Errorf("%w: pass the listening history as arguments or with --file", shared.ErrMissingArgument)
	}

	var (
		insight *models.Insight
		err     error
	)
	if cmd.Bool("json") {
		insight, err = r.insights.DescribePlaylist(ctx, history, nil)
	} else {
		progressCh, wait := r.printProgress()
		insight, err = r.insights.DescribePlaylist(ctx, history, progressCh)
		wait()
	}
	if err != nil {
		return err
	}

	return r.writeInsight(insight, cmd)
}

// InsightList prints archived insights.
func (r *Runner) InsightList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	source := models.InsightSource(cmd.String("source"))
	switch source {
	case "", models.SourceSpotify, models.SourceHistory, models.SourcePlaylist:
	default:
		return fmt.Errorf("%w: unknown source %q", shared.ErrInvalidFlag, source)
	}

	if r.db == nil {
		r.logger.Warn("database unavailable, no insights archived")
	}

	insights, err := r.insights.List(source, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if len(insights) == 0 && format == formatter.Text {
		return r.writePlain("No insights yet. Try 'spins insight spotify' or 'spins insight history'.\n")
	}

	data, err := formatter.Insights(insights, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

func (r *Runner) writeInsight(insight *models.Insight, cmd *cli.Command) error {
	if cmd.Bool("json") {
		return r.writeJSON(insight.View(), cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("Insight • %s", insight.Source()))
	r.writePlain("%s\n", strings.TrimSpace(insight.Summary()))
	if insight.Sequence() > 0 {
		r.writePlain("\n(saved as #%d, model %s)\n", insight.Sequence(), insight.Model())
	}
	return nil
}
