package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/stats"
)

// HistoryStorer persists the full listening history. repositories.HistoryStore implements it.
type HistoryStorer interface {
	Save(events []models.PlayEvent) error
	Load() ([]models.PlayEvent, error)
	Clear() error
}

// HistoryOpts configures a [HistoryEngine].
type HistoryOpts struct {
	Workers  int              // concurrent file reads (default: DefaultWorkers)
	Location *time.Location   // zone for calendar grouping (default: time.Local)
	Limit    int              // ranking size (default: stats.DefaultLimit)
	Now      func() time.Time // clock used to pick the current year (default: time.Now)
}

// HistoryEngine owns the uploaded listening history: ingestion, storage and statistics.
type HistoryEngine struct {
	store HistoryStorer
	opts  HistoryOpts
}

// NewHistoryEngine creates a HistoryEngine over store.
func NewHistoryEngine(store HistoryStorer, opts HistoryOpts) *HistoryEngine {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Limit <= 0 {
		opts.Limit = stats.DefaultLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &HistoryEngine{store: store, opts: opts}
}

// CurrentYear is the calendar year of the engine clock in the configured zone.
func (e *HistoryEngine) CurrentYear() int {
	return e.opts.Now().In(e.opts.Location).Year()
}

// Summarize computes statistics for events. A year of 0 selects [HistoryEngine.CurrentYear].
func (e *HistoryEngine) Summarize(events []models.PlayEvent, year int) models.StatisticsSummary {
	if year == 0 {
		year = e.CurrentYear()
	}
	return stats.Compute(events, stats.Options{
		CurrentYear: year,
		Location:    e.opts.Location,
		Limit:       e.opts.Limit,
	})
}

// Upload ingests sources, replaces the stored history and returns fresh statistics.
//
// If any source fails, the stored history is left untouched.
func (e *HistoryEngine) Upload(ctx context.Context, sources []Source, progress chan<- ProgressUpdate) (*models.StatisticsSummary, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no history files given", shared.ErrMissingArgument)
	}

	events, err := Ingest(ctx, sources, e.opts.Workers, progress)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, storingHistoryUpdate(len(events)))
	if err := e.store.Save(events); err != nil {
		return nil, err
	}

	summary := e.Summarize(events, 0)
	sendProgress(progress, computedStatsUpdate(&summary))
	return &summary, nil
}

// Events returns the stored history. A missing history yields [shared.ErrNoHistory].
func (e *HistoryEngine) Events() ([]models.PlayEvent, error) {
	return e.store.Load()
}

// Load computes statistics for the stored history.
//
// It returns a nil summary and no error when nothing is stored. A stored history that no longer
// decodes has already been discarded by the store and is reported as [shared.ErrInvalidHistory].
func (e *HistoryEngine) Load(year int) (*models.StatisticsSummary, error) {
	events, err := e.store.Load()
	if errors.Is(err, shared.ErrNoHistory) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	summary := e.Summarize(events, year)
	return &summary, nil
}

// Clear deletes the stored history.
func (e *HistoryEngine) Clear() error {
	return e.store.Clear()
}
