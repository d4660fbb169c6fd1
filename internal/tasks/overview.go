package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/services"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/stats"
	"golang.org/x/sync/errgroup"
)

const (
	overviewArtists = 20
	overviewRecent  = 50
)

// OverviewEngine builds the dashboard overview from a streaming service.
type OverviewEngine struct {
	spotify  services.Service
	location *time.Location
}

// NewOverviewEngine creates an OverviewEngine. A nil location means time.Local.
func NewOverviewEngine(spotify services.Service, location *time.Location) *OverviewEngine {
	if location == nil {
		location = time.Local
	}
	return &OverviewEngine{spotify: spotify, location: location}
}

// Overview fetches the user's top artists for tr and the recently played feed concurrently,
// then aggregates them.
func (e *OverviewEngine) Overview(ctx context.Context, tr models.TimeRange, progress chan<- ProgressUpdate) (*models.RecentOverview, error) {
	if e.spotify == nil {
		return nil, fmt.Errorf("%w: spotify service not initialized", shared.ErrServiceUnavailable)
	}

	var (
		artists []models.Artist
		plays   []models.RecentPlay
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sendProgress(progress, fetchingUpdate(FetchTopArtists, 1, 2, "top artists"))
		var err error
		artists, err = e.spotify.TopArtists(gctx, tr, overviewArtists)
		return err
	})
	g.Go(func() error {
		sendProgress(progress, fetchingUpdate(FetchRecent, 2, 2, "recently played"))
		var err error
		plays, err = e.spotify.RecentlyPlayed(gctx, overviewRecent)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := stats.Overview(plays, artists, tr, e.location)
	return &overview, nil
}

// TopTracks fetches the user's top tracks for tr.
func (e *OverviewEngine) TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]models.Track, error) {
	if e.spotify == nil {
		return nil, fmt.Errorf("%w: spotify service not initialized", shared.ErrServiceUnavailable)
	}
	return e.spotify.TopTracks(ctx, tr, limit)
}

// TopArtists fetches the user's top artists for tr.
func (e *OverviewEngine) TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]models.Artist, error) {
	if e.spotify == nil {
		return nil, fmt.Errorf("%w: spotify service not initialized", shared.ErrServiceUnavailable)
	}
	return e.spotify.TopArtists(ctx, tr, limit)
}
